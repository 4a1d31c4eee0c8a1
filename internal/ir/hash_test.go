package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFinding() Finding {
	return Finding{
		Kind: KindUnmatchedResponseBodyShape,
		Location: Location{
			In:          InResponse,
			Method:      "GET",
			Path:        "/users/{id}",
			StatusCode:  200,
			ContentType: "application/json",
		},
		Shape: &ShapeTrail{
			JSONPath: "$.name",
			Issue:    IssueKindMismatch,
			Expected: "string",
			Observed: "number",
		},
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	f := sampleFinding()

	first, err := Fingerprint(&f)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Fingerprint(&f)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Len(t, first, 64, "hex encoded SHA-256")
}

func TestFingerprintIgnoresPointerIdentity(t *testing.T) {
	a := sampleFinding()
	b := sampleFinding()
	assert.Equal(t, MustFingerprint(&a), MustFingerprint(&b))
}

func TestFingerprintDistinguishesContent(t *testing.T) {
	base := sampleFinding()

	otherPath := sampleFinding()
	otherPath.Shape.JSONPath = "$.email"

	otherKind := sampleFinding()
	otherKind.Kind = KindUnmatchedRequestBodyShape

	otherStatus := sampleFinding()
	otherStatus.Location.StatusCode = 201

	noShape := sampleFinding()
	noShape.Shape = nil

	seen := map[string]string{}
	for name, f := range map[string]Finding{
		"base":   base,
		"path":   otherPath,
		"kind":   otherKind,
		"status": otherStatus,
		"shape":  noShape,
	} {
		fp := MustFingerprint(&f)
		prev, dup := seen[fp]
		assert.False(t, dup, "%s collides with %s", name, prev)
		seen[fp] = name
	}
}

func TestFingerprintDomainSeparated(t *testing.T) {
	f := sampleFinding()
	canonical, err := MarshalCanonical(f.canonicalMap())
	require.NoError(t, err)

	assert.Equal(t, hashWithDomain(DomainFinding, canonical), MustFingerprint(&f))
	assert.NotEqual(t, hashWithDomain("other/v1", canonical), MustFingerprint(&f))
}

func TestCanonicalMapOmitsEmptyFields(t *testing.T) {
	f := Finding{
		Kind:     KindUnmatchedRequestURL,
		Location: Location{In: InRequest, Method: "GET", Path: "/nope"},
	}

	canonical, err := MarshalCanonical(f.canonicalMap())
	require.NoError(t, err)
	assert.Equal(t,
		`{"kind":"UnmatchedRequestUrl","location":{"in":"request","method":"GET","path":"/nope"}}`,
		string(canonical))
}
