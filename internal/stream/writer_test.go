package stream

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specdiff/internal/ir"
	"github.com/roach88/specdiff/internal/testutil"
)

func envelope(t *testing.T, path string, tags ...string) ir.Envelope {
	t.Helper()
	env, err := ir.NewEnvelope(ir.Finding{
		Kind:     ir.KindUnmatchedRequestURL,
		Location: ir.Location{In: ir.InRequest, Method: "GET", Path: path},
	}, tags)
	require.NoError(t, err)
	return env
}

func TestWriter_OneLinePerEnvelope(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out)

	require.NoError(t, w.Write(envelope(t, "/a", "x")))
	require.NoError(t, w.Write(envelope(t, "/b")))
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `[{"kind":"UnmatchedRequestUrl"`), lines[0])
	assert.Contains(t, lines[1], `,[],"`)

	got := testutil.DecodeEnvelopes(t, out.String())
	require.Len(t, got, 2)
	assert.Equal(t, envelope(t, "/a", "x"), got[0])
}

func TestWriter_NoHTMLEscaping(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out)

	require.NoError(t, w.Write(envelope(t, "/search/<a&b>")))
	assert.Contains(t, out.String(), "/search/<a&b>")
}

func TestWriter_FailureKeepsWholeLines(t *testing.T) {
	fw := &testutil.FailingWriter{Allow: 1}
	w := NewWriter(fw)

	require.NoError(t, w.Write(envelope(t, "/a")))
	err := w.Write(envelope(t, "/b"))
	assert.ErrorIs(t, err, testutil.ErrWriteFailed)
	assert.Equal(t, 1, strings.Count(fw.String(), "\n"))

	assert.True(t, strings.HasSuffix(fw.String(), "\n"))
	assert.Len(t, testutil.DecodeEnvelopes(t, fw.String()), 1)
}
