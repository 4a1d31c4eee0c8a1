package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainFinding is the domain prefix for finding fingerprints.
// The version suffix allows a future change of the identity rules.
const DomainFinding = "specdiff/finding/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the identity key of a finding.
//
// The fingerprint is a pure function of the finding's content: the same
// discrepancy produces the same fingerprint no matter which interaction
// surfaced it or how often it occurs.
func Fingerprint(f *Finding) (string, error) {
	canonical, err := MarshalCanonical(f.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainFinding, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when the finding is known to be valid.
func MustFingerprint(f *Finding) string {
	fp, err := Fingerprint(f)
	if err != nil {
		panic(err)
	}
	return fp
}
