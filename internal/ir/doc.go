// Package ir provides the record and result types shared by every stage of
// the specdiff pipeline.
//
// This package contains type definitions and identity computation only. All
// other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Tags are opaque and copied byte-for-byte from input to output
//   - A Finding carries no per-interaction identifiers, so the same
//     discrepancy observed on different interactions has the same Fingerprint
//   - Fingerprints are computed over canonical JSON only (see MarshalCanonical)
//   - No floats in Finding content; status codes are int64
package ir
