package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the unit written downstream: [finding, tags, fingerprint].
type Envelope struct {
	Finding     Finding
	Tags        Tags
	Fingerprint string
}

// NewEnvelope pairs a finding with the tags of the record that produced it.
// The tag slice is shared, not copied; records are immutable once decoded.
func NewEnvelope(f Finding, tags Tags) (Envelope, error) {
	fp, err := Fingerprint(&f)
	if err != nil {
		return Envelope{}, err
	}
	if tags == nil {
		tags = Tags{}
	}
	return Envelope{Finding: f, Tags: tags, Fingerprint: fp}, nil
}

// MarshalJSON encodes the three-element array form. HTML characters in
// paths and values are written as-is.
func (e Envelope) MarshalJSON() ([]byte, error) {
	tags := e.Tags
	if tags == nil {
		tags = Tags{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]any{e.Finding, tags, e.Fingerprint}); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON decodes the three-element array form.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("envelope: %w", err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("envelope: expected 3 elements, got %d", len(parts))
	}
	var out Envelope
	if err := json.Unmarshal(parts[0], &out.Finding); err != nil {
		return fmt.Errorf("envelope finding: %w", err)
	}
	if err := json.Unmarshal(parts[1], &out.Tags); err != nil {
		return fmt.Errorf("envelope tags: %w", err)
	}
	if err := json.Unmarshal(parts[2], &out.Fingerprint); err != nil {
		return fmt.Errorf("envelope fingerprint: %w", err)
	}
	*e = out
	return nil
}
