package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/roach88/specdiff/internal/ir"
)

// ErrInvalidUTF8 is returned for a line that is not valid UTF-8. Decoding
// such a line would replace the bad bytes with U+FFFD and alter tags that
// must be carried verbatim.
var ErrInvalidUTF8 = errors.New("record is not valid UTF-8")

// DecodeError describes an input line that is not a well-formed record.
type DecodeError struct {
	Line int64
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeRecord parses a raw line as [interaction, tags] and validates the
// interaction. Failures are returned as *DecodeError.
func DecodeRecord(raw ir.RawRecord) (ir.TaggedInteraction, error) {
	if !utf8.Valid(raw.Data) {
		return ir.TaggedInteraction{}, &DecodeError{Line: raw.Line, Err: ErrInvalidUTF8}
	}
	var rec ir.TaggedInteraction
	if err := json.Unmarshal(raw.Data, &rec); err != nil {
		return ir.TaggedInteraction{}, &DecodeError{Line: raw.Line, Err: err}
	}
	if err := rec.Interaction.Validate(); err != nil {
		return ir.TaggedInteraction{}, &DecodeError{Line: raw.Line, Err: err}
	}
	return rec, nil
}
