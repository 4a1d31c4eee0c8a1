// Package stream frames the newline-delimited record streams specdiff reads
// and writes.
//
// Input lines carry one [interaction, tags] record each. Output lines carry
// one [finding, tags, fingerprint] envelope each. Lines may be arbitrarily
// long; the framing never splits or truncates them.
package stream

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/roach88/specdiff/internal/ir"
)

// readBufferSize is the initial buffer for input. Longer lines grow past it.
const readBufferSize = 64 * 1024

// Reader yields one raw record per non-blank input line.
//
// Reader is not safe for concurrent use; the dispatcher is its only caller.
type Reader struct {
	br      *bufio.Reader
	line    int64
	blank   int64
	done    bool
	onBlank func(line int64)
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, readBufferSize)}
}

// Next returns the next non-blank line with its 1-based line number.
// It returns io.EOF once input is exhausted. Any other error comes from the
// underlying reader and ends the stream.
//
// A final line without a trailing newline is still returned. A trailing "\r"
// is removed so CRLF input frames the same as LF input.
func (r *Reader) Next() (ir.RawRecord, error) {
	for {
		if r.done {
			return ir.RawRecord{}, io.EOF
		}

		data, err := r.br.ReadBytes('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return ir.RawRecord{}, err
			}
			r.done = true
			if len(data) == 0 {
				return ir.RawRecord{}, io.EOF
			}
		}
		r.line++

		data = bytes.TrimSuffix(data, []byte("\n"))
		data = bytes.TrimSuffix(data, []byte("\r"))
		if len(bytes.TrimSpace(data)) == 0 {
			r.blank++
			if r.onBlank != nil {
				r.onBlank(r.line)
			}
			continue
		}
		return ir.RawRecord{Line: r.line, Data: data}, nil
	}
}

// OnBlank registers fn to be called with the line number of every blank or
// whitespace-only line Next passes over.
func (r *Reader) OnBlank(fn func(line int64)) {
	r.onBlank = fn
}

// Blank returns the number of blank or whitespace-only lines skipped so far.
func (r *Reader) Blank() int64 {
	return r.blank
}

// Lines returns the number of lines consumed so far, blank lines included.
func (r *Reader) Lines() int64 {
	return r.line
}
