package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/roach88/specdiff/internal/ir"
)

// Writer emits one envelope per line.
//
// Each line is rendered completely before it is handed to the underlying
// writer in a single call, then flushed. A failed write never leaves a
// previously accepted line half-written in the buffer.
type Writer struct {
	bw  *bufio.Writer
	buf bytes.Buffer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// Write serialises env as one line and flushes it.
func (w *Writer) Write(env ir.Envelope) error {
	w.buf.Reset()
	enc := json.NewEncoder(&w.buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	// Encode terminates the value with '\n'.
	if _, err := w.bw.Write(w.buf.Bytes()); err != nil {
		return err
	}
	return w.bw.Flush()
}
