package testutil

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

// ErrWriteFailed is returned by FailingWriter once its budget is spent.
var ErrWriteFailed = errors.New("testutil: write failed")

// SlowWriter delays every write, simulating a slow consumer.
type SlowWriter struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	Delay time.Duration
}

func (w *SlowWriter) Write(p []byte) (int, error) {
	time.Sleep(w.Delay)
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

// String returns everything written so far.
func (w *SlowWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

// FailingWriter accepts Allow writes and fails every write after that.
type FailingWriter struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	writes int
	Allow  int
}

func (w *FailingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writes >= w.Allow {
		return 0, ErrWriteFailed
	}
	w.writes++
	return w.buf.Write(p)
}

// String returns everything written before the failure.
func (w *FailingWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

// ErrReader returns the wrapped data and then a read error instead of EOF.
type ErrReader struct {
	Data []byte
	Err  error
	off  int
}

func (r *ErrReader) Read(p []byte) (int, error) {
	if r.off >= len(r.Data) {
		return 0, r.Err
	}
	n := copy(p, r.Data[r.off:])
	r.off += n
	return n, nil
}
