package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/roach88/specdiff/internal/ir"
	"github.com/roach88/specdiff/internal/spec"
)

// CompareFunc has the signature of diff.Compare.
type CompareFunc func(*spec.Snapshot, *ir.HTTPInteraction) ([]ir.Finding, error)

// ConcurrencyProbe records how many comparisons run at the same time.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type ConcurrencyProbe struct {
	mu     sync.Mutex
	active int
	peak   int
	calls  int

	// Hold keeps each wrapped comparison running for at least this long so
	// that concurrent calls overlap.
	Hold time.Duration
}

// Wrap instruments fn.
func (p *ConcurrencyProbe) Wrap(fn CompareFunc) CompareFunc {
	return func(snap *spec.Snapshot, in *ir.HTTPInteraction) ([]ir.Finding, error) {
		p.enter()
		defer p.exit()
		if p.Hold > 0 {
			time.Sleep(p.Hold)
		}
		return fn(snap, in)
	}
}

func (p *ConcurrencyProbe) enter() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active++
	p.calls++
	if p.active > p.peak {
		p.peak = p.active
	}
}

func (p *ConcurrencyProbe) exit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active--
}

// Peak returns the highest number of simultaneous calls observed.
func (p *ConcurrencyProbe) Peak() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peak
}

// Calls returns the number of calls made.
func (p *ConcurrencyProbe) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// NFindings returns a comparator producing n findings per interaction, each
// identified by the request path and its index. It ignores the snapshot.
func NFindings(n int) CompareFunc {
	return func(_ *spec.Snapshot, in *ir.HTTPInteraction) ([]ir.Finding, error) {
		out := make([]ir.Finding, n)
		for i := range out {
			out[i] = ir.Finding{
				Kind:      ir.KindUnmatchedQueryParameter,
				Location:  ir.Location{In: ir.InRequest, Method: in.Request.Method, Path: in.Request.Path},
				Parameter: fmt.Sprintf("p%03d", i),
			}
		}
		return out, nil
	}
}

// FailOnPath returns a comparator that fails for one request path and
// delegates every other call to fn.
func FailOnPath(path string, err error, fn CompareFunc) CompareFunc {
	return func(snap *spec.Snapshot, in *ir.HTTPInteraction) ([]ir.Finding, error) {
		if in.Request.Path == path {
			return nil, err
		}
		return fn(snap, in)
	}
}

// PanicOnPath returns a comparator that panics for one request path.
func PanicOnPath(path string, fn CompareFunc) CompareFunc {
	return func(snap *spec.Snapshot, in *ir.HTTPInteraction) ([]ir.Finding, error) {
		if in.Request.Path == path {
			panic("comparison exploded on " + path)
		}
		return fn(snap, in)
	}
}
