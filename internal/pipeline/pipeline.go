package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/specdiff/internal/diff"
	"github.com/roach88/specdiff/internal/ir"
	"github.com/roach88/specdiff/internal/spec"
	"github.com/roach88/specdiff/internal/stream"
)

// DefaultAbortGrace bounds how long Run waits for in-flight work after a
// fatal fault before returning.
const DefaultAbortGrace = 2 * time.Second

// Comparator compares one interaction against a snapshot.
// diff.Engine is the production implementation.
type Comparator interface {
	Compare(snap *spec.Snapshot, in *ir.HTTPInteraction) ([]ir.Finding, error)
}

// ComparatorFunc adapts a function to Comparator.
type ComparatorFunc func(*spec.Snapshot, *ir.HTTPInteraction) ([]ir.Finding, error)

// Compare calls f.
func (f ComparatorFunc) Compare(snap *spec.Snapshot, in *ir.HTTPInteraction) ([]ir.Finding, error) {
	return f(snap, in)
}

// Config configures a Pipeline. Zero fields take defaults in New.
type Config struct {
	// Budget is the maximum number of records in flight at once.
	// Default: ConcurrencyBudget(0).
	Budget int

	// ResultBuffer is the capacity of the result channel. Default: 32.
	ResultBuffer int

	// Comparator produces findings. Default: diff.Engine.
	Comparator Comparator

	// Logger receives per-record diagnostics. Default: discards.
	Logger *slog.Logger

	// AbortGrace is how long to wait for in-flight work after a fatal fault.
	// Default: DefaultAbortGrace.
	AbortGrace time.Duration

	// Metrics, when set, is updated as the run progresses.
	Metrics *Metrics
}

// Stats summarises a run.
type Stats struct {
	Records  int64 // non-blank input lines read
	Blank    int64 // blank or whitespace-only lines passed over
	Skipped  int64 // malformed records
	Compared int64 // records compared successfully
	Written  int64 // envelopes written
	Peak     int64 // most records in flight at once
}

// ErrNilSnapshot is returned by New when no snapshot is given.
var ErrNilSnapshot = errors.New("pipeline: nil snapshot")

// Pipeline compares a stream of interactions against one snapshot.
// A Pipeline may be run more than once; runs do not share state.
type Pipeline struct {
	snap *spec.Snapshot
	cfg  Config
}

// New creates a pipeline over snap.
func New(snap *spec.Snapshot, cfg Config) (*Pipeline, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}
	if cfg.Budget <= 0 {
		cfg.Budget = ConcurrencyBudget(0)
	}
	if cfg.ResultBuffer <= 0 {
		cfg.ResultBuffer = ResultBuffer
	}
	if cfg.Comparator == nil {
		cfg.Comparator = diff.Engine{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.AbortGrace <= 0 {
		cfg.AbortGrace = DefaultAbortGrace
	}
	return &Pipeline{snap: snap, cfg: cfg}, nil
}

// Budget returns the configured concurrency budget.
func (p *Pipeline) Budget() int {
	return p.cfg.Budget
}

// Run reads records from in until end of input and writes one envelope line
// per finding to out.
//
// Run returns nil only when every record was read, every well-formed record
// was compared, and every envelope was written. Otherwise it returns the
// first *FatalError. Stats are valid in both cases.
func (p *Pipeline) Run(ctx context.Context, in io.Reader, out io.Writer) (Stats, error) {
	ctx, abort := context.WithCancelCause(ctx)
	defer abort(nil)

	var counters counters
	results := make(chan ir.Envelope, p.cfg.ResultBuffer)

	d := &dispatcher{
		snap:     p.snap,
		cmp:      p.cfg.Comparator,
		budget:   p.cfg.Budget,
		logger:   p.cfg.Logger,
		metrics:  p.cfg.Metrics,
		results:  results,
		counters: &counters,
		abort:    abort,
	}
	s := &sink{
		w:        stream.NewWriter(out),
		results:  results,
		metrics:  p.cfg.Metrics,
		counters: &counters,
	}

	r := stream.NewReader(in)
	r.OnBlank(func(line int64) {
		counters.blank.Add(1)
		p.cfg.Logger.Debug("skipping blank line", "line", line)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.run(gctx, r) })
	g.Go(s.run)

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-gctx.Done():
		// A fault cancelled the run. In-flight work gets a bounded time to
		// observe it; a comparison stuck in a loop is abandoned.
		select {
		case err = <-done:
		case <-time.After(p.cfg.AbortGrace):
			err = context.Cause(gctx)
			p.cfg.Logger.Warn("abandoning in-flight comparisons", "grace", p.cfg.AbortGrace)
		}
	}
	return counters.snapshot(), err
}

// counters are updated concurrently by workers and the sink.
type counters struct {
	records  atomic.Int64
	blank    atomic.Int64
	skipped  atomic.Int64
	compared atomic.Int64
	written  atomic.Int64
	active   atomic.Int64
	peak     atomic.Int64
}

func (c *counters) enter() {
	n := c.active.Add(1)
	for {
		peak := c.peak.Load()
		if n <= peak || c.peak.CompareAndSwap(peak, n) {
			return
		}
	}
}

func (c *counters) exit() {
	c.active.Add(-1)
}

func (c *counters) snapshot() Stats {
	return Stats{
		Records:  c.records.Load(),
		Blank:    c.blank.Load(),
		Skipped:  c.skipped.Load(),
		Compared: c.compared.Load(),
		Written:  c.written.Load(),
		Peak:     c.peak.Load(),
	}
}
