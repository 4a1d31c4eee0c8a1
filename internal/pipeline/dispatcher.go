package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"

	"github.com/roach88/specdiff/internal/ir"
	"github.com/roach88/specdiff/internal/spec"
	"github.com/roach88/specdiff/internal/stream"
)

// dispatcher reads records and hands each to a pool worker. It is the only
// closer of the result channel.
type dispatcher struct {
	snap     *spec.Snapshot
	cmp      Comparator
	budget   int
	logger   *slog.Logger
	metrics  *Metrics
	results  chan<- ir.Envelope
	counters *counters

	// abort cancels the whole run with the first fault.
	abort context.CancelCauseFunc
}

func (d *dispatcher) run(ctx context.Context, r *stream.Reader) error {
	// Every producer has returned by the time p.Wait does.
	defer close(d.results)

	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(d.budget)

	readErr := d.feed(ctx, p, r)
	waitErr := p.Wait()
	if readErr == nil && waitErr == nil {
		return nil
	}
	// Workers released by the cancellation fail too; report the fault
	// that caused it.
	if cause := context.Cause(ctx); cause != nil {
		return cause
	}
	if readErr != nil {
		return readErr
	}
	return waitErr
}

// feed starts one task per record, blocking while the pool is full.
// It stops early once the run has been cancelled.
func (d *dispatcher) feed(ctx context.Context, p *pool.ContextPool, r *stream.Reader) error {
	for ctx.Err() == nil {
		raw, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			fe := &FatalError{Fault: FaultInput, Line: r.Lines() + 1, Err: err}
			d.abort(fe)
			return fe
		}
		d.counters.records.Add(1)
		d.metrics.recordRead()

		p.Go(func(ctx context.Context) error {
			if err := d.process(ctx, raw); err != nil {
				d.abort(err)
				return err
			}
			return nil
		})
	}
	return nil
}

// process decodes, compares and delivers one record.
func (d *dispatcher) process(ctx context.Context, raw ir.RawRecord) error {
	if ctx.Err() != nil {
		// The run is already failing; the first fault has been recorded.
		return nil
	}

	d.counters.enter()
	d.metrics.enter()
	defer func() {
		d.metrics.exit()
		d.counters.exit()
	}()

	rec, err := stream.DecodeRecord(raw)
	if err != nil {
		d.counters.skipped.Add(1)
		d.metrics.recordSkipped()
		d.logger.Warn("skipping malformed record", "line", raw.Line, "error", err)
		return nil
	}

	var findings []ir.Finding
	var cmpErr error
	start := time.Now()
	if recovered := panics.Try(func() {
		findings, cmpErr = d.cmp.Compare(d.snap, &rec.Interaction)
	}); recovered != nil {
		return &FatalError{Fault: FaultWorker, Line: raw.Line, Err: recovered.AsError()}
	}
	if cmpErr != nil {
		return &FatalError{Fault: FaultComparison, Line: raw.Line, Err: cmpErr}
	}
	d.counters.compared.Add(1)
	d.metrics.recordCompared(time.Since(start))

	for _, f := range findings {
		env, err := ir.NewEnvelope(f, rec.Tags)
		if err != nil {
			return &FatalError{Fault: FaultComparison, Line: raw.Line, Err: err}
		}
		if !trySend(ctx, env, d.results) {
			return &FatalError{Fault: FaultDelivery, Line: raw.Line, Err: context.Cause(ctx)}
		}
	}
	return nil
}

// trySend blocks until msg is accepted or ctx is done.
func trySend[T any](ctx context.Context, msg T, ch chan<- T) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case ch <- msg:
		return true
	}
}
