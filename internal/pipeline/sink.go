package pipeline

import (
	"github.com/roach88/specdiff/internal/ir"
	"github.com/roach88/specdiff/internal/stream"
)

// sink is the single consumer of the result channel and the only writer of
// output. Envelopes are written in the order they are received.
type sink struct {
	w        *stream.Writer
	results  <-chan ir.Envelope
	metrics  *Metrics
	counters *counters
}

// run drains results until the channel is closed. It stops at the first
// write failure; producers blocked on a full channel are released by the
// cancelled run context.
func (s *sink) run() error {
	for env := range s.results {
		if err := s.w.Write(env); err != nil {
			return &FatalError{Fault: FaultDelivery, Err: err}
		}
		s.counters.written.Add(1)
		s.metrics.findingWritten(env.Finding.Kind)
	}
	return nil
}
