package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/specdiff/internal/ir"
)

const metricsNamespace = "specdiff"

// Metrics instruments a pipeline. A nil *Metrics records nothing.
//
// Collectors are registered on the registerer passed to NewMetrics rather
// than the global default, so a process may build several.
type Metrics struct {
	records    prometheus.Counter
	skipped    prometheus.Counter
	compared   prometheus.Counter
	findings   *prometheus.CounterVec
	inFlight   prometheus.Gauge
	comparison prometheus.Histogram
}

// NewMetrics creates the pipeline collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		records: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "records_total",
			Help:      "Non-blank input records read.",
		}),
		skipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "records_skipped_total",
			Help:      "Malformed input records skipped.",
		}),
		compared: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "records_compared_total",
			Help:      "Records compared against the specification.",
		}),
		findings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "findings_written_total",
			Help:      "Finding envelopes written to the output stream.",
		}, []string{"kind"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "records_in_flight",
			Help:      "Records currently being decoded or compared.",
		}),
		comparison: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "comparison_duration_seconds",
			Help:      "Time spent comparing one interaction.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}),
	}
}

func (m *Metrics) recordRead() {
	if m != nil {
		m.records.Inc()
	}
}

func (m *Metrics) recordSkipped() {
	if m != nil {
		m.skipped.Inc()
	}
}

func (m *Metrics) recordCompared(elapsed time.Duration) {
	if m != nil {
		m.compared.Inc()
		m.comparison.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) findingWritten(kind ir.FindingKind) {
	if m != nil {
		m.findings.WithLabelValues(string(kind)).Inc()
	}
}

func (m *Metrics) enter() {
	if m != nil {
		m.inFlight.Inc()
	}
}

func (m *Metrics) exit() {
	if m != nil {
		m.inFlight.Dec()
	}
}
