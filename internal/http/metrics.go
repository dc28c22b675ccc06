package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Parse outcomes used as metric labels.
const (
	outcomeRecognized    = "recognized"
	outcomeNotRecognized = "not_recognized"
	outcomeUnsupported   = "unsupported"
	outcomeBadRequest    = "bad_request"
	outcomeRateLimited   = "rate_limited"
)

type Metrics struct {
	registry       *prometheus.Registry
	ParsesTotal    *prometheus.CounterVec
	RepeatsTotal   prometheus.Counter
	ProcessingTime *prometheus.HistogramVec
}

// newMetrics registers the collectors on a registry owned by the server, so several
// servers can live in one process.
func newMetrics() *Metrics {
	metrics := &Metrics{
		registry: prometheus.NewRegistry(),
		ParsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nowplaying_parses_total",
				Help: "Total number of parse requests by normalizer and outcome",
			},
			[]string{"normalizer", "outcome"},
		),
		RepeatsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "nowplaying_repeats_total",
				Help: "Total number of parsed songs already seen in this session",
			},
		),
		ProcessingTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nowplaying_parse_duration_seconds",
				Help:    "Time spent parsing a source",
				Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
			},
			[]string{"kind"},
		),
	}

	metrics.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.ParsesTotal,
		metrics.RepeatsTotal,
		metrics.ProcessingTime,
	)

	return metrics
}

func (m *Metrics) RecordParse(normalizer, outcome string) {
	m.ParsesTotal.WithLabelValues(normalizer, outcome).Inc()
}

func (m *Metrics) RecordRepeat() {
	m.RepeatsTotal.Inc()
}

func (m *Metrics) RecordProcessingTime(kind string, duration time.Duration) {
	m.ProcessingTime.WithLabelValues(kind).Observe(duration.Seconds())
}
