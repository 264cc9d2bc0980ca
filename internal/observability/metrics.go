package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"

	LookupMatch   = "match"
	LookupNoMatch = "no_match"
	LookupInvalid = "invalid"
)

// Metrics provides observability for the dashboard.
type Metrics struct {
	// Catalog runs by question number (1-based) and outcome
	QueryRuns *prometheus.CounterVec

	QueryLatency prometheus.Histogram

	// Summary lookups by outcome: match, no_match, invalid
	SummaryLookups *prometheus.CounterVec
}

// New registers the dashboard collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QueryRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trafficledger_query_runs_total",
			Help: "Catalog query executions by question and outcome",
		}, []string{"question", "outcome"}),

		QueryLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "trafficledger_query_duration_seconds",
			Help:    "Duration of catalog query executions",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		SummaryLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trafficledger_summary_lookups_total",
			Help: "Stop summary lookups by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveQuery records one catalog run. index is zero-based.
func (m *Metrics) ObserveQuery(index int, outcome string, d time.Duration) {
	if m != nil {
		m.QueryRuns.WithLabelValues(strconv.Itoa(index+1), outcome).Inc()
		m.QueryLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementLookup(outcome string) {
	if m != nil {
		m.SummaryLookups.WithLabelValues(outcome).Inc()
	}
}
