package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records planner activity. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	runs          *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	fallbacks     *prometheus.CounterVec
}

// NewMetrics registers planner metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "semplan_pipeline_runs_total",
				Help: "Total number of plan generations by outcome",
			},
			[]string{"outcome"},
		),
		stageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "semplan_pipeline_stage_duration_seconds",
				Help:    "Duration of each remote pipeline stage in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		fallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "semplan_pipeline_fallbacks_total",
				Help: "Total number of fallback substitutions by stage",
			},
			[]string{"stage"},
		),
	}
}

func (m *Metrics) observeStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) fallback(stage string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(stage).Inc()
}

func (m *Metrics) run(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}
