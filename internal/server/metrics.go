package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instrumentation of the optimization service.
type Metrics struct {
	RunsStarted  *prometheus.CounterVec
	RunsFinished *prometheus.CounterVec
	RunsRunning  prometheus.Gauge
	Evaluations  prometheus.Counter
	EvalFailures prometheus.Counter
}

// NewMetrics builds and registers the service metrics on reg. Passing
// prometheus.DefaultRegisterer wires them into the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devana",
			Subsystem: "optimization",
			Name:      "runs_started_total",
			Help:      "Optimization runs started, by algorithm.",
		}, []string{"algorithm"}),
		RunsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devana",
			Subsystem: "optimization",
			Name:      "runs_finished_total",
			Help:      "Optimization runs finished, by algorithm and terminal state.",
		}, []string{"algorithm", "state"}),
		RunsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "devana",
			Subsystem: "optimization",
			Name:      "runs_running",
			Help:      "Optimization runs currently executing.",
		}),
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "devana",
			Subsystem: "optimization",
			Name:      "evaluations_total",
			Help:      "Objective evaluations performed.",
		}),
		EvalFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "devana",
			Subsystem: "optimization",
			Name:      "evaluation_failures_total",
			Help:      "Objective evaluations that received the sentinel penalty.",
		}),
	}
	reg.MustRegister(m.RunsStarted, m.RunsFinished, m.RunsRunning, m.Evaluations, m.EvalFailures)
	return m
}
