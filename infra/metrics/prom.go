// Package metrics provides the Prometheus and InfluxDB sink implementations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "maintenance-scheduler/core/metrics"
)

// PromSink records optimizer runs as Prometheus metrics.
type PromSink struct {
	solves      *prometheus.CounterVec
	duration    prometheus.Histogram
	assignments prometheus.Histogram
	objective   prometheus.Gauge
}

// NewPromSink registers solve metrics on the default Prometheus registerer.
// The metrics endpoint is served separately by StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_solves_total",
		Help: "Total number of optimizer runs by solve status",
	}, []string{"status"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_solve_duration_seconds",
		Help:    "Wall time of one optimizer run",
		Buckets: prometheus.DefBuckets,
	})
	assignments := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_assignments_per_solve",
		Help:    "Assignments produced per optimizer run",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
	objective := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scheduler_last_objective",
		Help: "Objective value of the most recent solve",
	})

	if err := reg.Register(solves); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			solves = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(assignments); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			assignments = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(objective); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			objective = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{solves: solves, duration: duration, assignments: assignments, objective: objective}, nil
}

// RecordSolve updates all solve metrics from one run record.
func (s *PromSink) RecordSolve(rec coremetrics.SolveRecord) error {
	s.solves.WithLabelValues(rec.Status).Inc()
	s.duration.Observe(rec.Duration.Seconds())
	s.assignments.Observe(float64(rec.Assignments))
	s.objective.Set(rec.Objective)
	return nil
}
