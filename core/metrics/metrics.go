package metrics

import "time"

// SolveRecord captures one optimizer run for observability sinks.
type SolveRecord struct {
	RunID       string
	StartDate   time.Time
	Status      string
	Objective   float64
	WorkOrders  int
	Crews       int
	Variables   int
	Nodes       int
	Assignments int
	Duration    time.Duration
	Time        time.Time
}

// MetricsSink records solve events for observability purposes.
type MetricsSink interface {
	RecordSolve(rec SolveRecord) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveRecord) error { return nil }

// MultiSink fans solve records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the record to all sinks, returning the first error.
func (m *MultiSink) RecordSolve(rec SolveRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolve(rec); err != nil {
			return err
		}
	}
	return nil
}
