// Package metrics defines the observability contract for the schedule
// optimizer. Every solve produces a SolveRecord that sinks such as PromSink
// and InfluxSink persist. Multiple sinks combine through NewMultiSink; the
// factory helpers build the configured set and fall back to a NopSink when
// nothing is configured.
package metrics
