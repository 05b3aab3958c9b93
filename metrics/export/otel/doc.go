// Package otel binds session counters to OpenTelemetry observable counters.
//
// [New] registers one Int64ObservableCounter per entry in [metrics.CounterDefs]
// and a single callback that reads a snapshot on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate counters.
package otel
