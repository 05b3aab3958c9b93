// Package metrics holds lock-free counters for session lifecycle events and the
// definitions shared by the exporters under metrics/export.
package metrics
