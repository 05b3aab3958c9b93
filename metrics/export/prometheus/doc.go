// Package prometheus renders session counters in Prometheus text exposition
// format.
//
// [New] wraps any [Source] and exposes an [http.Handler]. Counter names follow
// tappin_*_total as listed in [metrics.CounterDefs].
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate counters.
package prometheus
