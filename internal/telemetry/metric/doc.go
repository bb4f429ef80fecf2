// Package metric provides Prometheus metrics for refstore.
//
// Metrics include:
//
//   - Operation counters by op and result
//   - Operation latency histograms
//   - Record create/delete counters
//
// Each Registry owns its own prometheus.Registry so several stores in one
// process do not collide. Nothing is served over HTTP; callers gather
// through Gatherer or Snapshot.
package metric
