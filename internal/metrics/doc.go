// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Summary run counts, outcomes, and durations
//   - Message parse misses per extractor
//   - FX cache hits and per-provider failure counts
package metrics
