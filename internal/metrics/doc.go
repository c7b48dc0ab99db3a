// Package metrics defines the Prometheus metrics exported by the ascii
// theater service.
//
// Metrics cover the HTTP layer (request counts, durations, in-flight),
// the renderer (render counts and durations), playback (active session
// gauge, frames emitted and skipped) and the upload/history glue.
//
// All metrics are registered with the default registry via promauto and
// served from the /metrics endpoint.
package metrics
