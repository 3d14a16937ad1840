// Package metrics provides an observability framework for buildrunner
// ingestion metrics.
//
// The package implements the Null Object pattern to enable metrics
// collection without explicit nil checks: components receive a Recorder
// through dependency injection, and NoopRecorder is the default when
// metrics are not configured. The Prometheus implementation is activated
// by the daemon when the admin listener is enabled.
package metrics
