package metrics

import "time"

// OutcomeLabel enumerates terminal request outcomes for counters.
type OutcomeLabel string

const (
	OutcomeAccepted         OutcomeLabel = "accepted"
	OutcomeInvalidParams    OutcomeLabel = "invalid_params"
	OutcomePayloadTooLarge  OutcomeLabel = "payload_too_large"
	OutcomeUnsupportedMedia OutcomeLabel = "unsupported_media"
	OutcomeBuildFailed      OutcomeLabel = "build_failed"
	OutcomeTimeout          OutcomeLabel = "timeout"
)

// Recorder defines observability hooks for the ingestion pipeline.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be cheap enough to call on every request.
type Recorder interface {
	IncRequestOutcome(outcome OutcomeLabel)
	ObserveExecutorDuration(d time.Duration, success bool)
	ObservePayloadSize(bytes int)
	SetExecutorsInFlight(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncRequestOutcome(OutcomeLabel)                {}
func (NoopRecorder) ObserveExecutorDuration(time.Duration, bool)   {}
func (NoopRecorder) ObservePayloadSize(int)                        {}
func (NoopRecorder) SetExecutorsInFlight(int)                      {}
