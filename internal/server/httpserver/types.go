package httpserver

import (
	"net/http"
	"time"

	"git.home.luguber.info/inful/buildrunner/internal/jobs"
	"git.home.luguber.info/inful/buildrunner/internal/metrics"
	"git.home.luguber.info/inful/buildrunner/internal/request"
)

// Runtime is the minimal interface required by shared HTTP handlers.
// It intentionally matches the interfaces in internal/server/handlers.
type Runtime interface {
	MaxUpload() int
	Recorder() metrics.Recorder
	ExecuteBuild(br *request.BuildRequest, payloadBase64 string) (jobID, output string, err error)

	GetJob(id string) (jobs.BuildJob, bool)
	ListJobs() []jobs.BuildJob

	GetStatus() string
	GetStartTime() time.Time
	ActiveJobs() int
	RequestsTotal() uint64
	RequestsAccepted() uint64
	RequestsFailed() uint64
}

// Options configures additional server wiring that is runtime-specific.
type Options struct {
	// Optional: Prometheus metrics endpoint on the admin server.
	PrometheusHandler http.Handler
}
