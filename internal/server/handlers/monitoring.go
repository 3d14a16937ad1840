package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/buildrunner/internal/errors"
	"git.home.luguber.info/inful/buildrunner/internal/server/responses"
	"git.home.luguber.info/inful/buildrunner/internal/version"
)

// MonitoringRuntime defines the daemon methods needed by monitoring handlers.
type MonitoringRuntime interface {
	GetStatus() string
	GetStartTime() time.Time
	ActiveJobs() int
	RequestsTotal() uint64
	RequestsAccepted() uint64
	RequestsFailed() uint64
}

// MonitoringHandlers contains health and status HTTP handlers.
type MonitoringHandlers struct {
	daemon       MonitoringRuntime
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance.
func NewMonitoringHandlers(daemon MonitoringRuntime) *MonitoringHandlers {
	return &MonitoringHandlers{
		daemon:       daemon,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleHealthCheck handles the health check endpoint.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		err := errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "GET").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	health := &responses.HealthResponse{
		Status:     "healthy",
		Service:    "buildrunner",
		Version:    version.Version,
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(h.daemon.GetStartTime()).Seconds(),
		ActiveJobs: h.daemon.ActiveJobs(),
	}

	if err := writeJSONPretty(w, r, http.StatusOK, health); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write health response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}

// HandleStatus handles the admin runtime status endpoint.
func (h *MonitoringHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		err := errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "GET").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	status := &responses.StatusResponse{
		Status:           h.daemon.GetStatus(),
		Uptime:           time.Since(h.daemon.GetStartTime()).Seconds(),
		StartTime:        h.daemon.GetStartTime().UTC(),
		ActiveJobs:       h.daemon.ActiveJobs(),
		RequestsTotal:    h.daemon.RequestsTotal(),
		RequestsAccepted: h.daemon.RequestsAccepted(),
		RequestsFailed:   h.daemon.RequestsFailed(),
		Timestamp:        time.Now().UTC(),
	}

	if err := writeJSONPretty(w, r, http.StatusOK, status); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write status response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}
