package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/buildrunner/internal/errors"
	"git.home.luguber.info/inful/buildrunner/internal/jobs"
	"git.home.luguber.info/inful/buildrunner/internal/server/responses"
)

// JobRuntime defines the daemon methods needed by job handlers.
type JobRuntime interface {
	GetJob(id string) (jobs.BuildJob, bool)
	ListJobs() []jobs.BuildJob
}

// JobHandlers contains job record HTTP handlers.
type JobHandlers struct {
	daemon       JobRuntime
	errorAdapter *errors.HTTPErrorAdapter
}

// NewJobHandlers creates a new job handlers instance.
func NewJobHandlers(daemon JobRuntime) *JobHandlers {
	return &JobHandlers{
		daemon:       daemon,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleJobs lists all retained job records, newest first.
func (h *JobHandlers) HandleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		err := errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "GET").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	list := h.daemon.ListJobs()
	resp := &responses.JobListResponse{
		Jobs:      list,
		Count:     len(list),
		Timestamp: time.Now().UTC(),
	}
	if resp.Jobs == nil {
		resp.Jobs = []jobs.BuildJob{}
	}

	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write job list response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}

// HandleJob returns a single job record by id.
func (h *JobHandlers) HandleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		err := errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "GET").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if id == "" || strings.Contains(id, "/") {
		err := errors.NotFoundError("job not found").
			WithContext("job_id", id).
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	job, ok := h.daemon.GetJob(id)
	if !ok {
		err := errors.NotFoundError("job not found").
			WithContext("job_id", id).
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	if err := writeJSONPretty(w, r, http.StatusOK, &job); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write job response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}
