package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/buildrunner/internal/errors"
	"git.home.luguber.info/inful/buildrunner/internal/logfields"
	"git.home.luguber.info/inful/buildrunner/internal/metrics"
	"git.home.luguber.info/inful/buildrunner/internal/payload"
	"git.home.luguber.info/inful/buildrunner/internal/request"
	"git.home.luguber.info/inful/buildrunner/internal/server/responses"
)

// BuildRuntime defines the daemon methods needed by the build handler.
type BuildRuntime interface {
	MaxUpload() int
	Recorder() metrics.Recorder
	ExecuteBuild(br *request.BuildRequest, payloadBase64 string) (jobID, output string, err error)
}

// BuildHandlers contains the build-trigger ingestion handler.
type BuildHandlers struct {
	daemon       BuildRuntime
	errorAdapter *errors.HTTPErrorAdapter
}

// NewBuildHandlers creates a new build handlers instance.
func NewBuildHandlers(daemon BuildRuntime) *BuildHandlers {
	return &BuildHandlers{
		daemon:       daemon,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleBuild ingests one build trigger: bounds the raw body, normalizes the
// payload, validates query parameters, and runs the executor synchronously.
// The rejection order is fixed: size, then media type, then parameters.
func (h *BuildHandlers) HandleBuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		err := errors.ValidationError("invalid HTTP method").
			WithContext("method", r.Method).
			WithContext("allowed_method", "POST").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	maxUpload := h.daemon.MaxUpload()

	// Allow one byte past the ceiling so an oversized body is read far
	// enough to be rejected by length, not by a read error.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(maxUpload)+1))
	if err != nil {
		h.daemon.Recorder().IncRequestOutcome(metrics.OutcomePayloadTooLarge)
		h.errorAdapter.WriteErrorResponse(w, r, errors.PayloadError("payload too large").Build())
		return
	}
	h.daemon.Recorder().ObservePayloadSize(len(body))

	contentType := r.Header.Get("Content-Type")
	canonical, err := payload.Decode(body, contentType, maxUpload)
	if err != nil {
		switch errors.GetCategory(err) {
		case errors.CategoryPayload:
			h.daemon.Recorder().IncRequestOutcome(metrics.OutcomePayloadTooLarge)
		case errors.CategoryMedia:
			h.daemon.Recorder().IncRequestOutcome(metrics.OutcomeUnsupportedMedia)
		}
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	br, err := request.Validate(r.URL.Query())
	if err != nil {
		h.daemon.Recorder().IncRequestOutcome(metrics.OutcomeInvalidParams)
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	slog.Info("Build request accepted for execution",
		logfields.Owner(br.Owner),
		logfields.Repo(br.Repo),
		logfields.HeadSHA(br.HeadSHA),
		logfields.MediaType(contentType),
		logfields.PayloadBytes(len(canonical)))

	jobID, output, err := h.daemon.ExecuteBuild(br, payload.EncodeForExecutor(canonical))
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	resp := &responses.BuildAcceptedResponse{
		Status: "accepted",
		Output: output,
		JobID:  jobID,
	}
	if err := writeJSON(w, http.StatusAccepted, resp); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to encode build response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}
