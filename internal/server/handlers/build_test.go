package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/buildrunner/internal/errors"
	"git.home.luguber.info/inful/buildrunner/internal/metrics"
	"git.home.luguber.info/inful/buildrunner/internal/request"
)

type buildRuntimeStub struct {
	maxUpload int
	executeFn func(br *request.BuildRequest, payloadBase64 string) (string, string, error)

	lastRequest *request.BuildRequest
	lastPayload string
	invocations int
}

func (s *buildRuntimeStub) MaxUpload() int {
	if s.maxUpload > 0 {
		return s.maxUpload
	}
	return 1 << 20
}

func (s *buildRuntimeStub) Recorder() metrics.Recorder { return metrics.NoopRecorder{} }

func (s *buildRuntimeStub) ExecuteBuild(br *request.BuildRequest, payloadBase64 string) (string, string, error) {
	s.invocations++
	s.lastRequest = br
	s.lastPayload = payloadBase64
	if s.executeFn != nil {
		return s.executeFn(br, payloadBase64)
	}
	return "job-1", "ok", nil
}

const validQuery = "owner=inful&repo=runner&head_sha=0123456789abcdef&installation_id=42&upload_url=https%3A%2F%2Fuploads.example%2Fartifacts"

func postBuild(t *testing.T, stub *buildRuntimeStub, query, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	h := NewBuildHandlers(stub)
	url := "/build"
	if query != "" {
		url += "?" + query
	}
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.HandleBuild(rec, req)
	return rec
}

func TestHandleBuild_RawArchiveAccepted(t *testing.T) {
	stub := &buildRuntimeStub{}
	raw := []byte("PK\x03\x04fake-zip-bytes")

	rec := postBuild(t, stub, validQuery, "application/zip", raw)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "accepted", resp["status"])
	require.Equal(t, "ok", resp["output"])
	require.Equal(t, "job-1", resp["job_id"])

	require.Equal(t, 1, stub.invocations)
	require.Equal(t, "inful", stub.lastRequest.Owner)
	require.Equal(t, "runner", stub.lastRequest.Repo)
	require.Equal(t, base64.StdEncoding.EncodeToString(raw), stub.lastPayload)
}

func TestHandleBuild_WireFormsConverge(t *testing.T) {
	raw := []byte("PK\x03\x04same-archive")
	encoded := base64.StdEncoding.EncodeToString(raw)

	rawStub := &buildRuntimeStub{}
	rec := postBuild(t, rawStub, validQuery, "application/octet-stream", raw)
	require.Equal(t, http.StatusAccepted, rec.Code)

	b64Stub := &buildRuntimeStub{}
	rec = postBuild(t, b64Stub, validQuery, "text/plain", []byte(encoded))
	require.Equal(t, http.StatusAccepted, rec.Code)

	// Both wire forms must hand the executor the identical payload.
	require.Equal(t, rawStub.lastPayload, b64Stub.lastPayload)
}

func TestHandleBuild_UndecodableBase64Forwarded(t *testing.T) {
	stub := &buildRuntimeStub{}
	body := []byte("!!! not base64 !!!")

	rec := postBuild(t, stub, validQuery, "application/base64", body)

	// Malformed base64 is not the ingest layer's problem; the bytes go
	// through and the executor decides.
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, base64.StdEncoding.EncodeToString(body), stub.lastPayload)
}

func TestHandleBuild_InvalidParams(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"missing all", ""},
		{"missing owner", "repo=r&head_sha=0123456789abcdef&installation_id=1&upload_url=https%3A%2F%2Fu.example"},
		{"bad owner char", "owner=in%2Fful&repo=r&head_sha=0123456789abcdef&installation_id=1&upload_url=https%3A%2F%2Fu.example"},
		{"short sha", "owner=o&repo=r&head_sha=abc123&installation_id=1&upload_url=https%3A%2F%2Fu.example"},
		{"non-hex sha", "owner=o&repo=r&head_sha=zzzz6789abcdef00&installation_id=1&upload_url=https%3A%2F%2Fu.example"},
		{"zero installation", "owner=o&repo=r&head_sha=0123456789abcdef&installation_id=0&upload_url=https%3A%2F%2Fu.example"},
		{"non-numeric installation", "owner=o&repo=r&head_sha=0123456789abcdef&installation_id=abc&upload_url=https%3A%2F%2Fu.example"},
		{"missing upload_url", "owner=o&repo=r&head_sha=0123456789abcdef&installation_id=1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &buildRuntimeStub{}
			rec := postBuild(t, stub, tc.query, "application/zip", []byte("PK\x03\x04"))

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errors.HTTPErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, "invalid query params", resp.Error)
			require.Zero(t, stub.invocations)
		})
	}
}

func TestHandleBuild_UnsupportedMediaType(t *testing.T) {
	stub := &buildRuntimeStub{}
	rec := postBuild(t, stub, validQuery, "application/json", []byte(`{}`))

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	var resp errors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "unsupported media type", resp.Error)
	require.Zero(t, stub.invocations)
}

func TestHandleBuild_PayloadTooLarge(t *testing.T) {
	stub := &buildRuntimeStub{maxUpload: 16}
	body := bytes.Repeat([]byte("a"), 17)

	rec := postBuild(t, stub, validQuery, "application/zip", body)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Zero(t, stub.invocations)
}

func TestHandleBuild_SizeCheckBeatsParamValidation(t *testing.T) {
	stub := &buildRuntimeStub{maxUpload: 16}
	body := bytes.Repeat([]byte("a"), 64)

	// Invalid params AND oversized body: size wins.
	rec := postBuild(t, stub, "owner=bad%2Fname", "application/zip", body)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleBuild_SizeCheckBeatsMediaCheck(t *testing.T) {
	stub := &buildRuntimeStub{maxUpload: 16}
	body := bytes.Repeat([]byte("a"), 64)

	rec := postBuild(t, stub, validQuery, "application/json", body)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleBuild_BodyAtLimitAccepted(t *testing.T) {
	stub := &buildRuntimeStub{maxUpload: 16}
	body := bytes.Repeat([]byte("a"), 16)

	rec := postBuild(t, stub, validQuery, "application/zip", body)

	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHandleBuild_ExecutorFailure(t *testing.T) {
	stub := &buildRuntimeStub{
		executeFn: func(*request.BuildRequest, string) (string, string, error) {
			return "job-9", "", errors.ExecutorError("executor exited with code 3").
				WithContext("output", "compile error: main.rs").
				Build()
		},
	}

	rec := postBuild(t, stub, validQuery, "application/zip", []byte("PK\x03\x04"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errors.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "build failed", resp.Error)
	require.Equal(t, "compile error: main.rs", resp.Output)
}

func TestHandleBuild_TimeoutSurfacesGenericFailure(t *testing.T) {
	stub := &buildRuntimeStub{
		executeFn: func(*request.BuildRequest, string) (string, string, error) {
			return "job-9", "", errors.TimeoutError("build timed out").Build()
		},
	}

	rec := postBuild(t, stub, validQuery, "application/zip", []byte("PK\x03\x04"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "build failed"))
	require.False(t, strings.Contains(rec.Body.String(), "timed out"))
}

func TestHandleBuild_MethodNotAllowed(t *testing.T) {
	stub := &buildRuntimeStub{}
	h := NewBuildHandlers(stub)

	req := httptest.NewRequest(http.MethodGet, "/build?"+validQuery, nil)
	rec := httptest.NewRecorder()
	h.HandleBuild(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, stub.invocations)
}

func TestHandleBuild_InstallationIDForwardedAsReceived(t *testing.T) {
	stub := &buildRuntimeStub{}
	query := "owner=o&repo=r&head_sha=0123456789abcdef&installation_id=007&upload_url=https%3A%2F%2Fu.example"

	rec := postBuild(t, stub, query, "application/zip", []byte("PK\x03\x04"))

	require.Equal(t, http.StatusAccepted, rec.Code)
	// The executor protocol carries the raw string form, not the parsed int.
	require.Equal(t, "007", stub.lastRequest.RawInstallationID)
	require.Equal(t, int64(7), stub.lastRequest.InstallationID)
}
