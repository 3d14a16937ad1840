package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/buildrunner/internal/server/responses"
)

type monitoringRuntimeStub struct {
	startTime time.Time
	active    int
	total     uint64
	accepted  uint64
	failed    uint64
}

func (s *monitoringRuntimeStub) GetStatus() string        { return "running" }
func (s *monitoringRuntimeStub) GetStartTime() time.Time  { return s.startTime }
func (s *monitoringRuntimeStub) ActiveJobs() int          { return s.active }
func (s *monitoringRuntimeStub) RequestsTotal() uint64    { return s.total }
func (s *monitoringRuntimeStub) RequestsAccepted() uint64 { return s.accepted }
func (s *monitoringRuntimeStub) RequestsFailed() uint64   { return s.failed }

func TestHandleHealthCheck_OK(t *testing.T) {
	stub := &monitoringRuntimeStub{startTime: time.Now().Add(-time.Hour), active: 2}
	h := NewMonitoringHandlers(stub)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HandleHealthCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))

	var health responses.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "healthy", health.Status)
	require.Equal(t, "buildrunner", health.Service)
	require.Equal(t, 2, health.ActiveJobs)
	require.Greater(t, health.Uptime, 3500.0)
}

func TestHandleHealthCheck_MethodNotAllowed(t *testing.T) {
	h := NewMonitoringHandlers(&monitoringRuntimeStub{})

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	h.HandleHealthCheck(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStatus_Counters(t *testing.T) {
	stub := &monitoringRuntimeStub{
		startTime: time.Now().Add(-time.Minute),
		active:    1,
		total:     10,
		accepted:  7,
		failed:    3,
	}
	h := NewMonitoringHandlers(stub)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status responses.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, "running", status.Status)
	require.Equal(t, uint64(10), status.RequestsTotal)
	require.Equal(t, uint64(7), status.RequestsAccepted)
	require.Equal(t, uint64(3), status.RequestsFailed)
	require.Equal(t, 1, status.ActiveJobs)
}

func TestHandleStatus_PrettyPrint(t *testing.T) {
	h := NewMonitoringHandlers(&monitoringRuntimeStub{startTime: time.Now()})

	req := httptest.NewRequest(http.MethodGet, "/status?pretty=1", nil)
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "\n  ")
}
