// Package responses defines API response types used by buildrunner HTTP handlers.
package responses

import (
	"time"

	"git.home.luguber.info/inful/buildrunner/internal/jobs"
)

// BuildAcceptedResponse is returned when the executor completed successfully.
type BuildAcceptedResponse struct {
	Status string `json:"status"`
	Output string `json:"output"`
	JobID  string `json:"job_id,omitempty"`
}

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status     string    `json:"status"`
	Service    string    `json:"service"`
	Version    string    `json:"version"`
	Timestamp  time.Time `json:"timestamp"`
	Uptime     float64   `json:"uptime"`
	ActiveJobs int       `json:"active_jobs"`
}

// StatusResponse represents the admin runtime status response.
type StatusResponse struct {
	Status           string    `json:"status"`
	Uptime           float64   `json:"uptime"`
	StartTime        time.Time `json:"start_time"`
	ActiveJobs       int       `json:"active_jobs"`
	RequestsTotal    uint64    `json:"requests_total"`
	RequestsAccepted uint64    `json:"requests_accepted"`
	RequestsFailed   uint64    `json:"requests_failed"`
	Timestamp        time.Time `json:"timestamp"`
}

// JobListResponse represents the job listing response.
type JobListResponse struct {
	Jobs      []jobs.BuildJob `json:"jobs"`
	Count     int             `json:"count"`
	Timestamp time.Time       `json:"timestamp"`
}
