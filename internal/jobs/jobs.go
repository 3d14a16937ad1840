// Package jobs tracks build requests as in-memory job records. Records are
// bookkeeping only: the build itself runs synchronously in the request
// handler, and nothing is persisted across restarts.
package jobs

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BuildStatus represents the current status of a build job
type BuildStatus string

const (
	BuildStatusQueued    BuildStatus = "queued"
	BuildStatusRunning   BuildStatus = "running"
	BuildStatusCompleted BuildStatus = "completed"
	BuildStatusFailed    BuildStatus = "failed"
)

// BuildJob is the record kept for one build request.
type BuildJob struct {
	ID             string      `json:"id"`
	Status         BuildStatus `json:"status"`
	Owner          string      `json:"owner"`
	Repo           string      `json:"repo"`
	HeadSHA        string      `json:"head_sha"`
	InstallationID string      `json:"installation_id"`
	UploadURL      string      `json:"upload_url"`
	CreatedAt      time.Time   `json:"created_at"`
	StartedAt      *time.Time  `json:"started_at,omitempty"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	Output         string      `json:"output,omitempty"`
	Error          string      `json:"error,omitempty"`
}

// NewBuildJob creates a queued job record for the given request parameters.
func NewBuildJob(owner, repo, headSHA, installationID, uploadURL string) *BuildJob {
	return &BuildJob{
		ID:             uuid.New().String(),
		Status:         BuildStatusQueued,
		Owner:          owner,
		Repo:           repo,
		HeadSHA:        headSHA,
		InstallationID: installationID,
		UploadURL:      uploadURL,
		CreatedAt:      time.Now().UTC(),
	}
}

// Manager holds job records behind an RWMutex. Safe for concurrent use.
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*BuildJob
}

// NewManager creates an empty job manager.
func NewManager() *Manager {
	return &Manager{jobs: make(map[string]*BuildJob)}
}

// Submit stores a job record and returns its id.
func (m *Manager) Submit(job *BuildJob) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	return job.ID
}

// Get returns a copy of the job record, or false when unknown.
func (m *Manager) Get(id string) (BuildJob, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return BuildJob{}, false
	}
	return *job, true
}

// List returns copies of all job records, newest first.
func (m *Manager) List() []BuildJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]BuildJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Start marks a job running.
func (m *Manager) Start(id string) {
	m.update(id, func(job *BuildJob) {
		now := time.Now().UTC()
		job.Status = BuildStatusRunning
		job.StartedAt = &now
	})
}

// Complete marks a job completed with its captured output.
func (m *Manager) Complete(id, output string) {
	m.update(id, func(job *BuildJob) {
		now := time.Now().UTC()
		job.Status = BuildStatusCompleted
		job.CompletedAt = &now
		job.Output = output
	})
}

// Fail marks a job failed. Output captured before the failure is kept.
func (m *Manager) Fail(id, errMsg, output string) {
	m.update(id, func(job *BuildJob) {
		now := time.Now().UTC()
		job.Status = BuildStatusFailed
		job.CompletedAt = &now
		job.Error = errMsg
		job.Output = output
	})
}

// ActiveCount returns the number of jobs not yet terminal.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, job := range m.jobs {
		if job.Status == BuildStatusQueued || job.Status == BuildStatusRunning {
			n++
		}
	}
	return n
}

// Cleanup removes terminal jobs older than maxAge and reports how many were
// dropped. Called periodically by the retention sweep.
func (m *Manager) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) update(id string, fn func(*BuildJob)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		fn(job)
	}
}
