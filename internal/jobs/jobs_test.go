package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJob() *BuildJob {
	return NewBuildJob("acme", "firmware", "0123456789abcdef0123", "42", "https://uploads.example.com")
}

func TestNewBuildJob(t *testing.T) {
	job := newTestJob()

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, BuildStatusQueued, job.Status)
	assert.Equal(t, "acme", job.Owner)
	assert.Equal(t, "firmware", job.Repo)
	assert.False(t, job.CreatedAt.IsZero())
	assert.Nil(t, job.StartedAt)
	assert.Nil(t, job.CompletedAt)
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager()
	job := newTestJob()

	id := m.Submit(job)
	assert.Equal(t, job.ID, id)
	assert.Equal(t, 1, m.ActiveCount())

	m.Start(id)
	got, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, BuildStatusRunning, got.Status)
	assert.NotNil(t, got.StartedAt)

	m.Complete(id, "ok")
	got, ok = m.Get(id)
	require.True(t, ok)
	assert.Equal(t, BuildStatusCompleted, got.Status)
	assert.Equal(t, "ok", got.Output)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, 0, m.ActiveCount())
}

func TestManager_Fail(t *testing.T) {
	m := NewManager()
	id := m.Submit(newTestJob())

	m.Start(id)
	m.Fail(id, "build failed", "partial output")

	got, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, BuildStatusFailed, got.Status)
	assert.Equal(t, "build failed", got.Error)
	assert.Equal(t, "partial output", got.Output)
}

func TestManager_GetUnknown(t *testing.T) {
	m := NewManager()
	_, ok := m.Get("nope")
	assert.False(t, ok)
}

func TestManager_ListNewestFirst(t *testing.T) {
	m := NewManager()

	first := newTestJob()
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)
	m.Submit(first)

	second := newTestJob()
	m.Submit(second)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestManager_GetReturnsCopy(t *testing.T) {
	m := NewManager()
	id := m.Submit(newTestJob())

	got, _ := m.Get(id)
	got.Status = BuildStatusFailed

	fresh, _ := m.Get(id)
	assert.Equal(t, BuildStatusQueued, fresh.Status)
}

func TestManager_Cleanup(t *testing.T) {
	m := NewManager()

	old := newTestJob()
	m.Submit(old)
	m.Complete(old.ID, "done")
	// Backdate completion past the retention window.
	past := time.Now().UTC().Add(-2 * time.Hour)
	m.update(old.ID, func(j *BuildJob) { j.CompletedAt = &past })

	active := newTestJob()
	m.Submit(active)
	m.Start(active.ID)

	recent := newTestJob()
	m.Submit(recent)
	m.Complete(recent.ID, "done")

	removed := m.Cleanup(time.Hour)
	assert.Equal(t, 1, removed)

	_, ok := m.Get(old.ID)
	assert.False(t, ok)
	_, ok = m.Get(active.ID)
	assert.True(t, ok)
	_, ok = m.Get(recent.ID)
	assert.True(t, ok)
}
