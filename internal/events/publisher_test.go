package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/buildrunner/internal/config"
)

func TestNewNATSPublisher_DisabledConfig(t *testing.T) {
	_, err := NewNATSPublisher(&config.EventsConfig{Enabled: false}, nil)
	require.Error(t, err)

	_, err = NewNATSPublisher(nil, nil)
	require.Error(t, err)
}

func TestBuildEvent_JSONShape(t *testing.T) {
	ev := BuildEvent{
		JobID:          "job-1",
		Owner:          "acme",
		Repo:           "firmware",
		HeadSHA:        "0123456789abcdef0123",
		InstallationID: "42",
		Status:         "completed",
		Timestamp:      time.Unix(1700000000, 0).UTC(),
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "job-1", decoded["job_id"])
	assert.Equal(t, "completed", decoded["status"])
	// Empty error must be omitted, not serialized as "".
	_, hasError := decoded["error"]
	assert.False(t, hasError)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	p.PublishOutcome(BuildEvent{})
	p.Close()
}
