// Package events publishes terminal build outcomes to NATS when configured.
// Publishing is strictly best-effort: a request is never failed because an
// event could not be delivered.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/buildrunner/internal/config"
	"git.home.luguber.info/inful/buildrunner/internal/logfields"
)

// BuildEvent is the JSON payload published for each terminal build outcome.
type BuildEvent struct {
	JobID          string    `json:"job_id"`
	Owner          string    `json:"owner"`
	Repo           string    `json:"repo"`
	HeadSHA        string    `json:"head_sha"`
	InstallationID string    `json:"installation_id"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Publisher delivers build events to a NATS subject.
type Publisher interface {
	PublishOutcome(ev BuildEvent)
	Close()
}

// NoopPublisher is the default when events are not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOutcome(BuildEvent) {}
func (NoopPublisher) Close()                    {}

// NATSPublisher publishes build events over a NATS connection.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// NewNATSPublisher connects to NATS using the events configuration.
func NewNATSPublisher(cfg *config.EventsConfig, logger *slog.Logger) (*NATSPublisher, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, fmt.Errorf("event publishing is disabled")
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("buildrunner"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("NATS event publisher initialized",
		slog.String("url", cfg.NATSURL),
		slog.String("subject", cfg.Subject))

	return &NATSPublisher{
		conn:    conn,
		subject: cfg.Subject,
		logger:  logger,
	}, nil
}

// PublishOutcome publishes one build event. Failures are logged and dropped.
func (p *NATSPublisher) PublishOutcome(ev BuildEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("Failed to encode build event", logfields.Error(err))
		return
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		p.logger.Warn("Failed to publish build event",
			logfields.JobID(ev.JobID),
			logfields.Error(err))
	}
}

// Close drains and closes the NATS connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("NATS drain failed", logfields.Error(err))
	}
}
