// Package daemon owns the buildrunner runtime: the executor bridge, job
// records, retention sweep, metrics, and the optional event publisher. The
// HTTP server talks to it through the httpserver.Runtime interface.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/buildrunner/internal/config"
	"git.home.luguber.info/inful/buildrunner/internal/errors"
	"git.home.luguber.info/inful/buildrunner/internal/events"
	"git.home.luguber.info/inful/buildrunner/internal/executor"
	"git.home.luguber.info/inful/buildrunner/internal/jobs"
	"git.home.luguber.info/inful/buildrunner/internal/logfields"
	"git.home.luguber.info/inful/buildrunner/internal/metrics"
	"git.home.luguber.info/inful/buildrunner/internal/request"
)

// Daemon is the buildrunner runtime.
type Daemon struct {
	mu  sync.RWMutex
	cfg *config.Config

	bridge    *executor.Bridge
	jobs      *jobs.Manager
	recorder  metrics.Recorder
	publisher events.Publisher
	scheduler gocron.Scheduler
	watcher   *ConfigWatcher

	startTime time.Time
	inflight  atomic.Int64

	requestsTotal    atomic.Uint64
	requestsAccepted atomic.Uint64
	requestsFailed   atomic.Uint64
}

// Options carry optional collaborators; zero values select noop defaults.
type Options struct {
	Recorder  metrics.Recorder
	Publisher events.Publisher
	// ConfigPath enables hot reload of the config file when non-empty.
	ConfigPath string
}

// New constructs a Daemon from configuration.
func New(cfg *config.Config, opts Options) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NoopPublisher{}
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	d := &Daemon{
		cfg:       cfg,
		bridge:    executor.New(cfg.Executor.Path, cfg.Executor.Timeout.Std(), slog.Default()),
		jobs:      jobs.NewManager(),
		recorder:  opts.Recorder,
		publisher: opts.Publisher,
		scheduler: scheduler,
		startTime: time.Now().UTC(),
	}

	if opts.ConfigPath != "" {
		watcher, err := NewConfigWatcher(opts.ConfigPath, d)
		if err != nil {
			return nil, fmt.Errorf("failed to create config watcher: %w", err)
		}
		d.watcher = watcher
	}

	return d, nil
}

// Start launches the retention sweep and config watcher.
func (d *Daemon) Start(ctx context.Context) error {
	interval := d.config().Jobs.SweepInterval.Std()
	_, err := d.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(d.sweepJobs),
		gocron.WithName("job-retention-sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}
	d.scheduler.Start()

	if d.watcher != nil {
		if err := d.watcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start config watcher: %w", err)
		}
	}

	slog.Info("Daemon started",
		slog.String("executor", d.config().Executor.Path),
		slog.Duration("sweep_interval", interval))
	return nil
}

// Stop shuts down the scheduler, watcher, and event publisher.
func (d *Daemon) Stop(ctx context.Context) error {
	if d.watcher != nil {
		if err := d.watcher.Stop(ctx); err != nil {
			slog.Warn("Config watcher stop failed", logfields.Error(err))
		}
	}
	if err := d.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	d.publisher.Close()
	slog.Info("Daemon stopped")
	return nil
}

// ExecuteBuild runs the executor synchronously for a validated request and
// returns the job id and captured output. Exactly one subprocess per call.
func (d *Daemon) ExecuteBuild(br *request.BuildRequest, payloadBase64 string) (jobID, output string, err error) {
	d.requestsTotal.Add(1)

	job := jobs.NewBuildJob(br.Owner, br.Repo, br.HeadSHA, br.RawInstallationID, br.UploadURL)
	d.jobs.Submit(job)
	d.jobs.Start(job.ID)

	slog.Info("Build started",
		logfields.JobID(job.ID),
		logfields.Owner(br.Owner),
		logfields.Repo(br.Repo),
		logfields.HeadSHA(br.HeadSHA))

	d.recorder.SetExecutorsInFlight(int(d.inflight.Add(1)))
	start := time.Now()
	outcome := d.currentBridge().Invoke(br, payloadBase64)
	elapsed := time.Since(start)
	d.recorder.SetExecutorsInFlight(int(d.inflight.Add(-1)))
	d.recorder.ObserveExecutorDuration(elapsed, outcome.Success)

	if outcome.Success {
		d.requestsAccepted.Add(1)
		d.recorder.IncRequestOutcome(metrics.OutcomeAccepted)
		d.jobs.Complete(job.ID, outcome.Output)
		d.publishOutcome(job.ID, br, string(jobs.BuildStatusCompleted), "")
		return job.ID, outcome.Output, nil
	}

	d.requestsFailed.Add(1)
	if outcome.Err.Category == errors.CategoryTimeout {
		d.recorder.IncRequestOutcome(metrics.OutcomeTimeout)
	} else {
		d.recorder.IncRequestOutcome(metrics.OutcomeBuildFailed)
	}
	d.jobs.Fail(job.ID, outcome.Err.Message, outcome.Output)
	d.publishOutcome(job.ID, br, string(jobs.BuildStatusFailed), outcome.Err.Message)

	if outcome.Output != "" {
		outcome.Err.WithContext("output", outcome.Output)
	}
	return job.ID, outcome.Output, outcome.Err
}

// MaxUpload returns the current raw-body size ceiling.
func (d *Daemon) MaxUpload() int { return d.config().Server.MaxUpload }

// Recorder returns the metrics recorder for pre-execution rejections.
func (d *Daemon) Recorder() metrics.Recorder { return d.recorder }

// GetJob returns one job record.
func (d *Daemon) GetJob(id string) (jobs.BuildJob, bool) { return d.jobs.Get(id) }

// ListJobs returns all job records, newest first.
func (d *Daemon) ListJobs() []jobs.BuildJob { return d.jobs.List() }

// GetStatus reports the daemon's operational status.
func (d *Daemon) GetStatus() string { return "running" }

// GetStartTime returns when the daemon started.
func (d *Daemon) GetStartTime() time.Time { return d.startTime }

// ActiveJobs returns the number of non-terminal job records.
func (d *Daemon) ActiveJobs() int { return d.jobs.ActiveCount() }

// RequestsTotal returns the number of build executions attempted.
func (d *Daemon) RequestsTotal() uint64 { return d.requestsTotal.Load() }

// RequestsAccepted returns the number of successful builds.
func (d *Daemon) RequestsAccepted() uint64 { return d.requestsAccepted.Load() }

// RequestsFailed returns the number of failed builds.
func (d *Daemon) RequestsFailed() uint64 { return d.requestsFailed.Load() }

func (d *Daemon) publishOutcome(jobID string, br *request.BuildRequest, status, errMsg string) {
	d.publisher.PublishOutcome(events.BuildEvent{
		JobID:          jobID,
		Owner:          br.Owner,
		Repo:           br.Repo,
		HeadSHA:        br.HeadSHA,
		InstallationID: br.RawInstallationID,
		Status:         status,
		Error:          errMsg,
		Timestamp:      time.Now().UTC(),
	})
}

func (d *Daemon) sweepJobs() {
	retention := d.config().Jobs.Retention.Std()
	if removed := d.jobs.Cleanup(retention); removed > 0 {
		slog.Info("Job retention sweep", slog.Int("removed", removed))
	}
}

func (d *Daemon) config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

func (d *Daemon) currentBridge() *executor.Bridge {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.bridge
}

// applyConfig swaps in a reloaded configuration. Only safely-reloadable
// fields take effect: max upload, executor path/timeout, job retention.
// Listener ports require a restart.
func (d *Daemon) applyConfig(cfg *config.Config) {
	d.mu.Lock()
	old := d.cfg
	d.cfg = cfg
	d.bridge = executor.New(cfg.Executor.Path, cfg.Executor.Timeout.Std(), slog.Default())
	d.mu.Unlock()

	slog.Info("Configuration reloaded",
		slog.Int("max_upload", cfg.Server.MaxUpload),
		slog.String("executor", cfg.Executor.Path),
		slog.Bool("ports_changed", old.Server.Port != cfg.Server.Port || old.Server.AdminPort != cfg.Server.AdminPort))
}
