package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/buildrunner/internal/config"
	"git.home.luguber.info/inful/buildrunner/internal/daemon"
	derrors "git.home.luguber.info/inful/buildrunner/internal/errors"
	"git.home.luguber.info/inful/buildrunner/internal/events"
	"git.home.luguber.info/inful/buildrunner/internal/metrics"
	"git.home.luguber.info/inful/buildrunner/internal/server/httpserver"
	"git.home.luguber.info/inful/buildrunner/internal/version"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	NoMetrics bool `help:"Disable the Prometheus metrics endpoint"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, configPath, err := loadServeConfig(root.Config)
	if err != nil {
		return err
	}
	return RunServe(cfg, configPath, !s.NoMetrics)
}

// loadServeConfig loads the config file when present. The default path is
// allowed to be absent so the service can run on built-in defaults; an
// explicitly given path must exist.
func loadServeConfig(path string) (*config.Config, string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if path == "config.yaml" {
			slog.Info("No configuration file found, using defaults")
			return config.Default(), "", nil
		}
		return nil, "", derrors.New(derrors.CategoryConfig, derrors.SeverityFatal, "configuration file not found").
			WithContext("path", path).
			Build()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "failed to load configuration").
			WithContext("path", path).
			Build()
	}
	return cfg, path, nil
}

// RunServe wires the daemon and HTTP servers and blocks until shutdown.
func RunServe(cfg *config.Config, configPath string, enableMetrics bool) error {
	slog.Info("Starting buildrunner",
		slog.String("version", version.Version),
		slog.String("executor", cfg.Executor.Path),
		slog.Int("max_upload", cfg.Server.MaxUpload))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := daemon.Options{ConfigPath: configPath}
	srvOpts := httpserver.Options{}

	if enableMetrics {
		reg := prometheus.NewRegistry()
		opts.Recorder = metrics.NewPrometheusRecorder(reg)
		srvOpts.PrometheusHandler = metrics.HTTPHandler(reg)
	}

	if cfg.Events.Enabled {
		publisher, err := events.NewNATSPublisher(&cfg.Events, slog.Default())
		if err != nil {
			return derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "failed to connect event publisher").
				WithContext("nats_url", cfg.Events.NATSURL).
				Build()
		}
		opts.Publisher = publisher
		defer publisher.Close()
	}

	d, err := daemon.New(cfg, opts)
	if err != nil {
		return derrors.Wrap(err, derrors.CategoryDaemon, derrors.SeverityFatal, "failed to create daemon").Build()
	}

	if err := d.Start(ctx); err != nil {
		return derrors.Wrap(err, derrors.CategoryDaemon, derrors.SeverityFatal, "failed to start daemon").Build()
	}

	srv := httpserver.New(cfg, d, srvOpts)
	if err := srv.Start(ctx); err != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		_ = d.Stop(stopCtx)
		return derrors.Wrap(err, derrors.CategoryDaemon, derrors.SeverityFatal, "failed to start HTTP servers").Build()
	}

	slog.Info("Service started, waiting for shutdown signal...")
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := srv.Stop(stopCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	if err := d.Stop(stopCtx); err != nil {
		return derrors.Wrap(err, derrors.CategoryDaemon, derrors.SeverityError, "failed to stop daemon").Build()
	}

	slog.Info("Service stopped successfully")
	return nil
}
