package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  admin_port: 9091
  max_upload: 1048576
executor:
  path: /opt/executor/run
  timeout: 2m
jobs:
  retention: 30m
  sweep_interval: 1m
events:
  enabled: true
  nats_url: nats://localhost:4222
  subject: builds.firmware
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 9091, cfg.Server.AdminPort)
	assert.Equal(t, 1048576, cfg.Server.MaxUpload)
	assert.Equal(t, "/opt/executor/run", cfg.Executor.Path)
	assert.Equal(t, 2*time.Minute, cfg.Executor.Timeout.Std())
	assert.Equal(t, 30*time.Minute, cfg.Jobs.Retention.Std())
	assert.Equal(t, time.Minute, cfg.Jobs.SweepInterval.Std())
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "builds.firmware", cfg.Events.Subject)
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
executor:
  path: /opt/executor/run
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8081, cfg.Server.AdminPort)
	assert.Equal(t, 200*1024*1024, cfg.Server.MaxUpload)
	assert.Equal(t, 10*time.Minute, cfg.Executor.Timeout.Std())
	assert.Equal(t, time.Hour, cfg.Jobs.Retention.Std())
	assert.Equal(t, "buildrunner.builds", cfg.Events.Subject)
	assert.False(t, cfg.Events.Enabled)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("BR_EXECUTOR_PATH", "/custom/executor")
	path := writeConfig(t, `
executor:
  path: ${BR_EXECUTOR_PATH}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/custom/executor", cfg.Executor.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
executor:
  path: /opt/executor/run
  timeout: soon
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"negative port", func(c *Config) { c.Server.Port = -1 }, "invalid server port"},
		{"port too high", func(c *Config) { c.Server.AdminPort = 70000 }, "invalid admin port"},
		{"zero max upload", func(c *Config) { c.Server.MaxUpload = -5 }, "max_upload"},
		{"empty executor path", func(c *Config) { c.Executor.Path = "" }, "executor path"},
		{"events without url", func(c *Config) { c.Events.Enabled = true }, "nats_url"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)
			err := cfg.Validate()
			if test.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), test.wantErr)
			}
		})
	}
}
