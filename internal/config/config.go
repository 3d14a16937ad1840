// Package config loads and validates the buildrunner configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/buildrunner/internal/payload"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Executor ExecutorConfig `yaml:"executor"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Events   EventsConfig   `yaml:"events"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port      int `yaml:"port"`
	AdminPort int `yaml:"admin_port"`
	// MaxUpload bounds the raw request body in bytes.
	MaxUpload int `yaml:"max_upload"`
}

// ExecutorConfig locates and bounds the external build executor.
type ExecutorConfig struct {
	// Path is the fixed executor binary path; invoked with no arguments.
	Path    string   `yaml:"path"`
	Timeout Duration `yaml:"timeout"`
}

// JobsConfig controls in-memory job record retention.
type JobsConfig struct {
	// Retention is how long terminal job records are kept.
	Retention Duration `yaml:"retention"`
	// SweepInterval is how often the retention sweep runs.
	SweepInterval Duration `yaml:"sweep_interval"`
}

// Duration wraps time.Duration so YAML values like "10m" parse naturally.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// EventsConfig configures the optional NATS build-event publisher.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists; existing process env wins.
	if err := loadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns a configuration with all defaults applied, used when no
// config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.AdminPort == 0 {
		c.Server.AdminPort = 8081
	}
	if c.Server.MaxUpload == 0 {
		c.Server.MaxUpload = payload.DefaultMaxUpload
	}
	if c.Executor.Path == "" {
		c.Executor.Path = "/usr/local/bin/build-executor"
	}
	if c.Executor.Timeout == 0 {
		c.Executor.Timeout = Duration(10 * time.Minute)
	}
	if c.Jobs.Retention == 0 {
		c.Jobs.Retention = Duration(time.Hour)
	}
	if c.Jobs.SweepInterval == 0 {
		c.Jobs.SweepInterval = Duration(5 * time.Minute)
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "buildrunner.builds"
	}
}

// Validate checks the configuration for values that would fail at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.AdminPort < 0 || c.Server.AdminPort > 65535 {
		return fmt.Errorf("invalid admin port: %d", c.Server.AdminPort)
	}
	if c.Server.MaxUpload <= 0 {
		return fmt.Errorf("max_upload must be positive, got %d", c.Server.MaxUpload)
	}
	if c.Executor.Path == "" {
		return fmt.Errorf("executor path is required")
	}
	if c.Executor.Timeout <= 0 {
		return fmt.Errorf("executor timeout must be positive, got %s", c.Executor.Timeout.Std())
	}
	if c.Events.Enabled && c.Events.NATSURL == "" {
		return fmt.Errorf("events enabled but nats_url is empty")
	}
	return nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Server: ServerConfig{
			Port:      8080,
			AdminPort: 8081,
			MaxUpload: payload.DefaultMaxUpload,
		},
		Executor: ExecutorConfig{
			Path:    "/usr/local/bin/build-executor",
			Timeout: Duration(10 * time.Minute),
		},
		Jobs: JobsConfig{
			Retention:     Duration(time.Hour),
			SweepInterval: Duration(5 * time.Minute),
		},
		Events: EventsConfig{
			Enabled: false,
			NATSURL: "nats://localhost:4222",
			Subject: "buildrunner.builds",
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// loadEnvFile loads environment variables from .env/.env.local files.
// It attempts each supported filename in order and stops at the first
// successfully parsed file. Existing environment variables are not
// overwritten.
func loadEnvFile() error {
	envPaths := []string{".env", ".env.local"}
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
			return nil
		}
	}
	return fmt.Errorf("no .env file found")
}
