package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/buildrunner/internal/config"
	derrors "git.home.luguber.info/inful/buildrunner/internal/errors"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct{}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	if _, err := os.Stat(root.Config); os.IsNotExist(err) {
		return derrors.New(derrors.CategoryConfig, derrors.SeverityFatal, "configuration file not found").
			WithContext("path", root.Config).
			Build()
	}

	cfg, err := config.Load(root.Config)
	if err != nil {
		return derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "configuration is invalid").
			WithContext("path", root.Config).
			Build()
	}

	fmt.Printf("%s: OK\n", root.Config)
	if _, err := os.Stat(cfg.Executor.Path); os.IsNotExist(err) {
		fmt.Printf("  warning: executor binary not found at %s (builds will fail until it exists)\n", cfg.Executor.Path)
	}
	fmt.Printf("  ingest port:   %d\n", cfg.Server.Port)
	fmt.Printf("  admin port:    %d\n", cfg.Server.AdminPort)
	fmt.Printf("  max upload:    %d bytes\n", cfg.Server.MaxUpload)
	fmt.Printf("  executor:      %s (timeout %s)\n", cfg.Executor.Path, cfg.Executor.Timeout.Std())
	fmt.Printf("  job retention: %s (sweep every %s)\n", cfg.Jobs.Retention.Std(), cfg.Jobs.SweepInterval.Std())
	if cfg.Events.Enabled {
		fmt.Printf("  events:        %s -> %s\n", cfg.Events.NATSURL, cfg.Events.Subject)
	} else {
		fmt.Println("  events:        disabled")
	}
	return nil
}
