package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/buildrunner/internal/config"
)

func TestInitThenCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	root := &CLI{Config: path}

	initCmd := &InitCmd{}
	require.NoError(t, initCmd.Run(nil, root))

	// Generated file must load and validate cleanly.
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)

	checkCmd := &CheckCmd{}
	require.NoError(t, checkCmd.Run(nil, root))
}

func TestInit_RefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	root := &CLI{Config: path}

	initCmd := &InitCmd{}
	require.NoError(t, initCmd.Run(nil, root))
	require.Error(t, initCmd.Run(nil, root))

	initCmd.Force = true
	require.NoError(t, initCmd.Run(nil, root))
}

func TestCheck_MissingFile(t *testing.T) {
	root := &CLI{Config: filepath.Join(t.TempDir(), "missing.yaml")}
	err := (&CheckCmd{}).Run(nil, root)
	require.Error(t, err)
}

func TestLoadServeConfig_ExplicitMissingPathFails(t *testing.T) {
	_, _, err := loadServeConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
