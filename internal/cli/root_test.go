package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/pdmwatch/internal/cli/config"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "pdmwatch", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)

	want := []string{"version", "serve", "render", "machines", "maintenance", "migrate", "config", "completion"}
	for _, name := range want {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"config", "env", "verbose", "output", "log-level", "log-format", "db-driver", "db-path", "db-url"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRoot_MachinesEndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, _, err := executeRoot(t, "--db-path", "pdm.db", "machines", "add", "--name", "Lathe 1", "--type", "cnc", "--location", "Hall A")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "pdm.db"))

	out, _, err := executeRoot(t, "--db-path", "pdm.db", "-o", "json", "machines", "list")
	require.NoError(t, err)

	var machines []core.Machine
	require.NoError(t, json.Unmarshal([]byte(out), &machines))
	require.Len(t, machines, 1)
	assert.Equal(t, "Lathe 1", machines[0].Name)
}

func TestRoot_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pdmwatch.yaml"), []byte("database:\n  path: data/from-file.db\n"), 0o600))

	_, _, err := executeRoot(t, "migrate")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "data", "from-file.db"))

	t.Setenv("PDMWATCH_DATABASE__PATH", filepath.Join(dir, "from-env.db"))
	out, _, err := executeRoot(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "from-env.db")

	out, _, err = executeRoot(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "pdmwatch.yaml")
}

func TestRoot_InvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := executeRoot(t, "--log-level", "loud", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log.level")

	_, _, err = executeRoot(t, "--db-driver", "mysql", "machines", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown database driver")
}

func TestRoot_Version(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := executeRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pdmwatch v"+Version)
}

func TestRoot_VerboseLogsToStderr(t *testing.T) {
	t.Chdir(t.TempDir())

	_, errOut, err := executeRoot(t, "-v", "--db-path", ":memory:", "machines", "list")
	require.NoError(t, err)
	assert.Contains(t, errOut, "using environment")
	assert.Contains(t, errOut, "level=DEBUG")
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, _, err := executeRoot(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "pdmwatch")
		})
	}

	_, _, err := executeRoot(t, "completion", "tcsh")
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := newLogger(&buf, &config.Config{Log: config.LogConfig{Level: "info", Format: "json"}})
		require.NoError(t, err)

		logger.Info("hello", "machine_id", 3)
		logger.Debug("hidden")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "hello", entry["msg"])
		assert.InDelta(t, 3, entry["machine_id"], 0)
	})

	t.Run("verbose forces debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := newLogger(&buf, &config.Config{Verbose: true, Log: config.LogConfig{Level: "error", Format: "text"}})
		require.NoError(t, err)

		assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := newLogger(&bytes.Buffer{}, &config.Config{Log: config.LogConfig{Level: "loud"}})
		require.Error(t, err)
	})
}

func TestGetConfig(t *testing.T) {
	assert.Equal(t, config.DefaultEnv, GetConfig(context.Background()).Environment)

	cfg := &config.Config{Environment: "prod"}
	assert.Same(t, cfg, GetConfig(config.WithConfig(context.Background(), cfg)))
}
