package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a pdmwatch.yaml into dir and returns its path.
func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "pdmwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("env", "", "")
	fs.String("db-path", "", "")
	fs.String("log-level", "", "")
	fs.Int("port", 0, "")
	fs.Bool("no-browser", false, "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Empty(t, GetConfigFileUsed())
	assert.Equal(t, DefaultEnv, cfg.Environment)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 8765, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Server.Watch)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dir, ".pdmwatch", "pdmwatch.db"), cfg.Database.Path)
	assert.Equal(t, 90, cfg.Maintenance.IntervalDays)
	assert.Equal(t, 5, cfg.Maintenance.HistoryLimit)
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `
log:
  level: debug
  format: json
server:
  port: 9100
  shutdown_timeout: 12s
  allowed_origins:
    - https://plant.example.com
database:
  path: data/machines.db
maintenance:
  interval_days: 30
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 12*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"https://plant.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, filepath.Join(dir, "data", "machines.db"), cfg.Database.Path)
	assert.Equal(t, 30, cfg.Maintenance.IntervalDays)
}

func TestLoadConfig_UpwardSearch(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, "server:\n  port: 9200\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, ".pdmwatch", "pdmwatch.db"), cfg.Database.Path)
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "server:\n  port: 9100\n")

	t.Setenv("PDMWATCH_SERVER__PORT", "9300")
	t.Setenv("PDMWATCH_SERVER__ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("PDMWATCH_SERVER__SHUTDOWN_TIMEOUT", "1m")
	t.Setenv("PDMWATCH_LOG__LEVEL", "warn")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 9300, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "server:\n  port: 9100\n")
	t.Setenv("PDMWATCH_SERVER__PORT", "9300")

	flags := testFlags()
	require.NoError(t, flags.Set("port", "9400"))
	require.NoError(t, flags.Set("no-browser", "true"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 9400, cfg.Server.Port)
	assert.False(t, k.Exists("no_browser"))
	assert.False(t, k.Exists("no-browser"))
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "server:\n  port: 9100\n")
	t.Setenv("PDMWATCH_SERVER__PORT", "9300")

	cfg, err := LoadConfig(path, testFlags())
	require.NoError(t, err)

	assert.Equal(t, 9300, cfg.Server.Port)
}

func TestLoadConfig_DBPathFlagRelativeToCWD(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "")
	cwd := t.TempDir()
	t.Chdir(cwd)

	flags := testFlags()
	require.NoError(t, flags.Set("db-path", "local.db"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "local.db"), cfg.Database.Path)
}

func TestLoadConfig_MemoryPathUntouched(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "database:\n  path: \":memory:\"\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.True(t, cfg.Database.IsMemory())
}

func TestLoadConfig_Environments(t *testing.T) {
	const content = `
environment: dev
database:
  path: dev.db
environments:
  prod:
    database:
      driver: postgres
      host: ${TEST_PDM_HOST}
      user: ${TEST_PDM_USER}
      password: ${TEST_PDM_PASSWORD}
      name: pdmwatch
`
	t.Setenv("TEST_PDM_HOST", "db.internal")
	t.Setenv("TEST_PDM_USER", "maint")
	t.Setenv("TEST_PDM_PASSWORD", "s3cret")

	t.Run("default environment keeps base database", func(t *testing.T) {
		ResetConfig()
		dir := t.TempDir()
		cfg, err := LoadConfig(writeConfig(t, dir, content), nil)
		require.NoError(t, err)

		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, filepath.Join(dir, "dev.db"), cfg.Database.Path)
	})

	t.Run("env flag selects overrides", func(t *testing.T) {
		ResetConfig()
		flags := testFlags()
		require.NoError(t, flags.Set("env", "prod"))

		cfg, err := LoadConfig(writeConfig(t, t.TempDir(), content), flags)
		require.NoError(t, err)

		assert.Equal(t, "prod", cfg.Environment)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "maint", cfg.Database.User)
		assert.Equal(t, "s3cret", cfg.Database.Password)
		assert.Equal(t, "pdmwatch", cfg.Database.Name)
		assert.Equal(t, 5432, cfg.Database.Port)
	})

	t.Run("unknown environment is ignored", func(t *testing.T) {
		ResetConfig()
		flags := testFlags()
		require.NoError(t, flags.Set("env", "staging"))

		cfg, err := LoadConfig(writeConfig(t, t.TempDir(), content), flags)
		require.NoError(t, err)

		assert.Equal(t, "sqlite", cfg.Database.Driver)
	})
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"unknown driver", "database:\n  driver: mysql\n", "unknown database driver"},
		{"port out of range", "server:\n  port: 70000\n", "server.port"},
		{"bad log level", "log:\n  level: loud\n", "invalid log.level"},
		{"bad interval", "maintenance:\n  interval_days: 0\n", "maintenance.interval_days"},
		{"malformed yaml", "server: [\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, t.TempDir(), tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")

	tests := []struct {
		input string
		want  string
	}{
		{"${TEST_VAR_ONE}", "value_one"},
		{"prefix_${TEST_VAR_ONE}_suffix", "prefix_value_one_suffix"},
		{"${TEST_VAR_UNSET_XYZ}", "${TEST_VAR_UNSET_XYZ}"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnvVars(tt.input))
		})
	}
}

func TestMergeDatabaseConfig(t *testing.T) {
	base := DatabaseConfig{Driver: "sqlite", Path: "a.db", SSLMode: "disable"}
	merged := MergeDatabaseConfig(base, DatabaseConfig{Driver: "postgres", Name: "pdm", Port: 6543})

	assert.Equal(t, "postgres", merged.Driver)
	assert.Equal(t, "a.db", merged.Path)
	assert.Equal(t, "pdm", merged.Name)
	assert.Equal(t, 6543, merged.Port)
	assert.Equal(t, "disable", merged.SSLMode)
	assert.Equal(t, "sqlite", base.Driver, "base must not be modified")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Redacted(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{SessionSecret: "cookie-secret"},
		Database: DatabaseConfig{
			Driver:   "postgres",
			URL:      "postgres://maint:hunter2@db:5432/pdm",
			Password: "hunter2",
		},
		Environments: map[string]EnvConfig{
			"prod": {Database: &DatabaseConfig{Password: "prod-pass"}},
		},
	}

	out := cfg.Redacted()

	assert.Equal(t, redactedValue, out.Database.Password)
	assert.NotContains(t, out.Database.URL, "hunter2")
	assert.Equal(t, redactedValue, out.Server.SessionSecret)
	assert.Equal(t, redactedValue, out.Environments["prod"].Database.Password)

	assert.Equal(t, "hunter2", cfg.Database.Password, "original must not be modified")
	assert.Equal(t, "prod-pass", cfg.Environments["prod"].Database.Password)
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "falls back to a discard logger")

	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestConfigContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	cfg := &Config{Environment: "dev"}
	assert.Same(t, cfg, FromContext(WithConfig(context.Background(), cfg)))
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, ".pdmwatch/pdmwatch.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 90, cfg.Maintenance.IntervalDays)
}
