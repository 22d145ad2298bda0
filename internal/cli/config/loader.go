package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	intconfig "github.com/leapstack-labs/pdmwatch/internal/config"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "PDMWATCH_"

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// flagKeys maps CLI flag names to config keys. Flags not listed here are
// command switches and never reach the config.
var flagKeys = map[string]string{
	"env":        "environment",
	"verbose":    "verbose",
	"output":     "output",
	"log-level":  "log.level",
	"log-format": "log.format",
	"db-driver":  "database.driver",
	"db-path":    "database.path",
	"db-url":     "database.url",
	"host":       "server.host",
	"port":       "server.port",
	"watch":      "server.watch",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// inferProjectRoot determines the project root.
// Priority:
//  1. Directory of an explicit --config file
//  2. Search upward from CWD for pdmwatch.yaml
//  3. Current working directory
func inferProjectRoot(cfgFile string) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
		return filepath.Dir(cfgFile)
	}

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		return "."
	}
	if root := intconfig.FindProjectRoot(cwd); root != "" {
		return root
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// LoadConfig loads configuration from defaults, file, environment variables
// and flags. Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	projectRoot := inferProjectRoot(cfgFile)

	// A --db-path given on the command line is relative to CWD, not the project.
	var flagDBPath string
	if flags != nil && flags.Changed("db-path") {
		if v, _ := flags.GetString("db-path"); v != "" && v != ":memory:" {
			flagDBPath, _ = filepath.Abs(v)
		}
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		cfgFile = intconfig.FindConfigFile(projectRoot)
	}
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables
	// Transform: PDMWATCH_SERVER__PORT -> server.port
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Decode
	var cfg Config
	if err := unmarshal(k, &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ProjectRoot = projectRoot

	// 6. Environment overrides for the selected environment
	if envCfg, ok := cfg.Environments[cfg.Environment]; ok && envCfg.Database != nil {
		cfg.Database = MergeDatabaseConfig(cfg.Database, *envCfg.Database)
	}

	expandDatabaseEnvVars(&cfg.Database)
	intconfig.ApplyDatabaseDefaults(&cfg.Database)

	if flagDBPath != "" {
		cfg.Database.Path = flagDBPath
	} else if cfg.Database.Driver == intconfig.DriverSQLite {
		cfg.Database.Path = resolvePathRelativeTo(cfg.Database.Path, projectRoot)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	currentConfig = &cfg
	return &cfg, nil
}

// Default returns the configuration built from defaults alone, with the
// database path left relative.
func Default() *Config {
	kd := koanf.New(".")
	var cfg Config
	if err := kd.Load(confmap.Provider(defaults(), "."), nil); err == nil {
		_ = unmarshal(kd, &cfg)
	}
	return &cfg
}

func unmarshal(ko *koanf.Koanf, cfg *Config) error {
	return ko.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           cfg,
			WeaklyTypedInput: true,
		},
	})
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the most recently loaded configuration.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored by WithConfig, or nil.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(configKey{}).(*Config)
	return cfg
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandDatabaseEnvVars expands environment variables in sensitive database fields.
func expandDatabaseEnvVars(d *DatabaseConfig) {
	d.Password = expandEnvVars(d.Password)
	d.User = expandEnvVars(d.User)
	d.Host = expandEnvVars(d.Host)
	d.URL = expandEnvVars(d.URL)
}

// MergeDatabaseConfig returns base with every non-zero field of override applied.
func MergeDatabaseConfig(base, override DatabaseConfig) DatabaseConfig {
	merged := base
	if override.Driver != "" {
		merged.Driver = override.Driver
	}
	if override.Path != "" {
		merged.Path = override.Path
	}
	if override.URL != "" {
		merged.URL = override.URL
	}
	if override.Host != "" {
		merged.Host = override.Host
	}
	if override.Port != 0 {
		merged.Port = override.Port
	}
	if override.User != "" {
		merged.User = override.User
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	if override.Name != "" {
		merged.Name = override.Name
	}
	if override.SSLMode != "" {
		merged.SSLMode = override.SSLMode
	}
	return merged
}
