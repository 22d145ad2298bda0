// Package config provides configuration management for the pdmwatch CLI.
//
// The shared database settings live in internal/config so the state store can
// be opened without importing CLI code. This package layers the CLI-only
// sections (logging, server, maintenance, per-environment overrides) over them.
package config

import (
	"time"

	sharedcfg "github.com/leapstack-labs/pdmwatch/internal/config"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// DatabaseConfig is an alias for the shared database configuration.
type DatabaseConfig = sharedcfg.DatabaseConfig

// Config holds all CLI configuration options.
type Config struct {
	Environment  string               `koanf:"environment" yaml:"environment" json:"environment"`
	Verbose      bool                 `koanf:"verbose" yaml:"verbose" json:"verbose"`
	OutputFormat string               `koanf:"output" yaml:"output" json:"output"`
	Log          LogConfig            `koanf:"log" yaml:"log" json:"log"`
	Server       ServerConfig         `koanf:"server" yaml:"server" json:"server"`
	Database     DatabaseConfig       `koanf:"database" yaml:"database" json:"database"`
	Maintenance  MaintenanceConfig    `koanf:"maintenance" yaml:"maintenance" json:"maintenance"`
	Environments map[string]EnvConfig `koanf:"environments" yaml:"environments,omitempty" json:"environments"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-" yaml:"-" json:"-"`
}

// LogConfig controls the slog handler built by the root command.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level" json:"level"`
	Format string `koanf:"format" yaml:"format" json:"format"` // text, json
}

// ServerConfig holds configuration for the web server.
type ServerConfig struct {
	Host            string        `koanf:"host" yaml:"host" json:"host"`
	Port            int           `koanf:"port" yaml:"port" json:"port"`
	SessionSecret   string        `koanf:"session_secret" yaml:"session_secret,omitempty" json:"session_secret"`
	AllowedOrigins  []string      `koanf:"allowed_origins" yaml:"allowed_origins" json:"allowed_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	Watch           bool          `koanf:"watch" yaml:"watch" json:"watch"`
}

// MaintenanceConfig tunes schedule derivation.
type MaintenanceConfig struct {
	IntervalDays int `koanf:"interval_days" yaml:"interval_days" json:"interval_days"`
	HistoryLimit int `koanf:"history_limit" yaml:"history_limit" json:"history_limit"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Database *DatabaseConfig `koanf:"database" yaml:"database,omitempty" json:"database"`
}

// Default configuration values.
const (
	DefaultEnv       = "dev"
	DefaultOutput    = "auto" // TTY=text, non-TTY=plain text
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// defaults is the confmap layer loaded before any file, env or flag.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"environment":               DefaultEnv,
		"verbose":                   false,
		"output":                    DefaultOutput,
		"log.level":                 DefaultLogLevel,
		"log.format":                DefaultLogFormat,
		"server.host":               "",
		"server.port":               sharedcfg.DefaultServerPort,
		"server.allowed_origins":    []string{sharedcfg.DefaultAllowedOrigin},
		"server.shutdown_timeout":   sharedcfg.DefaultShutdownTimeout.String(),
		"server.watch":              true,
		"database.driver":           sharedcfg.DefaultDriver,
		"database.path":             sharedcfg.DefaultDatabasePath,
		"database.sslmode":          sharedcfg.DefaultSSLMode,
		"maintenance.interval_days": core.DefaultMaintenanceIntervalDays,
		"maintenance.history_limit": core.DefaultScheduleHistoryLimit,
	}
}
