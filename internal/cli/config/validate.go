package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Output formats accepted by --output.
const (
	OutputAuto = "auto"
	OutputText = "text"
	OutputJSON = "json"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch strings.ToLower(c.OutputFormat) {
	case OutputAuto, OutputText, OutputJSON:
	default:
		return fmt.Errorf("output must be one of auto, text, json, got %q", c.OutputFormat)
	}
	if c.Maintenance.IntervalDays <= 0 {
		return fmt.Errorf("maintenance.interval_days must be greater than 0, got %d", c.Maintenance.IntervalDays)
	}
	if c.Maintenance.HistoryLimit < 0 {
		return fmt.Errorf("maintenance.history_limit must not be negative, got %d", c.Maintenance.HistoryLimit)
	}
	return nil
}

// ParseLogLevel converts a level name into a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log.level %q: %w", s, err)
	}
	return level, nil
}

// Redacted returns a copy of the config safe to print.
func (c *Config) Redacted() Config {
	out := *c
	out.Database = redactDatabase(c.Database)
	if out.Server.SessionSecret != "" {
		out.Server.SessionSecret = redactedValue
	}
	if len(c.Environments) > 0 {
		out.Environments = make(map[string]EnvConfig, len(c.Environments))
		for name, env := range c.Environments {
			if env.Database != nil {
				db := redactDatabase(*env.Database)
				env.Database = &db
			}
			out.Environments[name] = env
		}
	}
	return out
}

const redactedValue = "********"

func redactDatabase(d DatabaseConfig) DatabaseConfig {
	if d.Password != "" {
		d.Password = redactedValue
	}
	if u, err := url.Parse(d.URL); err == nil && d.URL != "" {
		d.URL = u.Redacted()
	}
	return d
}
