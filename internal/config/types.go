// Package config provides shared configuration types for pdmwatch.
// This package is decoupled from CLI concerns so the state store can be
// opened from any entry point.
package config

import (
	"fmt"
	"strings"
)

// DatabaseConfig holds the state database connection settings.
type DatabaseConfig struct {
	Driver string `koanf:"driver" yaml:"driver" json:"driver"` // sqlite, postgres

	// File-based databases (SQLite)
	Path string `koanf:"path" yaml:"path,omitempty" json:"path,omitempty"` // file path or :memory:

	// Network databases. URL wins over the discrete fields when set.
	URL      string `koanf:"url" yaml:"url,omitempty" json:"url,omitempty"`
	Host     string `koanf:"host" yaml:"host,omitempty" json:"host,omitempty"`
	Port     int    `koanf:"port" yaml:"port,omitempty" json:"port,omitempty"`
	User     string `koanf:"user" yaml:"user,omitempty" json:"user,omitempty"`
	Password string `koanf:"password" yaml:"password,omitempty" json:"password,omitempty"`
	Name     string `koanf:"name" yaml:"name,omitempty" json:"name,omitempty"`
	SSLMode  string `koanf:"sslmode" yaml:"sslmode,omitempty" json:"sslmode,omitempty"`
}

// Validate checks if the database configuration is usable.
func (d *DatabaseConfig) Validate() error {
	switch strings.ToLower(d.Driver) {
	case DriverSQLite:
		if d.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if d.URL == "" && d.Name == "" {
			return fmt.Errorf("database.url or database.name is required for the postgres driver")
		}
	case "":
		return fmt.Errorf("database driver is required")
	default:
		return fmt.Errorf("unknown database driver %q (available: %s, %s)", d.Driver, DriverSQLite, DriverPostgres)
	}
	return nil
}

// IsMemory reports whether the config points at an in-memory SQLite database.
func (d *DatabaseConfig) IsMemory() bool {
	return d.Driver == DriverSQLite && d.Path == ":memory:"
}

// DSN builds the driver-specific connection string.
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case DriverPostgres:
		if d.URL != "" {
			return d.URL
		}
		return buildPostgresDSN(d)
	default:
		return buildSQLiteDSN(d.Path)
	}
}

// buildSQLiteDSN enables foreign keys on every connection and WAL for files.
func buildSQLiteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// buildPostgresDSN constructs a key=value PostgreSQL connection string.
func buildPostgresDSN(d *DatabaseConfig) string {
	host := d.Host
	if host == "" {
		host = DefaultPostgresHost
	}
	port := d.Port
	if port == 0 {
		port = DefaultPostgresPort
	}
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = DefaultSSLMode
	}

	parts := []string{
		fmt.Sprintf("host=%s", host),
		fmt.Sprintf("port=%d", port),
	}
	if d.User != "" {
		parts = append(parts, fmt.Sprintf("user=%s", d.User))
	}
	if d.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", quoteDSNValue(d.Password)))
	}
	if d.Name != "" {
		parts = append(parts, fmt.Sprintf("dbname=%s", d.Name))
	}
	parts = append(parts, fmt.Sprintf("sslmode=%s", sslmode))

	return strings.Join(parts, " ")
}

// quoteDSNValue quotes values containing spaces or quotes per libpq rules.
func quoteDSNValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
