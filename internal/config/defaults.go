package config

import "time"

// Default configuration values.
const (
	DefaultDriver          = DriverSQLite
	DefaultDatabasePath    = ".pdmwatch/pdmwatch.db"
	DefaultSSLMode         = "disable"
	DefaultPostgresPort    = 5432
	DefaultPostgresHost    = "localhost"
	DefaultServerPort      = 8765
	DefaultShutdownTimeout = 5 * time.Second
	DefaultAllowedOrigin   = "http://localhost:3000"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ApplyDatabaseDefaults applies default values to a DatabaseConfig based on the driver.
func ApplyDatabaseDefaults(d *DatabaseConfig) {
	if d == nil {
		return
	}
	if d.Driver == "" {
		d.Driver = DefaultDriver
	}

	switch d.Driver {
	case DriverSQLite:
		if d.Path == "" {
			d.Path = DefaultDatabasePath
		}
	case DriverPostgres:
		if d.Host == "" {
			d.Host = DefaultPostgresHost
		}
		if d.Port == 0 {
			d.Port = DefaultPostgresPort
		}
		if d.SSLMode == "" {
			d.SSLMode = DefaultSSLMode
		}
	}
}
