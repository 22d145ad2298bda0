package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "sqlite file",
			cfg:  DatabaseConfig{Driver: DriverSQLite, Path: "data/pdm.db"},
			want: "file:data/pdm.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		},
		{
			name: "sqlite memory",
			cfg:  DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"},
			want: "file::memory:?_pragma=foreign_keys(1)",
		},
		{
			name: "postgres url wins",
			cfg:  DatabaseConfig{Driver: DriverPostgres, URL: "postgres://u:p@db/pdm", Host: "ignored"},
			want: "postgres://u:p@db/pdm",
		},
		{
			name: "postgres fields",
			cfg:  DatabaseConfig{Driver: DriverPostgres, User: "pdm", Password: "it's secret", Name: "plant"},
			want: `host=localhost port=5432 user=pdm password='it\'s secret' dbname=plant sslmode=disable`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

func TestDatabaseConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       DatabaseConfig
		errSubstr string
	}{
		{name: "sqlite ok", cfg: DatabaseConfig{Driver: "sqlite", Path: "x.db"}},
		{name: "sqlite without path", cfg: DatabaseConfig{Driver: "sqlite"}, errSubstr: "database.path"},
		{name: "postgres with name", cfg: DatabaseConfig{Driver: "postgres", Name: "pdm"}},
		{name: "postgres without target", cfg: DatabaseConfig{Driver: "postgres"}, errSubstr: "database.url"},
		{name: "empty driver", cfg: DatabaseConfig{}, errSubstr: "driver is required"},
		{name: "unknown driver", cfg: DatabaseConfig{Driver: "mysql"}, errSubstr: "unknown database driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestApplyDatabaseDefaults(t *testing.T) {
	d := &DatabaseConfig{}
	ApplyDatabaseDefaults(d)
	assert.Equal(t, DriverSQLite, d.Driver)
	assert.Equal(t, DefaultDatabasePath, d.Path)

	pg := &DatabaseConfig{Driver: DriverPostgres}
	ApplyDatabaseDefaults(pg)
	assert.Equal(t, DefaultPostgresHost, pg.Host)
	assert.Equal(t, DefaultPostgresPort, pg.Port)
	assert.Equal(t, DefaultSSLMode, pg.SSLMode)

	ApplyDatabaseDefaults(nil)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileNameAlt), []byte("verbose: true\n"), 0600))

	assert.Equal(t, root, FindProjectRoot(nested))
	assert.Equal(t, filepath.Join(root, ConfigFileNameAlt), FindConfigFile(root))
	assert.Empty(t, FindConfigFile(nested))
}
