package state

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// goose keeps its configuration in package globals.
var migrateMu sync.Mutex

// Migrate runs all pending database migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if s.db == nil {
		return errNotOpened
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	dir, err := s.prepareGoose()
	if err != nil {
		return err
	}

	if err := goose.UpContext(ctx, s.db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// MigrationVersion returns the current migration version.
func (s *Store) MigrationVersion(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, errNotOpened
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	if _, err := s.prepareGoose(); err != nil {
		return 0, err
	}

	return goose.GetDBVersionContext(ctx, s.db)
}

func (s *Store) prepareGoose() (string, error) {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{s.logger})

	gooseDialect, dir := "sqlite3", "migrations/sqlite"
	if s.dialect == DialectPostgres {
		gooseDialect, dir = "postgres", "migrations/postgres"
	}

	if err := goose.SetDialect(gooseDialect); err != nil {
		return "", fmt.Errorf("failed to set dialect: %w", err)
	}
	return dir, nil
}

// gooseLogger routes goose output through slog at debug level.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrate"))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrate"))
}
