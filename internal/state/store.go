// Package state provides persistence for pdmwatch on SQLite or PostgreSQL.
// It stores machines and their maintenance history and owns the schema
// migrations for both dialects.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver ("pgx")
	"github.com/leapstack-labs/pdmwatch/internal/config"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// Dialect identifies the SQL flavour the store talks to.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

var errNotOpened = errors.New("database not opened")

// Store implements core.Store over database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
	now     func() time.Time
}

var _ core.Store = (*Store)(nil)

// New creates a store that is not yet connected. Call Open before use.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		logger: logger,
		now:    time.Now,
	}
}

// NewWithDB wraps an existing connection. Useful for tests and embedding.
func NewWithDB(db *sql.DB, dialect Dialect, logger *slog.Logger) *Store {
	s := New(logger)
	s.db = db
	s.dialect = dialect
	return s
}

// WithClock replaces the time source used for timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Open connects to the database described by cfg and pings it.
func (s *Store) Open(ctx context.Context, cfg config.DatabaseConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	driverName := "sqlite"
	dialect := DialectSQLite
	if cfg.Driver == config.DriverPostgres {
		driverName = "pgx"
		dialect = DialectPostgres
	}

	s.logger.Debug("opening state database", slog.String("driver", cfg.Driver), slog.String("path", cfg.Path), slog.String("host", cfg.Host))

	db, err := sql.Open(driverName, cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	// Every connection to :memory: is a fresh database.
	if cfg.IsMemory() {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s database: %w", cfg.Driver, err)
	}

	s.db = db
	s.dialect = dialect
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the dialect of the open connection.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping checks the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return errNotOpened
	}
	return s.db.PingContext(ctx)
}

// timestamp returns the current time in UTC, truncated to microseconds so
// both dialects round-trip the same value.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// rebind rewrites ? placeholders as $1..$n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// updateSet accumulates the assignments of a partial UPDATE.
type updateSet struct {
	cols []string
	args []any
}

func (u *updateSet) add(col string, v any) {
	u.cols = append(u.cols, col+" = ?")
	u.args = append(u.args, v)
}

func (u *updateSet) empty() bool {
	return len(u.cols) == 0
}

func (u *updateSet) clause() string {
	return strings.Join(u.cols, ", ")
}

// notFound wraps core.ErrNotFound with the entity that was missing.
func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, core.ErrNotFound)
}

// checkAffected turns a zero-row result into a not-found error.
func checkAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound(entity, id)
	}
	return nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}
