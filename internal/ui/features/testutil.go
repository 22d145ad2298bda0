// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pdmwatch/internal/config"
	"github.com/leapstack-labs/pdmwatch/internal/state"
	"github.com/leapstack-labs/pdmwatch/internal/testutil"
	"github.com/leapstack-labs/pdmwatch/internal/ui/notifier"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// TestNow is the fixed clock of fixture stores.
var TestNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

// TestMachine is a helper to seed machines with minimal boilerplate.
type TestMachine struct {
	Name     string
	Type     string
	Location string
	Status   core.MachineStatus
}

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Store        *state.Store
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Logger       *slog.Logger
	Machines     []*core.Machine
}

// SetupTestFixture creates an in-memory store seeded with machines, plus a
// notifier and a session store.
func SetupTestFixture(t *testing.T, machines ...TestMachine) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	ctx := context.Background()

	store := state.New(logger).WithClock(func() time.Time { return TestNow })
	require.NoError(t, store.Open(ctx, config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}))
	t.Cleanup(func() {
		_ = store.Close()
	})
	require.NoError(t, store.Migrate(ctx))

	f := &TestFixture{
		Store:        store,
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
		Logger:       logger,
	}

	for _, m := range machines {
		created, err := store.CreateMachine(ctx, core.MachineCreate{
			Name:     m.Name,
			Type:     m.Type,
			Location: m.Location,
			Status:   m.Status,
		})
		require.NoError(t, err)
		f.Machines = append(f.Machines, created)
	}

	return f
}

// RecordMaintenance logs a maintenance record on a fixture machine.
func (f *TestFixture) RecordMaintenance(t *testing.T, machineID int64, date, kind, description string) *core.MaintenanceRecord {
	t.Helper()

	d, err := core.ParseDate(date)
	require.NoError(t, err)

	rec, err := f.Store.RecordMaintenance(context.Background(), core.MaintenanceCreate{
		MachineID:   machineID,
		Date:        &d,
		Type:        kind,
		Description: description,
	})
	require.NoError(t, err)
	return rec
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RequestWithTimeout wraps a request with a context that ends after timeout.
// The cancel func is registered on t.
func RequestWithTimeout(t *testing.T, r *http.Request, timeout time.Duration) *http.Request {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	t.Cleanup(cancel)
	return r.WithContext(ctx)
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
