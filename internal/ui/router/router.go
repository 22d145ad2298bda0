// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/pdmwatch/internal/ui/features/common"
	dashboardFeature "github.com/leapstack-labs/pdmwatch/internal/ui/features/dashboard"
	machinesFeature "github.com/leapstack-labs/pdmwatch/internal/ui/features/machines"
	maintenanceFeature "github.com/leapstack-labs/pdmwatch/internal/ui/features/maintenance"
	"github.com/leapstack-labs/pdmwatch/internal/ui/notifier"
	"github.com/leapstack-labs/pdmwatch/internal/ui/resources"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// Options carries what the feature routes need besides the store.
type Options struct {
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	Logger       *slog.Logger
	Schedule     common.ScheduleOptions
	IsDev        bool
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, store core.Store, opts Options) error {
	if opts.IsDev {
		setupReload(router)
	}

	router.Handle(resources.StaticPrefix+"*", resources.Handler())

	router.Get("/api", common.HealthHandler)
	router.Get("/healthz", common.HealthHandler)

	if err := dashboardFeature.SetupRoutes(router, store, opts.SessionStore, opts.Notifier, opts.Logger, opts.Schedule, opts.IsDev); err != nil {
		return err
	}

	if err := machinesFeature.SetupRoutes(router, store, opts.Notifier, opts.Logger); err != nil {
		return err
	}

	if err := maintenanceFeature.SetupRoutes(router, store, opts.Notifier, opts.Logger, opts.Schedule); err != nil {
		return err
	}

	return nil
}

// setupReload wires the dev hot reload: /reload is held open by the page and
// /hotreload, hit by the file watcher tooling, makes it reload.
func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
