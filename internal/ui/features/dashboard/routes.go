// Package dashboard provides the server-rendered pages of the UI.
package dashboard

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/pdmwatch/internal/ui/features/common"
	"github.com/leapstack-labs/pdmwatch/internal/ui/notifier"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// SetupRoutes configures routes for the dashboard feature.
func SetupRoutes(
	router chi.Router,
	store core.Store,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
	schedule common.ScheduleOptions,
	isDev bool,
) error {
	handlers := NewHandlers(store, sessionStore, notify, logger, schedule, isDev)

	router.Get("/", handlers.DashboardPage)
	router.Get("/updates", handlers.DashboardUpdates)
	router.Get("/machines/{id}", handlers.MachinePage)
	router.Post("/machines/{id}/status", handlers.UpdateStatus)
	router.Get("/fragments/live-chart", handlers.LiveChartFragment)

	return nil
}
