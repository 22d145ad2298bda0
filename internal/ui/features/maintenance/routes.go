// Package maintenance provides the maintenance record JSON API.
//
// The {id} segment names a machine on the read routes (list, latest,
// schedule) and a record on PUT and DELETE.
package maintenance

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/pdmwatch/internal/ui/features/common"
	"github.com/leapstack-labs/pdmwatch/internal/ui/notifier"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// SetupRoutes mounts the API under /api/maintenance.
func SetupRoutes(router chi.Router, store core.Store, notify *notifier.Notifier, logger *slog.Logger, schedule common.ScheduleOptions) error {
	handlers := NewHandlers(store, notify, logger, schedule)

	router.Route("/api/maintenance", func(r chi.Router) {
		r.Get("/", handlers.List)
		r.Post("/", handlers.Create)
		r.Get("/{id}", handlers.ListForMachine)
		r.Put("/{id}", handlers.Update)
		r.Delete("/{id}", handlers.Delete)
		r.Get("/{id}/latest", handlers.Latest)
		r.Get("/{id}/schedule", handlers.Schedule)
	})

	return nil
}
