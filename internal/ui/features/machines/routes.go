// Package machines provides the machine registry JSON API.
package machines

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/pdmwatch/internal/ui/notifier"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// SetupRoutes mounts the API under /api/machines.
func SetupRoutes(router chi.Router, store core.Store, notify *notifier.Notifier, logger *slog.Logger) error {
	handlers := NewHandlers(store, notify, logger)

	router.Route("/api/machines", func(r chi.Router) {
		r.Get("/", handlers.List)
		r.Post("/", handlers.Create)
		r.Get("/{id}", handlers.Get)
		r.Put("/{id}", handlers.Update)
		r.Delete("/{id}", handlers.Delete)
		r.Get("/{id}/status", handlers.GetStatus)
		r.Put("/{id}/status", handlers.SetStatus)
	})

	return nil
}
