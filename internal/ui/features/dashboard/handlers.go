package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/pdmwatch/internal/ui/components"
	"github.com/leapstack-labs/pdmwatch/internal/ui/features/common"
	"github.com/leapstack-labs/pdmwatch/internal/ui/notifier"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// SessionName is the cookie session that carries flash messages.
const SessionName = "pdmwatch"

// Handlers provides HTTP handlers for the dashboard feature.
type Handlers struct {
	store        core.Store
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	logger       *slog.Logger
	schedule     common.ScheduleOptions
	isDev        bool
	now          func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store core.Store, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger, schedule common.ScheduleOptions, isDev bool) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		store:        store,
		sessionStore: sessionStore,
		notifier:     notify,
		logger:       logger,
		schedule:     schedule,
		isDev:        isDev,
		now:          time.Now,
	}
}

// DashboardPage renders the dashboard. A pending flash is shown once.
func (h *Handlers) DashboardPage(w http.ResponseWriter, r *http.Request) {
	view, err := h.buildDashboardView(r.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	view.Flash = h.popFlash(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := components.Page("Dashboard", h.isDev, components.Dashboard(view)).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render dashboard", "error", err)
	}
}

// DashboardUpdates is the long-lived SSE endpoint for the dashboard page.
// Nothing is sent up front; the page already holds the current state.
func (h *Handlers) DashboardUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	sub := h.notifier.Subscribe()
	defer sub.Close()

	logger := h.logger.With("client", uuid.NewString())
	logger.Debug("sse client connected", "clients", h.notifier.Len())
	defer logger.Debug("sse client disconnected")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.C:
			if !ok {
				return
			}
			if err := h.sendDashboardView(ctx, sse); err != nil {
				logger.Warn("failed to patch dashboard", "error", err)
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// sendDashboardView patches the status summary and the machine table.
func (h *Handlers) sendDashboardView(ctx context.Context, sse *datastar.ServerSentEventGenerator) error {
	view, err := h.buildDashboardView(ctx)
	if err != nil {
		return err
	}
	if err := sse.PatchElementTempl(components.StatusSummary(view.Counts)); err != nil {
		return err
	}
	return sse.PatchElementTempl(components.MachineTable(view.Machines))
}

func (h *Handlers) buildDashboardView(ctx context.Context) (components.DashboardView, error) {
	machines, err := h.store.ListMachines(ctx, 0, core.MaxListLimit)
	if err != nil {
		return components.DashboardView{}, err
	}
	counts, err := h.store.CountMachinesByStatus(ctx)
	if err != nil {
		return components.DashboardView{}, err
	}
	return components.DashboardView{Machines: machines, Counts: counts}, nil
}

// MachinePage renders the detail page of one machine.
func (h *Handlers) MachinePage(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	machine, err := h.store.GetMachine(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		http.Error(w, "machine not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to get machine", "id", id, "error", err)
		http.Error(w, "failed to load machine", http.StatusInternalServerError)
		return
	}

	schedule, err := common.LoadSchedule(ctx, h.store, id, h.schedule, h.now())
	if err != nil {
		h.logger.Error("failed to load schedule", "id", id, "error", err)
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := components.Page(machine.Name, h.isDev, components.MachineDetail(machine, schedule)).Render(ctx, w); err != nil {
		h.logger.Error("failed to render machine page", "error", err)
	}
}

// UpdateStatus handles the status form of a dashboard row and redirects back.
func (h *Handlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flash := h.applyStatus(r, id)
	if flash.Kind == components.FlashSuccess {
		h.notifier.Broadcast()
	}
	h.addFlash(w, r, flash)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) applyStatus(r *http.Request, id int64) components.Flash {
	status, err := core.ParseMachineStatus(r.FormValue("status"))
	if err != nil {
		return components.Flash{Kind: components.FlashError, Message: err.Error()}
	}

	machine, err := h.store.UpdateMachineStatus(r.Context(), id, status)
	if errors.Is(err, core.ErrNotFound) {
		return components.Flash{Kind: components.FlashError, Message: fmt.Sprintf("Machine %d not found", id)}
	}
	if err != nil {
		h.logger.Error("failed to update status", "id", id, "error", err)
		return components.Flash{Kind: components.FlashError, Message: "Failed to update status"}
	}

	return components.Flash{
		Kind:    components.FlashSuccess,
		Message: fmt.Sprintf("%s is now %s", machine.Name, components.StatusLabel(machine.Status)),
	}
}

// LiveChartFragment serves the live chart placeholder on its own.
func (h *Handlers) LiveChartFragment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := components.LiveChart().Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render live chart", "error", err)
	}
}

func (h *Handlers) addFlash(w http.ResponseWriter, r *http.Request, flash components.Flash) {
	session, err := h.sessionStore.Get(r, SessionName)
	if err != nil {
		// A stale cookie still yields a usable new session.
		h.logger.Debug("session decode failed", "error", err)
	}
	session.AddFlash(flash.Message, flash.Kind)
	if err := session.Save(r, w); err != nil {
		h.logger.Error("failed to save session", "error", err)
	}
}

func (h *Handlers) popFlash(w http.ResponseWriter, r *http.Request) *components.Flash {
	session, err := h.sessionStore.Get(r, SessionName)
	if err != nil {
		return nil
	}

	var flash *components.Flash
	for _, kind := range []string{components.FlashError, components.FlashSuccess} {
		for _, v := range session.Flashes(kind) {
			if msg, ok := v.(string); ok && flash == nil {
				flash = &components.Flash{Kind: kind, Message: msg}
			}
		}
	}
	if flash == nil {
		return nil
	}

	if err := session.Save(r, w); err != nil {
		h.logger.Error("failed to save session", "error", err)
	}
	return flash
}
