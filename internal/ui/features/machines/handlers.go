package machines

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/leapstack-labs/pdmwatch/internal/ui/features/common"
	"github.com/leapstack-labs/pdmwatch/internal/ui/notifier"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// StatusResponse is the body of GET /api/machines/{id}/status.
type StatusResponse struct {
	MachineID   int64              `json:"machine_id"`
	Status      core.MachineStatus `json:"status"`
	LastUpdated *string            `json:"last_updated"`
}

// Handlers provides the machine registry API.
type Handlers struct {
	store    core.Store
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store core.Store, notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{store: store, notifier: notify, logger: logger}
}

// List handles GET /api/machines.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := common.Pagination(r)
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	machines, err := h.store.ListMachines(r.Context(), skip, limit)
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, machines)
}

// Create handles POST /api/machines.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var in core.MachineCreate
	if err := common.DecodeJSON(r, common.SchemaMachineCreate, &in); err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	machine, err := h.store.CreateMachine(r.Context(), in)
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	h.notifier.Broadcast()
	common.JSON(w, http.StatusCreated, machine)
}

// Get handles GET /api/machines/{id}.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	machine, err := h.store.GetMachine(r.Context(), id)
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, machine)
}

// Update handles PUT /api/machines/{id}.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	var in core.MachineUpdate
	if err := common.DecodeJSON(r, common.SchemaMachineUpdate, &in); err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	machine, err := h.store.UpdateMachine(r.Context(), id, in)
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	h.notifier.Broadcast()
	common.JSON(w, http.StatusOK, machine)
}

// Delete handles DELETE /api/machines/{id}.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	if err := h.store.DeleteMachine(r.Context(), id); err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	h.notifier.Broadcast()
	common.NoContent(w)
}

// GetStatus handles GET /api/machines/{id}/status.
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	machine, err := h.store.GetMachine(r.Context(), id)
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, statusResponse(machine))
}

// SetStatus handles PUT /api/machines/{id}/status. The status comes from the
// status query parameter or, when absent, from a JSON body.
func (h *Handlers) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	raw := r.URL.Query().Get("status")
	if raw == "" {
		var body struct {
			Status string `json:"status"`
		}
		if err := common.DecodeJSON(r, common.SchemaMachineStatus, &body); err != nil {
			common.Error(w, r, h.logger, err)
			return
		}
		raw = body.Status
	}

	status, err := core.ParseMachineStatus(raw)
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	machine, err := h.store.UpdateMachineStatus(r.Context(), id, status)
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	h.logger.Info("machine status changed", "id", id, "status", string(status))
	h.notifier.Broadcast()
	common.JSON(w, http.StatusOK, statusResponse(machine))
}

func statusResponse(m *core.Machine) StatusResponse {
	resp := StatusResponse{MachineID: m.ID, Status: m.Status}
	if m.LastMaintenance != nil {
		s := m.LastMaintenance.UTC().Format(time.RFC3339)
		resp.LastUpdated = &s
	}
	return resp
}
