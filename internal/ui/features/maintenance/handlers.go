package maintenance

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/leapstack-labs/pdmwatch/internal/ui/features/common"
	"github.com/leapstack-labs/pdmwatch/internal/ui/notifier"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// NoRecordsDetail is returned when a machine has no maintenance history.
const NoRecordsDetail = "No maintenance records found for this machine"

// Handlers provides the maintenance record API.
type Handlers struct {
	store    core.Store
	notifier *notifier.Notifier
	logger   *slog.Logger
	schedule common.ScheduleOptions
	now      func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store core.Store, notify *notifier.Notifier, logger *slog.Logger, schedule common.ScheduleOptions) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		store:    store,
		notifier: notify,
		logger:   logger,
		schedule: schedule,
		now:      time.Now,
	}
}

// List handles GET /api/maintenance.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := common.Pagination(r)
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	records, err := h.store.ListMaintenance(r.Context(), skip, limit)
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, records)
}

// ListForMachine handles GET /api/maintenance/{id} where id is a machine.
func (h *Handlers) ListForMachine(w http.ResponseWriter, r *http.Request) {
	machineID, err := common.PathID(r, "id")
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}
	_, limit, err := common.Pagination(r)
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	ctx := r.Context()
	if _, err := h.store.GetMachine(ctx, machineID); err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	records, err := h.store.ListMachineMaintenance(ctx, machineID, limit)
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, records)
}

// Create handles POST /api/maintenance.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var in core.MaintenanceCreate
	if err := common.DecodeJSON(r, common.SchemaMaintenanceCreate, &in); err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	record, err := h.store.RecordMaintenance(r.Context(), in)
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	h.logger.Info("maintenance recorded", "id", record.ID, "machine_id", record.MachineID, "type", record.Type)
	h.notifier.Broadcast()
	common.JSON(w, http.StatusCreated, record)
}

// Latest handles GET /api/maintenance/{id}/latest.
func (h *Handlers) Latest(w http.ResponseWriter, r *http.Request) {
	machineID, err := common.PathID(r, "id")
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	ctx := r.Context()
	if _, err := h.store.GetMachine(ctx, machineID); err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	record, err := h.store.LatestMaintenance(ctx, machineID)
	if errors.Is(err, core.ErrNotFound) {
		common.Detail(w, http.StatusNotFound, NoRecordsDetail)
		return
	}
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, record)
}

// Update handles PUT /api/maintenance/{id} where id is a record.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	var in core.MaintenanceUpdate
	if err := common.DecodeJSON(r, common.SchemaMaintenanceUpdate, &in); err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	record, err := h.store.UpdateMaintenance(r.Context(), id, in)
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	h.notifier.Broadcast()
	common.JSON(w, http.StatusOK, record)
}

// Delete handles DELETE /api/maintenance/{id} where id is a record.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	if err := h.store.DeleteMaintenance(r.Context(), id); err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	h.notifier.Broadcast()
	common.NoContent(w)
}

// Schedule handles GET /api/maintenance/{id}/schedule.
func (h *Handlers) Schedule(w http.ResponseWriter, r *http.Request) {
	machineID, err := common.PathID(r, "id")
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}

	schedule, err := common.LoadSchedule(r.Context(), h.store, machineID, h.schedule, h.now())
	if err != nil {
		common.Error(w, r, h.logger, err)
		return
	}
	common.JSON(w, http.StatusOK, schedule)
}
