package common

import (
	"context"
	"errors"
	"time"

	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// ScheduleOptions configures schedule building.
type ScheduleOptions struct {
	IntervalDays int
	HistoryLimit int
}

func (o ScheduleOptions) withDefaults() ScheduleOptions {
	if o.IntervalDays <= 0 {
		o.IntervalDays = core.DefaultMaintenanceIntervalDays
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = core.DefaultScheduleHistoryLimit
	}
	return o
}

// LoadSchedule reads a machine's maintenance history and builds its schedule
// relative to now. It returns core.ErrNotFound for an unknown machine.
func LoadSchedule(ctx context.Context, store core.Store, machineID int64, opts ScheduleOptions, now time.Time) (*core.Schedule, error) {
	opts = opts.withDefaults()

	if _, err := store.GetMachine(ctx, machineID); err != nil {
		return nil, err
	}

	latest, err := store.LatestMaintenance(ctx, machineID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	history, err := store.ListMachineMaintenance(ctx, machineID, opts.HistoryLimit)
	if err != nil {
		return nil, err
	}

	return core.BuildSchedule(machineID, latest, history, opts.IntervalDays, core.NewDate(now)), nil
}
