package core

import "context"

// Pagination bounds for list operations.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ClampLimit maps a requested page size into [1, MaxListLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// Store defines the persistence operations for machines and maintenance.
type Store interface {
	Close() error

	// Machine operations
	ListMachines(ctx context.Context, skip, limit int) ([]*Machine, error)
	GetMachine(ctx context.Context, id int64) (*Machine, error)
	CreateMachine(ctx context.Context, in MachineCreate) (*Machine, error)
	UpdateMachine(ctx context.Context, id int64, in MachineUpdate) (*Machine, error)
	UpdateMachineStatus(ctx context.Context, id int64, status MachineStatus) (*Machine, error)
	DeleteMachine(ctx context.Context, id int64) error
	CountMachinesByStatus(ctx context.Context) (map[MachineStatus]int, error)

	// Maintenance operations
	ListMaintenance(ctx context.Context, skip, limit int) ([]*MaintenanceRecord, error)
	ListMachineMaintenance(ctx context.Context, machineID int64, limit int) ([]*MaintenanceRecord, error)
	GetMaintenance(ctx context.Context, id int64) (*MaintenanceRecord, error)
	LatestMaintenance(ctx context.Context, machineID int64) (*MaintenanceRecord, error)
	RecordMaintenance(ctx context.Context, in MaintenanceCreate) (*MaintenanceRecord, error)
	UpdateMaintenance(ctx context.Context, id int64, in MaintenanceUpdate) (*MaintenanceRecord, error)
	DeleteMaintenance(ctx context.Context, id int64) error
}
