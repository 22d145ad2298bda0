package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

const maintenanceColumns = `id, machine_id, date, type, description, technician, parts_replaced, cost, duration_hours, created_at, updated_at`

func scanMaintenance(row rowScanner) (*core.MaintenanceRecord, error) {
	r := &core.MaintenanceRecord{}
	var technician, parts sql.NullString
	var cost, duration sql.NullFloat64

	if err := row.Scan(&r.ID, &r.MachineID, &r.Date, &r.Type, &r.Description,
		&technician, &parts, &cost, &duration, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}

	r.Technician = stringPtr(technician)
	r.PartsReplaced = stringPtr(parts)
	r.Cost = floatPtr(cost)
	r.DurationHours = floatPtr(duration)
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}

func (s *Store) queryMaintenance(ctx context.Context, query string, args ...any) ([]*core.MaintenanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*core.MaintenanceRecord, 0)
	for rows.Next() {
		r, err := scanMaintenance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maintenance record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate maintenance records: %w", err)
	}
	return records, nil
}

// ListMaintenance returns all maintenance records, newest date first.
func (s *Store) ListMaintenance(ctx context.Context, skip, limit int) ([]*core.MaintenanceRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if skip < 0 {
		skip = 0
	}
	return s.queryMaintenance(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`,
		core.ClampLimit(limit), skip,
	)
}

// ListMachineMaintenance returns the records of one machine, newest date first.
func (s *Store) ListMachineMaintenance(ctx context.Context, machineID int64, limit int) ([]*core.MaintenanceRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	return s.queryMaintenance(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance WHERE machine_id = ? ORDER BY date DESC, id DESC LIMIT ?`,
		machineID, core.ClampLimit(limit),
	)
}

// GetMaintenance retrieves a maintenance record by ID.
func (s *Store) GetMaintenance(ctx context.Context, id int64) (*core.MaintenanceRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	r, err := scanMaintenance(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+maintenanceColumns+` FROM maintenance WHERE id = ?`), id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("maintenance record", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get maintenance record: %w", err)
	}
	return r, nil
}

// LatestMaintenance returns the most recent record of a machine.
// It returns core.ErrNotFound when the machine has no history.
func (s *Store) LatestMaintenance(ctx context.Context, machineID int64) (*core.MaintenanceRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	r, err := scanMaintenance(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+maintenanceColumns+` FROM maintenance WHERE machine_id = ? ORDER BY date DESC, id DESC LIMIT 1`),
		machineID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("maintenance for machine %d: %w", machineID, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest maintenance: %w", err)
	}
	return r, nil
}

// RecordMaintenance inserts a record and, in the same transaction, stamps the
// machine's last maintenance time and returns it to operational if it was
// in maintenance.
func (s *Store) RecordMaintenance(ctx context.Context, in core.MaintenanceCreate) (*core.MaintenanceRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	now := s.timestamp()
	if err := in.Normalize(now); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM machines WHERE id = ?`), in.MachineID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("machine", in.MachineID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check machine: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		s.rebind(`INSERT INTO maintenance (machine_id, date, type, description, technician, parts_replaced, cost, duration_hours, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		in.MachineID, in.Date.Time, in.Type, in.Description,
		nullString(in.Technician), nullString(in.PartsReplaced), nullFloat(in.Cost), nullFloat(in.DurationHours),
		now, now,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create maintenance record: %w", err)
	}

	if err := s.touchMaintenance(ctx, tx, in.MachineID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit maintenance record: %w", err)
	}

	s.logger.Debug("maintenance recorded", "id", id, "machine_id", in.MachineID, "type", in.Type)

	return s.GetMaintenance(ctx, id)
}

// UpdateMaintenance applies a partial update. updated_at always moves forward.
func (s *Store) UpdateMaintenance(ctx context.Context, id int64, in core.MaintenanceUpdate) (*core.MaintenanceRecord, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	set := &updateSet{}
	if in.Date != nil {
		set.add("date", in.Date.Time)
	}
	if in.Type != nil {
		set.add("type", *in.Type)
	}
	if in.Description != nil {
		set.add("description", *in.Description)
	}
	if in.Technician.Set {
		set.add("technician", nullString(in.Technician.Ptr()))
	}
	if in.PartsReplaced.Set {
		set.add("parts_replaced", nullString(in.PartsReplaced.Ptr()))
	}
	if in.Cost.Set {
		set.add("cost", nullFloat(in.Cost.Ptr()))
	}
	if in.DurationHours.Set {
		set.add("duration_hours", nullFloat(in.DurationHours.Ptr()))
	}
	set.add("updated_at", s.timestamp())

	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE maintenance SET `+set.clause()+` WHERE id = ?`),
		append(set.args, id)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update maintenance record: %w", err)
	}
	if err := checkAffected(res, "maintenance record", id); err != nil {
		return nil, err
	}

	return s.GetMaintenance(ctx, id)
}

// DeleteMaintenance removes a maintenance record.
func (s *Store) DeleteMaintenance(ctx context.Context, id int64) error {
	if s.db == nil {
		return errNotOpened
	}

	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM maintenance WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete maintenance record: %w", err)
	}
	return checkAffected(res, "maintenance record", id)
}
