package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

const machineColumns = `id, name, type, location, installation_date, status, last_maintenance`

func scanMachine(row rowScanner) (*core.Machine, error) {
	m := &core.Machine{}
	var status string
	var lastMaintenance sql.NullTime

	if err := row.Scan(&m.ID, &m.Name, &m.Type, &m.Location, &m.InstallationDate, &status, &lastMaintenance); err != nil {
		return nil, err
	}

	m.Status = core.MachineStatus(status)
	m.InstallationDate = m.InstallationDate.UTC()
	if lastMaintenance.Valid {
		t := lastMaintenance.Time.UTC()
		m.LastMaintenance = &t
	}
	return m, nil
}

// ListMachines returns machines ordered by id.
func (s *Store) ListMachines(ctx context.Context, skip, limit int) ([]*core.Machine, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if skip < 0 {
		skip = 0
	}

	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+machineColumns+` FROM machines ORDER BY id LIMIT ? OFFSET ?`),
		core.ClampLimit(limit), skip,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	machines := make([]*core.Machine, 0)
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan machine: %w", err)
		}
		machines = append(machines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate machines: %w", err)
	}

	return machines, nil
}

// GetMachine retrieves a machine by ID.
func (s *Store) GetMachine(ctx context.Context, id int64) (*core.Machine, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	m, err := scanMachine(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+machineColumns+` FROM machines WHERE id = ?`), id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("machine", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get machine: %w", err)
	}
	return m, nil
}

// CreateMachine registers a new machine.
func (s *Store) CreateMachine(ctx context.Context, in core.MachineCreate) (*core.Machine, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if err := in.Normalize(s.timestamp()); err != nil {
		return nil, err
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		s.rebind(`INSERT INTO machines (name, type, location, installation_date, status) VALUES (?, ?, ?, ?, ?) RETURNING id`),
		in.Name, in.Type, in.Location, in.InstallationDate.UTC(), string(in.Status),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create machine: %w", err)
	}

	s.logger.Debug("machine created", "id", id, "name", in.Name)

	return s.GetMachine(ctx, id)
}

// UpdateMachine applies a partial update and returns the stored machine.
func (s *Store) UpdateMachine(ctx context.Context, id int64, in core.MachineUpdate) (*core.Machine, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	set := &updateSet{}
	if in.Name != nil {
		set.add("name", *in.Name)
	}
	if in.Type != nil {
		set.add("type", *in.Type)
	}
	if in.Location != nil {
		set.add("location", *in.Location)
	}
	if in.Status != nil {
		set.add("status", string(*in.Status))
	}
	if in.LastMaintenance.Set {
		var last sql.NullTime
		if in.LastMaintenance.Valid {
			last = sql.NullTime{Time: in.LastMaintenance.Value.UTC(), Valid: true}
		}
		set.add("last_maintenance", last)
	}

	if set.empty() {
		return s.GetMachine(ctx, id)
	}

	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE machines SET `+set.clause()+` WHERE id = ?`),
		append(set.args, id)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update machine: %w", err)
	}
	if err := checkAffected(res, "machine", id); err != nil {
		return nil, err
	}

	return s.GetMachine(ctx, id)
}

// UpdateMachineStatus sets only the status of a machine.
func (s *Store) UpdateMachineStatus(ctx context.Context, id int64, status core.MachineStatus) (*core.Machine, error) {
	return s.UpdateMachine(ctx, id, core.MachineUpdate{Status: &status})
}

// DeleteMachine removes a machine and its maintenance history.
func (s *Store) DeleteMachine(ctx context.Context, id int64) error {
	if s.db == nil {
		return errNotOpened
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM maintenance WHERE machine_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete maintenance records: %w", err)
	}

	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM machines WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete machine: %w", err)
	}
	if err := checkAffected(res, "machine", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit machine deletion: %w", err)
	}

	s.logger.Debug("machine deleted", "id", id)
	return nil
}

// CountMachinesByStatus returns the number of machines per status.
// Every known status is present in the result, possibly with zero.
func (s *Store) CountMachinesByStatus(ctx context.Context) (map[core.MachineStatus]int, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM machines GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count machines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[core.MachineStatus]int, len(core.MachineStatuses))
	for _, status := range core.MachineStatuses {
		counts[status] = 0
	}

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan machine count: %w", err)
		}
		counts[core.MachineStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate machine counts: %w", err)
	}

	return counts, nil
}

// touchMaintenance records that maintenance happened at t and returns a
// machine in maintenance status to service.
func (s *Store) touchMaintenance(ctx context.Context, tx *sql.Tx, machineID int64, t time.Time) error {
	_, err := tx.ExecContext(ctx,
		s.rebind(`UPDATE machines SET last_maintenance = ?, status = CASE WHEN status = ? THEN ? ELSE status END WHERE id = ?`),
		t, string(core.MachineStatusMaintenance), string(core.MachineStatusOperational), machineID,
	)
	if err != nil {
		return fmt.Errorf("failed to update machine maintenance: %w", err)
	}
	return nil
}
