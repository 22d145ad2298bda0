package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

func createMachine(t *testing.T, store *Store, name string) *core.Machine {
	t.Helper()
	m, err := store.CreateMachine(context.Background(), core.MachineCreate{Name: name, Type: "pump", Location: "Hall A"})
	require.NoError(t, err)
	return m
}

func TestStore_MachineLifecycle(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T, store *Store, m *core.Machine)
	}{
		{
			name: "create applies defaults",
			run: func(t *testing.T, _ *Store, m *core.Machine) {
				assert.NotZero(t, m.ID)
				assert.Equal(t, "Pump 1", m.Name)
				assert.Equal(t, core.MachineStatusOperational, m.Status)
				assert.True(t, m.InstallationDate.Equal(fixedNow), "got %s", m.InstallationDate)
				assert.Nil(t, m.LastMaintenance)
			},
		},
		{
			name: "get by id",
			run: func(t *testing.T, store *Store, m *core.Machine) {
				got, err := store.GetMachine(context.Background(), m.ID)
				require.NoError(t, err)
				assert.Equal(t, m, got)
			},
		},
		{
			name: "partial update keeps other fields",
			run: func(t *testing.T, store *Store, m *core.Machine) {
				loc := "Hall B"
				got, err := store.UpdateMachine(context.Background(), m.ID, core.MachineUpdate{Location: &loc})
				require.NoError(t, err)
				assert.Equal(t, "Hall B", got.Location)
				assert.Equal(t, "Pump 1", got.Name)
			},
		},
		{
			name: "empty update returns current machine",
			run: func(t *testing.T, store *Store, m *core.Machine) {
				got, err := store.UpdateMachine(context.Background(), m.ID, core.MachineUpdate{})
				require.NoError(t, err)
				assert.Equal(t, m.Name, got.Name)
			},
		},
		{
			name: "update last maintenance",
			run: func(t *testing.T, store *Store, m *core.Machine) {
				when := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
				got, err := store.UpdateMachine(context.Background(), m.ID, core.MachineUpdate{
					LastMaintenance: core.Some(core.Timestamp{Time: when}),
				})
				require.NoError(t, err)
				require.NotNil(t, got.LastMaintenance)
				assert.True(t, got.LastMaintenance.Equal(when))
			},
		},
		{
			name: "clear last maintenance",
			run: func(t *testing.T, store *Store, m *core.Machine) {
				when := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
				_, err := store.UpdateMachine(context.Background(), m.ID, core.MachineUpdate{
					LastMaintenance: core.Some(core.Timestamp{Time: when}),
				})
				require.NoError(t, err)

				got, err := store.UpdateMachine(context.Background(), m.ID, core.MachineUpdate{
					LastMaintenance: core.Null[core.Timestamp](),
				})
				require.NoError(t, err)
				assert.Nil(t, got.LastMaintenance)
				assert.Equal(t, m.Name, got.Name)
			},
		},
		{
			name: "status update",
			run: func(t *testing.T, store *Store, m *core.Machine) {
				got, err := store.UpdateMachineStatus(context.Background(), m.ID, core.MachineStatusCritical)
				require.NoError(t, err)
				assert.Equal(t, core.MachineStatusCritical, got.Status)
			},
		},
		{
			name: "invalid status is rejected",
			run: func(t *testing.T, store *Store, m *core.Machine) {
				_, err := store.UpdateMachineStatus(context.Background(), m.ID, "melting")
				assert.ErrorIs(t, err, core.ErrInvalidStatus)
			},
		},
		{
			name: "delete",
			run: func(t *testing.T, store *Store, m *core.Machine) {
				require.NoError(t, store.DeleteMachine(context.Background(), m.ID))
				_, err := store.GetMachine(context.Background(), m.ID)
				assert.ErrorIs(t, err, core.ErrNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)
			m := createMachine(t, store, "Pump 1")
			tt.run(t, store, m)
		})
	}
}

func TestStore_MachineNotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.GetMachine(ctx, 404)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Contains(t, err.Error(), "machine 404")

	name := "ghost"
	_, err = store.UpdateMachine(ctx, 404, core.MachineUpdate{Name: &name})
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.ErrorIs(t, store.DeleteMachine(ctx, 404), core.ErrNotFound)
}

func TestStore_CreateMachineValidation(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.CreateMachine(context.Background(), core.MachineCreate{Name: "no type"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestStore_ListMachinesPagination(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C", "D"} {
		createMachine(t, store, name)
	}

	all, err := store.ListMachines(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "A", all[0].Name)

	page, err := store.ListMachines(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "B", page[0].Name)
	assert.Equal(t, "C", page[1].Name)

	empty, err := store.ListMachines(ctx, 10, 5)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestStore_CountMachinesByStatus(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a := createMachine(t, store, "A")
	createMachine(t, store, "B")
	_, err := store.UpdateMachineStatus(ctx, a.ID, core.MachineStatusWarning)
	require.NoError(t, err)

	counts, err := store.CountMachinesByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[core.MachineStatusOperational])
	assert.Equal(t, 1, counts[core.MachineStatusWarning])
	assert.Equal(t, 0, counts[core.MachineStatusCritical])
	assert.Len(t, counts, len(core.MachineStatuses))
}
