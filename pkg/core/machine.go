package core

import (
	"fmt"
	"strings"
	"time"
)

// MachineStatus is the operating state of a machine.
type MachineStatus string

// Machine statuses.
const (
	MachineStatusOperational MachineStatus = "operational"
	MachineStatusMaintenance MachineStatus = "maintenance"
	MachineStatusWarning     MachineStatus = "warning"
	MachineStatusCritical    MachineStatus = "critical"
)

// MachineStatuses lists every valid status in display order.
var MachineStatuses = []MachineStatus{
	MachineStatusOperational,
	MachineStatusMaintenance,
	MachineStatusWarning,
	MachineStatusCritical,
}

// String implements fmt.Stringer.
func (s MachineStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of MachineStatuses.
func (s MachineStatus) Valid() bool {
	for _, v := range MachineStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseMachineStatus normalizes and validates a status string.
func ParseMachineStatus(s string) (MachineStatus, error) {
	status := MachineStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", &StatusError{Value: s}
	}
	return status, nil
}

// StatusError describes a rejected status value. It matches ErrInvalidStatus.
type StatusError struct {
	Value string
}

func (e *StatusError) Error() string {
	names := make([]string, len(MachineStatuses))
	for i, s := range MachineStatuses {
		names[i] = string(s)
	}
	return fmt.Sprintf("Invalid status. Must be one of: %s", strings.Join(names, ", "))
}

// Is makes errors.Is(err, ErrInvalidStatus) succeed.
func (e *StatusError) Is(target error) bool {
	return target == ErrInvalidStatus
}

// Machine is a monitored piece of equipment.
type Machine struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Type             string        `json:"type"`
	Location         string        `json:"location"`
	InstallationDate time.Time     `json:"installation_date"`
	Status           MachineStatus `json:"status"`
	LastMaintenance  *time.Time    `json:"last_maintenance"`
}

// MachineCreate is the input for registering a machine.
type MachineCreate struct {
	Name             string        `json:"name"`
	Type             string        `json:"type"`
	Location         string        `json:"location"`
	InstallationDate *Timestamp    `json:"installation_date,omitempty"`
	Status           MachineStatus `json:"status,omitempty"`
}

// Normalize validates the input and fills defaults. now supplies the
// installation date when none was given.
func (in *MachineCreate) Normalize(now time.Time) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	in.Location = strings.TrimSpace(in.Location)

	var missing []string
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Type == "" {
		missing = append(missing, "type")
	}
	if in.Location == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	if in.Status == "" {
		in.Status = MachineStatusOperational
	} else {
		status, err := ParseMachineStatus(string(in.Status))
		if err != nil {
			return err
		}
		in.Status = status
	}

	if in.InstallationDate == nil {
		in.InstallationDate = &Timestamp{now.UTC()}
	}
	return nil
}

// MachineUpdate is a partial update. Nil fields are left untouched.
// LastMaintenance can also be cleared with an explicit null.
type MachineUpdate struct {
	Name            *string             `json:"name,omitempty"`
	Type            *string             `json:"type,omitempty"`
	Location        *string             `json:"location,omitempty"`
	Status          *MachineStatus      `json:"status,omitempty"`
	LastMaintenance Optional[Timestamp] `json:"last_maintenance,omitzero"`
}

// Empty reports whether the update changes nothing.
func (u *MachineUpdate) Empty() bool {
	return u.Name == nil && u.Type == nil && u.Location == nil && u.Status == nil && !u.LastMaintenance.Set
}

// Validate checks the fields that are set.
func (u *MachineUpdate) Validate() error {
	if u.Status != nil {
		status, err := ParseMachineStatus(string(*u.Status))
		if err != nil {
			return err
		}
		*u.Status = status
	}
	for name, v := range map[string]*string{"name": u.Name, "type": u.Type, "location": u.Location} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidInput, name)
		}
	}
	return nil
}
