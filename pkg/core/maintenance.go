package core

import (
	"fmt"
	"strings"
	"time"
)

// MaintenanceRecord is a single maintenance intervention on a machine.
type MaintenanceRecord struct {
	ID            int64     `json:"id"`
	MachineID     int64     `json:"machine_id"`
	Date          Date      `json:"date"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	Technician    *string   `json:"technician"`
	PartsReplaced *string   `json:"parts_replaced"`
	Cost          *float64  `json:"cost"`
	DurationHours *float64  `json:"duration_hours"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MaintenanceCreate is the input for logging maintenance.
type MaintenanceCreate struct {
	MachineID     int64    `json:"machine_id"`
	Date          *Date    `json:"date,omitempty"`
	Type          string   `json:"type"`
	Description   string   `json:"description"`
	Technician    *string  `json:"technician,omitempty"`
	PartsReplaced *string  `json:"parts_replaced,omitempty"`
	Cost          *float64 `json:"cost,omitempty"`
	DurationHours *float64 `json:"duration_hours,omitempty"`
}

// Normalize validates the input and defaults the date to today.
func (in *MaintenanceCreate) Normalize(now time.Time) error {
	in.Type = strings.TrimSpace(in.Type)
	in.Description = strings.TrimSpace(in.Description)

	var missing []string
	if in.MachineID <= 0 {
		missing = append(missing, "machine_id")
	}
	if in.Type == "" {
		missing = append(missing, "type")
	}
	if in.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if err := checkNonNegative(in.Cost, in.DurationHours); err != nil {
		return err
	}

	if in.Date == nil {
		today := NewDate(now)
		in.Date = &today
	}
	return nil
}

// MaintenanceUpdate is a partial update. Nil or unset fields are left
// untouched. The optional detail fields are cleared by an explicit null.
type MaintenanceUpdate struct {
	Date          *Date             `json:"date,omitempty"`
	Type          *string           `json:"type,omitempty"`
	Description   *string           `json:"description,omitempty"`
	Technician    Optional[string]  `json:"technician,omitzero"`
	PartsReplaced Optional[string]  `json:"parts_replaced,omitzero"`
	Cost          Optional[float64] `json:"cost,omitzero"`
	DurationHours Optional[float64] `json:"duration_hours,omitzero"`
}

// Validate checks the fields that are set.
func (u *MaintenanceUpdate) Validate() error {
	if u.Type != nil && strings.TrimSpace(*u.Type) == "" {
		return fmt.Errorf("%w: type must not be empty", ErrInvalidInput)
	}
	if u.Description != nil && strings.TrimSpace(*u.Description) == "" {
		return fmt.Errorf("%w: description must not be empty", ErrInvalidInput)
	}
	return checkNonNegative(u.Cost.Ptr(), u.DurationHours.Ptr())
}

func checkNonNegative(cost, duration *float64) error {
	if cost != nil && *cost < 0 {
		return fmt.Errorf("%w: cost must not be negative", ErrInvalidInput)
	}
	if duration != nil && *duration < 0 {
		return fmt.Errorf("%w: duration_hours must not be negative", ErrInvalidInput)
	}
	return nil
}
