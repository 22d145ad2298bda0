package core

import "errors"

// Sentinel errors. Wrap them with context and test with errors.Is.
var (
	// ErrNotFound is returned when a machine or maintenance record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStatus is returned for a machine status outside MachineStatuses.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidInput is returned when a create or update payload is incomplete.
	ErrInvalidInput = errors.New("invalid input")
)
