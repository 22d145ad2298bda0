// Package core defines the shared language of pdmwatch.
//
// This package contains:
//   - Domain entities (Machine, MaintenanceRecord, Schedule)
//   - Value types (MachineStatus, Date)
//   - Service interfaces (Store)
//   - Sentinel errors shared by the store and HTTP layers
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
