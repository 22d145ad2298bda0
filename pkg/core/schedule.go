package core

// Default schedule parameters.
const (
	DefaultMaintenanceIntervalDays = 90
	DefaultScheduleHistoryLimit    = 5
)

// Schedule recommendations.
const (
	RecommendRegular = "Regular maintenance recommended"
	RecommendInitial = "Initial maintenance recommended"
)

// Schedule summarizes past maintenance and when the next one is due.
type Schedule struct {
	MachineID           int64          `json:"machine_id"`
	LastMaintenance     *Date          `json:"last_maintenance"`
	NextScheduled       *Date          `json:"next_scheduled"`
	DaysUntilNext       *int           `json:"days_until_next"`
	MaintenanceHistory  []HistoryEntry `json:"maintenance_history"`
	MaintenanceInterval int            `json:"maintenance_interval"`
	Recommendation      string         `json:"recommendation"`
}

// HistoryEntry is one condensed maintenance record in a Schedule.
type HistoryEntry struct {
	Date        Date   `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// BuildSchedule derives a maintenance schedule. latest may be nil; history is
// expected newest first and is used as given.
func BuildSchedule(machineID int64, latest *MaintenanceRecord, history []*MaintenanceRecord, intervalDays int, today Date) *Schedule {
	if intervalDays <= 0 {
		intervalDays = DefaultMaintenanceIntervalDays
	}

	s := &Schedule{
		MachineID:           machineID,
		MaintenanceHistory:  make([]HistoryEntry, 0, len(history)),
		MaintenanceInterval: intervalDays,
		Recommendation:      RecommendInitial,
	}

	if latest != nil {
		last := latest.Date
		next := last.AddDays(intervalDays)
		days := today.DaysUntil(next)
		s.LastMaintenance = &last
		s.NextScheduled = &next
		s.DaysUntilNext = &days
		s.Recommendation = RecommendRegular
	}

	for _, rec := range history {
		s.MaintenanceHistory = append(s.MaintenanceHistory, HistoryEntry{
			Date:        rec.Date,
			Type:        rec.Type,
			Description: rec.Description,
		})
	}

	return s
}
