package components

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// MachineDetail renders one machine with its maintenance schedule.
func MachineDetail(machine *core.Machine, schedule *core.Schedule) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.raw(`<a href="/" class="back">&larr; All machines</a>`)
		m.raw(`<section class="panel"><h2>`)
		m.text(machine.Name)
		m.raw(`</h2><dl class="fields">`)
		field(m, "Type", machine.Type)
		field(m, "Location", machine.Location)
		field(m, "Installed", machine.InstallationDate.UTC().Format(core.DateLayout))
		m.raw(`<dt>Status</dt><dd>`)
		statusBadge(m, machine.Status)
		m.raw(`</dd>`)
		field(m, "Last maintenance", formatTime(machine.LastMaintenance))
		m.raw(`</dl></section>`)

		m.raw(`<section class="panel"><h2>Live sensor data</h2>`)
		m.component(LiveChart())
		m.raw(`</section>`)

		if schedule != nil {
			scheduleSection(m, schedule)
		}
		return m.err
	})
}

func scheduleSection(m *markup, s *core.Schedule) {
	m.raw(`<section class="panel" id="schedule"><h2>Maintenance schedule</h2><dl class="fields">`)
	field(m, "Interval", strconv.Itoa(s.MaintenanceInterval)+" days")
	next := "Not scheduled"
	if s.NextScheduled != nil {
		next = s.NextScheduled.String()
	}
	field(m, "Next scheduled", next)
	if s.DaysUntilNext != nil {
		field(m, "Days until next", strconv.Itoa(*s.DaysUntilNext))
	}
	field(m, "Recommendation", s.Recommendation)
	m.raw(`</dl>`)

	if len(s.MaintenanceHistory) == 0 {
		m.raw(`<p class="empty">No maintenance recorded.</p></section>`)
		return
	}

	m.raw(`<table class="table"><thead><tr><th>Date</th><th>Type</th><th>Description</th></tr></thead><tbody>`)
	for _, h := range s.MaintenanceHistory {
		m.raw(`<tr><td>`)
		m.text(h.Date.String())
		m.raw(`</td><td>`)
		m.text(h.Type)
		m.raw(`</td><td>`)
		m.text(h.Description)
		m.raw(`</td></tr>`)
	}
	m.raw(`</tbody></table></section>`)
}

func field(m *markup, label, value string) {
	m.raw(`<dt>`)
	m.text(label)
	m.raw(`</dt><dd>`)
	m.text(value)
	m.raw(`</dd>`)
}
