package components

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// Element ids patched by the dashboard SSE stream.
const (
	MachineTableID  = "machine-table"
	StatusSummaryID = "status-summary"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-time message carried across a redirect.
type Flash struct {
	Kind    string
	Message string
}

// DashboardView is everything the dashboard page shows.
type DashboardView struct {
	Machines []*core.Machine
	Counts   map[core.MachineStatus]int
	Flash    *Flash
}

// Dashboard renders the status summary, the machine table and the live chart.
func Dashboard(view DashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.raw(`<div data-init="@get('/updates')">`)

		if view.Flash != nil && view.Flash.Message != "" {
			m.raw(`<div class="flash flash-` + flashKind(view.Flash.Kind) + `" role="status">`)
			m.text(view.Flash.Message)
			m.raw(`</div>`)
		}

		m.component(StatusSummary(view.Counts))

		m.raw(`<section class="panel"><h2>Machines</h2>`)
		m.component(MachineTable(view.Machines))
		m.raw(`</section>`)

		m.raw(`<section class="panel"><h2>Live sensor data</h2>`)
		m.component(LiveChart())
		m.raw(`</section>`)

		m.raw(`</div>`)
		return m.err
	})
}

// StatusSummary renders one card per status with its machine count.
func StatusSummary(counts map[core.MachineStatus]int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.raw(`<section id="` + StatusSummaryID + `" class="summary">`)
		for _, status := range core.MachineStatuses {
			m.raw(`<div class="summary-card">`)
			statusBadge(m, status)
			m.raw(`<span class="summary-count">`)
			m.int(int64(counts[status]))
			m.raw(`</span></div>`)
		}
		m.raw(`</section>`)
		return m.err
	})
}

// MachineTable renders the machine list with a status form per row.
func MachineTable(machines []*core.Machine) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.raw(`<div id="` + MachineTableID + `">`)
		if len(machines) == 0 {
			m.raw(`<p class="empty">No machines registered yet.</p></div>`)
			return m.err
		}

		m.raw(`<table class="table"><thead><tr>`)
		m.raw(`<th>ID</th><th>Name</th><th>Type</th><th>Location</th><th>Status</th><th>Last maintenance</th><th></th>`)
		m.raw(`</tr></thead><tbody>`)
		for _, machine := range machines {
			id := strconv.FormatInt(machine.ID, 10)
			m.raw(`<tr><td>` + id + `</td><td><a href="/machines/` + id + `">`)
			m.text(machine.Name)
			m.raw(`</a></td><td>`)
			m.text(machine.Type)
			m.raw(`</td><td>`)
			m.text(machine.Location)
			m.raw(`</td><td>`)
			statusBadge(m, machine.Status)
			m.raw(`</td><td>`)
			m.text(formatTime(machine.LastMaintenance))
			m.raw(`</td><td>`)
			statusForm(m, machine)
			m.raw(`</td></tr>`)
		}
		m.raw(`</tbody></table></div>`)
		return m.err
	})
}

func statusForm(m *markup, machine *core.Machine) {
	id := strconv.FormatInt(machine.ID, 10)
	m.raw(`<form method="post" action="/machines/` + id + `/status" class="status-form">`)
	m.raw(`<select name="status" aria-label="Status">`)
	for _, status := range core.MachineStatuses {
		m.raw(`<option value="` + string(status) + `"`)
		if status == machine.Status {
			m.raw(` selected`)
		}
		m.raw(`>`)
		m.text(StatusLabel(status))
		m.raw(`</option>`)
	}
	m.raw(`</select><button type="submit">Update</button></form>`)
}

func flashKind(kind string) string {
	if kind == FlashError {
		return FlashError
	}
	return FlashSuccess
}
