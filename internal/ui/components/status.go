package components

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

// statusLabels is built once. A cases.Caser is not safe for concurrent use.
var statusLabels = func() map[core.MachineStatus]string {
	caser := cases.Title(language.English)
	labels := make(map[core.MachineStatus]string, len(core.MachineStatuses))
	for _, s := range core.MachineStatuses {
		labels[s] = caser.String(string(s))
	}
	return labels
}()

// StatusLabel returns the display label of a status, e.g. "Operational".
// It is safe for concurrent use.
func StatusLabel(s core.MachineStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return cases.Title(language.English).String(string(s))
}

func statusClass(s core.MachineStatus) string {
	if !s.Valid() {
		return "status"
	}
	return "status status-" + string(s)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "Never"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func statusBadge(m *markup, s core.MachineStatus) {
	m.raw(`<span class="` + statusClass(s) + `">`)
	m.text(StatusLabel(s))
	m.raw(`</span>`)
}
