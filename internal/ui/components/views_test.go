package components

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func testMachines() []*core.Machine {
	serviced := time.Date(2026, 2, 1, 14, 30, 0, 0, time.UTC)
	return []*core.Machine{
		{ID: 1, Name: "Lathe <A>", Type: "cnc", Location: "Hall 1", Status: core.MachineStatusOperational, LastMaintenance: &serviced},
		{ID: 2, Name: "Press", Type: "hydraulic", Location: "Hall 2", Status: core.MachineStatusCritical},
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status   core.MachineStatus
		expected string
	}{
		{core.MachineStatusOperational, "Operational"},
		{core.MachineStatusMaintenance, "Maintenance"},
		{core.MachineStatusWarning, "Warning"},
		{core.MachineStatusCritical, "Critical"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusLabel(tt.status))
		})
	}
}

func TestStatusLabel_Unknown(t *testing.T) {
	assert.Equal(t, "Retired", StatusLabel("retired"))
	assert.Equal(t, "status", statusClass("retired"))
	assert.Equal(t, "status status-critical", statusClass(core.MachineStatusCritical))
}

// Run with -race: every page render formats status labels.
func TestStatusLabel_Concurrent(t *testing.T) {
	const workers = 16

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				for _, s := range core.MachineStatuses {
					if StatusLabel(s) == "" {
						errs <- fmt.Errorf("empty label for %s", s)
						return
					}
				}
				var buf bytes.Buffer
				if err := MachineTable(testMachines()).Render(context.Background(), &buf); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestPage(t *testing.T) {
	html := render(t, Page("Dashboard", false, LiveChart()))

	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, "<title>Dashboard - pdmwatch</title>")
	assert.Contains(t, html, "/static/app.css")
	assert.Contains(t, html, DatastarScript)
	assert.Contains(t, html, LiveChartNotice)
	assert.NotContains(t, html, "/reload")

	dev := render(t, Page("Dashboard", true, nil))
	assert.Contains(t, dev, "@get('/reload')")
}

func TestPage_EscapesTitle(t *testing.T) {
	html := render(t, Page("<script>", false, nil))
	assert.Contains(t, html, "&lt;script&gt; - pdmwatch")
}

func TestMachineTable(t *testing.T) {
	html := render(t, MachineTable(testMachines()))

	assert.True(t, strings.HasPrefix(html, `<div id="machine-table">`))
	assert.Contains(t, html, "Lathe &lt;A&gt;")
	assert.Contains(t, html, `href="/machines/1"`)
	assert.Contains(t, html, `action="/machines/2/status"`)
	assert.Contains(t, html, "2026-02-01 14:30")
	assert.Contains(t, html, "Never")
	assert.Contains(t, html, `<option value="critical" selected>`)
}

func TestMachineTable_Empty(t *testing.T) {
	html := render(t, MachineTable(nil))
	assert.Contains(t, html, `id="machine-table"`)
	assert.Contains(t, html, "No machines registered yet.")
}

func TestDashboard(t *testing.T) {
	view := DashboardView{
		Machines: testMachines(),
		Counts: map[core.MachineStatus]int{
			core.MachineStatusOperational: 1,
			core.MachineStatusCritical:    1,
		},
		Flash: &Flash{Kind: FlashError, Message: "Invalid status"},
	}

	html := render(t, Dashboard(view))

	assert.Contains(t, html, "@get('/updates')")
	assert.Contains(t, html, `class="flash flash-error"`)
	assert.Contains(t, html, "Invalid status")
	assert.Contains(t, html, `id="machine-table"`)
	assert.Contains(t, html, LiveChartNotice)
	assert.Equal(t, 4, strings.Count(html, `class="summary-card"`))
}

func TestDashboard_NoFlash(t *testing.T) {
	html := render(t, Dashboard(DashboardView{}))
	assert.NotContains(t, html, "flash")
}

func TestMachineDetail(t *testing.T) {
	machine := testMachines()[0]
	last := core.NewDate(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	latest := &core.MaintenanceRecord{MachineID: 1, Date: last, Type: "preventive", Description: "Oil change"}
	schedule := core.BuildSchedule(1, latest, []*core.MaintenanceRecord{latest}, 90, core.NewDate(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	html := render(t, MachineDetail(machine, schedule))

	assert.Contains(t, html, "Lathe &lt;A&gt;")
	assert.Contains(t, html, LiveChartNotice)
	assert.Contains(t, html, "2026-05-02")
	assert.Contains(t, html, "Oil change")
	assert.Contains(t, html, core.RecommendRegular)
}

func TestMachineDetail_NoHistory(t *testing.T) {
	machine := testMachines()[1]
	schedule := core.BuildSchedule(2, nil, nil, 90, core.NewDate(time.Now()))

	html := render(t, MachineDetail(machine, schedule))

	assert.Contains(t, html, "Not scheduled")
	assert.Contains(t, html, "No maintenance recorded.")
	assert.Contains(t, html, core.RecommendInitial)
}

func TestStatusSummary(t *testing.T) {
	html := render(t, StatusSummary(map[core.MachineStatus]int{core.MachineStatusWarning: 3}))

	assert.True(t, strings.HasPrefix(html, `<section id="status-summary"`))
	assert.Contains(t, html, `<span class="summary-count">3</span>`)
	assert.Equal(t, 3, strings.Count(html, `<span class="summary-count">0</span>`))
}
