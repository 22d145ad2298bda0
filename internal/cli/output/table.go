package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// Table writes rows as a table on stdout. Terminals get box-drawing borders;
// everything else gets plain ASCII.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	if r.isTTY {
		t.SetStyle(table.StyleLight)
	} else {
		t.SetStyle(table.StyleDefault)
	}

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, cols := range rows {
		row := make(table.Row, len(cols))
		for i, c := range cols {
			row[i] = c
		}
		t.AppendRow(row)
	}

	t.Render()
}
