package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// LiveChartNotice is the text shown where the live sensor chart will go.
const LiveChartNotice = "Live sensor data chart will be displayed here"

const liveChartMarkup = `<div class="w-full h-64 bg-gray-50 rounded-lg flex items-center justify-center">` +
	`<p class="text-gray-500">` + LiveChartNotice + `</p></div>`

// LiveChart renders the placeholder for the live sensor data chart.
// The output is constant and does not depend on ctx.
func LiveChart() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, liveChartMarkup)
		return err
	})
}
