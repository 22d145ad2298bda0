package components

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/pdmwatch/internal/ui/resources"
)

// DatastarScript is the datastar client bundle loaded by every page.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// Page wraps body in the HTML document shell.
// In dev mode the page also listens on /reload for hot reloads.
func Page(title string, isDev bool, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		m.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		m.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		m.raw(`<title>`)
		m.text(title)
		m.raw(` - pdmwatch</title>`)
		m.raw(`<link rel="stylesheet" href="` + resources.StaticPath("app.css") + `">`)
		m.raw(`<script type="module" src="` + DatastarScript + `"></script>`)
		m.raw(`</head><body class="bg-white text-gray-900">`)
		if isDev {
			m.raw(`<div data-init="@get('/reload')"></div>`)
		}
		m.raw(`<header class="header"><a href="/" class="brand">pdmwatch</a>`)
		m.raw(`<span class="tagline">Predictive maintenance dashboard</span></header>`)
		m.raw(`<main class="container">`)
		m.component(body)
		m.raw(`</main></body></html>`)
		return m.err
	})
}
