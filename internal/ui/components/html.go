package components

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// markup writes HTML and remembers the first write error so views can be
// written as a straight sequence of calls.
type markup struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newMarkup(ctx context.Context, w io.Writer) *markup {
	return &markup{ctx: ctx, w: w}
}

// raw writes trusted markup as is.
func (m *markup) raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

// text writes s with HTML escaping.
func (m *markup) text(s string) {
	m.raw(templ.EscapeString(s))
}

func (m *markup) int(n int64) {
	m.raw(strconv.FormatInt(n, 10))
}

// component renders a child component in place.
func (m *markup) component(c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(m.ctx, m.w)
}
