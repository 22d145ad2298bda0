// Package testutil captures CLI output for command tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/pdmwatch/internal/cli/output"
)

// TestRenderer is an output.Renderer whose streams land in buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer builds a renderer in the given mode. isTTY forces colour
// on even though the buffers are not terminals.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	var out, errOut bytes.Buffer
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(&out, &errOut, isTTY, mode),
		Out:      &out,
		ErrOut:   &errOut,
	}
}

// NewTestRendererText renders coloured text, as on a terminal.
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererJSON renders JSON.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

func (tr *TestRenderer) Output() string      { return tr.Out.String() }
func (tr *TestRenderer) ErrorOutput() string { return tr.ErrOut.String() }

// Reset empties both buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// Lines returns the non-blank stdout lines with colour codes removed.
func (tr *TestRenderer) Lines() []string {
	var lines []string
	for _, line := range strings.Split(StripANSI(tr.Output()), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// DecodeJSON unmarshals stdout into a T and fails the test on error.
func DecodeJSON[T any](t testing.TB, tr *TestRenderer) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(tr.Out.Bytes(), &v); err != nil {
		t.Fatalf("stdout is not valid JSON: %v\n%s", err, tr.Output())
	}
	return v
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes colour and style escape sequences.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// AssertNoANSI fails the test if s carries escape sequences.
func AssertNoANSI(t testing.TB, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("unexpected ANSI escape codes in %q", s)
	}
}
