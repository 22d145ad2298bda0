package core

import (
	"bytes"
	"fmt"
	"time"
)

// timestampLayouts are tried in order. Values without an offset are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	DateLayout,
}

// Timestamp is an instant read from API input. It accepts RFC 3339 as well
// as timestamps without a zone, which are taken as UTC.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses s with any of the accepted layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t.UTC()}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("%w: timestamp %q must be ISO 8601", ErrInvalidInput, s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return t.UTC().MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("%w: timestamp must be a string", ErrInvalidInput)
	}
	parsed, err := ParseTimestamp(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
