package duedate

import (
	"strings"
	"time"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
)

// layouts are tried in order. Day-first is preferred over month-first since
// the forms are filled in French.
var layouts = []string{
	"02/01/2006",
	"2/1/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02.01.2006",
	"January 2, 2006",
	"2 January 2006",
	"Jan 2, 2006",
	time.RFC1123,
}

// Parse reads a due date in any accepted layout.
func Parse(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Derive maps a due date to the equipment state. Unparseable dates and dates
// on or before today are INVALID; only a strictly later day is OK.
func Derive(due string, now time.Time) inspection.State {
	t, ok := Parse(due)
	if !ok {
		return inspection.StateInvalid
	}
	if day(t).After(day(now)) {
		return inspection.StateOK
	}
	return inspection.StateInvalid
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
