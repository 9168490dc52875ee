package model

import (
	"fmt"
	"strings"
	"time"
)

// DayKey addresses one day of the target year.
type DayKey struct {
	Month time.Month
	Day   int
}

// Key returns the DayKey of t.
func Key(t time.Time) DayKey {
	return DayKey{Month: t.Month(), Day: t.Day()}
}

// DayEvent is what a grid cell shows for one event.
type DayEvent struct {
	Title string  `json:"title"`
	Group GroupID `json:"group"`
}

// Class returns the CSS class of the event's group.
func (e DayEvent) Class() string {
	return e.Group.String()
}

// DayMap collects the events of one render keyed by day. Grid builders
// consume it with Take so every entry lands in exactly one cell.
type DayMap map[DayKey][]DayEvent

// Add appends ev to its day, keeping insertion order.
func (m DayMap) Add(ev ResolvedEvent) {
	k := Key(ev.Date)
	m[k] = append(m[k], DayEvent{Title: ev.Title, Group: ev.Group})
}

// Take removes and returns the events of k.
func (m DayMap) Take(k DayKey) []DayEvent {
	evs, ok := m[k]
	if !ok {
		return nil
	}
	delete(m, k)
	return evs
}

// Len returns the number of days that still hold events.
func (m DayMap) Len() int {
	return len(m)
}

// Clone returns a copy that can be consumed independently.
func (m DayMap) Clone() DayMap {
	out := make(DayMap, len(m))
	for k, v := range m {
		out[k] = append([]DayEvent(nil), v...)
	}
	return out
}

// Output selects the grid shape of a render.
type Output string

const (
	OutputMonthly  Output = "monthly"
	OutputYearly   Output = "yearly"
	OutputHalfYear Output = "half-year"
	OutputDiary    Output = "diary"
)

// Outputs lists every supported output in display order.
var Outputs = []Output{OutputMonthly, OutputYearly, OutputHalfYear, OutputDiary}

// ParseOutput parses an output name case-insensitively.
func ParseOutput(s string) (Output, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, o := range Outputs {
		if string(o) == s {
			return o, nil
		}
	}
	switch s {
	case "halfyear", "half":
		return OutputHalfYear, nil
	case "year", "full-year":
		return OutputYearly, nil
	case "month":
		return OutputMonthly, nil
	}
	return "", fmt.Errorf("unknown output %q (want one of monthly, yearly, half-year, diary)", s)
}

// Label returns a human-readable name for o.
func (o Output) Label() string {
	switch o {
	case OutputMonthly:
		return "Monthly Calendar"
	case OutputYearly:
		return "Yearly Calendar"
	case OutputHalfYear:
		return "Yearly Calendar (split in two)"
	case OutputDiary:
		return "Diary"
	default:
		return string(o)
	}
}
