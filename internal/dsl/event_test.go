package dsl

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"calgen/internal/model"
)

func TestParseEvent(t *testing.T) {
	g := model.Group(4)

	tests := []struct {
		name  string
		line  string
		title string
		rule  model.Recurrence
	}{
		{
			name:  "fixed date",
			line:  "1 jan New Year's Day",
			title: "New Year's Day",
			rule:  model.FixedDate{Month: time.January, Day: 1},
		},
		{
			name:  "fixed date full month name",
			line:  "25 December Christmas",
			title: "Christmas",
			rule:  model.FixedDate{Month: time.December, Day: 25},
		},
		{
			name:  "fixed date day zero is left to the resolver",
			line:  "0 feb Nothing",
			title: "Nothing",
			rule:  model.FixedDate{Month: time.February, Day: 0},
		},
		{
			name:  "nth weekday of month",
			line:  "1 mon/jan New Year Bank Holiday",
			title: "New Year Bank Holiday",
			rule:  model.NthWeekdayOfMonth{N: 1, Weekday: time.Monday, Month: model.MonthPtr(time.January)},
		},
		{
			name:  "last weekday of month",
			line:  "-1 Fri/DEC Last Friday",
			title: "Last Friday",
			rule:  model.NthWeekdayOfMonth{N: -1, Weekday: time.Friday, Month: model.MonthPtr(time.December)},
		},
		{
			name:  "every month",
			line:  "2 tuesday Book club",
			title: "Book club",
			rule:  model.NthWeekdayOfMonth{N: 2, Weekday: time.Tuesday},
		},
		{
			name:  "easter",
			line:  "-2 EASTER Good Friday",
			title: "Good Friday",
			rule:  model.DaysAfterEaster{Offset: -2},
		},
		{
			name:  "fuzzy sunday",
			line:  "ho repl -46 easter Ash Wednesday",
			title: "Ash Wednesday",
			rule:  model.FuzzySunday{Inner: model.DaysAfterEaster{Offset: -46}},
		},
		{
			name:  "nested fuzzy sunday with mixed case",
			line:  "HO REPL Ho Repl 6 jan Epiphany",
			title: "Epiphany",
			rule:  model.FuzzySunday{Inner: model.FuzzySunday{Inner: model.FixedDate{Month: time.January, Day: 6}}},
		},
		{
			name:  "tabs and repeated blanks",
			line:  "15\t\taug \t Assumption  of Mary",
			title: "Assumption  of Mary",
			rule:  model.FixedDate{Month: time.August, Day: 15},
		},
		{
			name:  "explicit plus sign",
			line:  "+3 sun Third Sunday",
			title: "Third Sunday",
			rule:  model.NthWeekdayOfMonth{N: 3, Weekday: time.Sunday},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseEvent(tt.line, g)
			if err != nil {
				t.Fatalf("ParseEvent(%q): %v", tt.line, err)
			}
			if ev.Title != tt.title {
				t.Errorf("title = %q, want %q", ev.Title, tt.title)
			}
			if ev.Group != g {
				t.Errorf("group = %v, want %v", ev.Group, g)
			}
			if !reflect.DeepEqual(ev.Rule, tt.rule) {
				t.Errorf("rule = %#v, want %#v", ev.Rule, tt.rule)
			}
		})
	}
}

func TestParseEventErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"missing title", "1 jan", ErrInvalidEvent},
		{"single field", "christmas", ErrInvalidEvent},
		{"unknown category", "1 someday Title", ErrInvalidEvent},
		{"bad weekday in pair", "1 xyz/jan Title", ErrInvalidEvent},
		{"bad month in pair", "1 mon/xyz Title", ErrInvalidEvent},
		{"non numeric index", "first mon Title", ErrInvalidIndex},
		{"index overflows int16", "40000 easter Title", ErrInvalidIndex},
		{"negative fixed day", "-3 dec Title", ErrInvalidDay},
		{"fuzzy prefix with bad rest", "ho repl nope", ErrInvalidEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEvent(tt.line, model.Group(0))
			if !errors.Is(err, tt.want) {
				t.Fatalf("ParseEvent(%q) err = %v, want %v", tt.line, err, tt.want)
			}
		})
	}
}

func TestParseEventErrorMessages(t *testing.T) {
	_, err := ParseEvent("x mon Title", model.Group(0))
	if err == nil || err.Error() != "invalid index x" {
		t.Errorf("err = %v, want %q", err, "invalid index x")
	}

	_, err = ParseEvent("1 blah Title", model.Group(0))
	if err == nil || err.Error() != "invalid event: 1 blah Title" {
		t.Errorf("err = %v, want %q", err, "invalid event: 1 blah Title")
	}

	_, err = ParseEvent("-3 dec Title", model.Group(0))
	if err == nil || err.Error() != "invalid date December/-3" {
		t.Errorf("err = %v, want %q", err, "invalid date December/-3")
	}
}

func TestParseNames(t *testing.T) {
	for _, s := range []string{"jan", "January", "JAN", " january "} {
		if m, ok := ParseMonth(s); !ok || m != time.January {
			t.Errorf("ParseMonth(%q) = %v, %v", s, m, ok)
		}
	}
	for _, s := range []string{"thu", "Thursday", "THU"} {
		if wd, ok := ParseWeekday(s); !ok || wd != time.Thursday {
			t.Errorf("ParseWeekday(%q) = %v, %v", s, wd, ok)
		}
	}
	for _, s := range []string{"janu", "th", ""} {
		if _, ok := ParseMonth(s); ok {
			t.Errorf("ParseMonth(%q) unexpectedly ok", s)
		}
		if _, ok := ParseWeekday(s); ok {
			t.Errorf("ParseWeekday(%q) unexpectedly ok", s)
		}
	}
}
