// Package dsl parses calendar documents: bracketed group headers followed
// by one event rule per line, such as
//
//	[Holidays: color: red]
//	25 dec Christmas
//	-1 mon/may Spring Bank Holiday
//	ho repl -46 easter Ash Wednesday
package dsl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"calgen/internal/model"
)

var (
	ErrInvalidEvent       = errors.New("invalid event")
	ErrInvalidIndex       = errors.New("invalid index")
	ErrInvalidDay         = errors.New("invalid date")
	ErrMissingGroup       = errors.New("calendar must start with an event group")
	ErrUnterminatedHeader = errors.New("event group titles must end with a ']'")
)

// FuzzyPrefix marks a rule whose Mondays and Saturdays move to the
// neighbouring Sunday.
const FuzzyPrefix = "ho repl "

const easterKeyword = "easter"

// ParseEvent parses one event line into an EventDescription owned by group.
//
// The line has the shape "[ho repl ]<index> <category> <title>" where the
// category is "easter", a weekday, a month, or "weekday/month".
func ParseEvent(line string, group model.GroupID) (model.EventDescription, error) {
	if rest, ok := cutPrefixFold(line, FuzzyPrefix); ok {
		ev, err := ParseEvent(rest, group)
		if err != nil {
			return model.EventDescription{}, err
		}
		ev.Rule = model.FuzzySunday{Inner: ev.Rule}
		return ev, nil
	}

	index, rest, ok := cutBlank(strings.TrimSpace(line))
	if !ok {
		return model.EventDescription{}, fmt.Errorf("%w: %s", ErrInvalidEvent, line)
	}
	category, title, ok := cutBlank(strings.TrimSpace(rest))
	if !ok {
		return model.EventDescription{}, fmt.Errorf("%w: %s", ErrInvalidEvent, line)
	}
	index = strings.TrimSpace(index)
	category = strings.TrimSpace(category)
	title = strings.TrimSpace(title)
	if title == "" {
		return model.EventDescription{}, fmt.Errorf("%w: %s", ErrInvalidEvent, line)
	}

	n, err := strconv.ParseInt(index, 10, 16)
	if err != nil {
		return model.EventDescription{}, fmt.Errorf("%w %s", ErrInvalidIndex, index)
	}

	rule, err := parseCategory(int16(n), category)
	if err != nil {
		if errors.Is(err, ErrInvalidEvent) {
			return model.EventDescription{}, fmt.Errorf("%w: %s", ErrInvalidEvent, line)
		}
		return model.EventDescription{}, err
	}

	return model.EventDescription{
		Title: title,
		Rule:  rule,
		Group: group,
	}, nil
}

func parseCategory(n int16, category string) (model.Recurrence, error) {
	if strings.EqualFold(category, easterKeyword) {
		return model.DaysAfterEaster{Offset: n}, nil
	}

	if wdName, monthName, ok := strings.Cut(category, "/"); ok {
		wd, wok := ParseWeekday(wdName)
		m, mok := ParseMonth(monthName)
		if wok && mok {
			return model.NthWeekdayOfMonth{N: n, Weekday: wd, Month: model.MonthPtr(m)}, nil
		}
	}

	if m, ok := ParseMonth(category); ok {
		if n < 0 {
			return nil, fmt.Errorf("%w %s/%d", ErrInvalidDay, m, n)
		}
		return model.FixedDate{Month: m, Day: int(n)}, nil
	}

	if wd, ok := ParseWeekday(category); ok {
		return model.NthWeekdayOfMonth{N: n, Weekday: wd}, nil
	}

	return nil, ErrInvalidEvent
}

// cutBlank splits s around the first space or tab.
func cutBlank(s string) (before, after string, found bool) {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

var monthNames = func() map[string]time.Month {
	out := make(map[string]time.Month, 24)
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		out[name] = m
		out[name[:3]] = m
	}
	return out
}()

var weekdayNames = func() map[string]time.Weekday {
	out := make(map[string]time.Weekday, 14)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		out[name] = wd
		out[name[:3]] = wd
	}
	return out
}()

// ParseMonth accepts an English month name or its three-letter abbreviation.
func ParseMonth(s string) (time.Month, bool) {
	m, ok := monthNames[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}

// ParseWeekday accepts an English weekday name or its three-letter abbreviation.
func ParseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	return wd, ok
}
