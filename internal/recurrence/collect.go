package recurrence

import (
	"fmt"
	"strings"

	appLog "calgen/internal/log"
	"calgen/internal/model"
)

// Policy decides what happens when one event fails to resolve.
type Policy string

const (
	// PolicyAbort stops at the first failing event and fails the render.
	PolicyAbort Policy = "abort"
	// PolicySkip drops failing events, records them and keeps going.
	PolicySkip Policy = "skip"
)

// ParsePolicy parses "abort" or "skip"; empty means abort.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyAbort:
		return PolicyAbort, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown error policy %q (want abort or skip)", s)
	}
}

// Failure records an event that could not be resolved under PolicySkip.
type Failure struct {
	Group string `json:"group"`
	Event string `json:"event"`
	Rule  string `json:"rule"`
	Err   error  `json:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s / %s (%s): %v", f.Group, f.Event, f.Rule, f.Err)
}

// Result is everything one render needs from the resolver.
type Result struct {
	Year int
	// Days is consumed by the grid builders.
	Days model.DayMap
	// Events lists every resolved occurrence in group and event order.
	Events  []model.ResolvedEvent
	Skipped []Failure
}

// Collect resolves the selected groups for year into a fresh day map.
func Collect(groups []model.EventGroup, sel model.Selection, year int, policy Policy) (*Result, error) {
	res := &Result{
		Year:   year,
		Days:   make(model.DayMap),
		Events: make([]model.ResolvedEvent, 0),
	}

	for _, g := range groups {
		if !sel.Selected(g.ID) {
			continue
		}
		for _, ev := range g.Events {
			dates, err := Dates(ev.Rule, year)
			if err != nil {
				if policy != PolicySkip {
					return nil, fmt.Errorf("%s: %s: %w", g.Title, ev.Title, err)
				}
				f := Failure{Group: g.Title, Event: ev.Title, Rule: ruleString(ev.Rule), Err: err}
				appLog.Warn("skipping event that failed to resolve",
					"group", g.Title,
					"event", ev.Title,
					"rule", f.Rule,
					"year", year,
					"err", err,
				)
				res.Skipped = append(res.Skipped, f)
				continue
			}
			for _, d := range dates {
				if d.Year() != year {
					appLog.Debug("event lands outside the target year",
						"event", ev.Title, "date", d.Format("2006-01-02"), "year", year)
				}
				re := model.ResolvedEvent{Date: d, Title: ev.Title, Group: ev.Group}
				res.Events = append(res.Events, re)
				res.Days.Add(re)
			}
		}
	}

	appLog.Debug("events resolved",
		"year", year,
		"events", len(res.Events),
		"days", res.Days.Len(),
		"skipped", len(res.Skipped),
	)
	return res, nil
}

func ruleString(r model.Recurrence) string {
	if r == nil {
		return ""
	}
	return r.String()
}
