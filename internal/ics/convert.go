package ics

import (
	"strings"

	appLog "calgen/internal/log"
	"calgen/internal/model"
)

// fallbackGroup titles events that carry neither a category nor a source ID.
const fallbackGroup = "Imported"

// ToGroups turns imported events into event groups, one per category in
// order of first appearance. Events without a category go to a group named
// after their source. year only matters for RRULEs that have to be
// expanded. Events that cannot be mapped are returned as errors and left
// out.
func ToGroups(events []ParsedEvent, year int) ([]model.EventGroup, []error) {
	groups := make([]model.EventGroup, 0)
	index := make(map[string]int)
	seen := make(map[string]bool)
	errs := make([]error, 0)

	for _, ev := range events {
		if ev.Override {
			continue
		}
		if ev.UID != "" {
			if seen[ev.UID] {
				continue
			}
			seen[ev.UID] = true
		}

		rules, err := RuleFor(ev, year)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(rules) == 0 {
			appLog.Debug("imported event has no dates in year", "event", ev.Summary, "year", year)
			continue
		}

		title := groupTitle(ev)
		i, ok := index[strings.ToLower(title)]
		if !ok {
			i = len(groups)
			index[strings.ToLower(title)] = i
			groups = append(groups, model.EventGroup{ID: model.Group(i), Title: title})
		}
		g := &groups[i]
		for _, r := range rules {
			g.Events = append(g.Events, model.EventDescription{
				Title: eventTitle(ev.Summary),
				Rule:  r,
				Group: g.ID,
			})
		}
	}
	return groups, errs
}

func groupTitle(ev ParsedEvent) string {
	title := ev.Source.ID
	if len(ev.Categories) > 0 {
		title = ev.Categories[0]
	}
	// ':' starts the style and ']' closes the header in a calendar file.
	title = strings.NewReplacer(":", " ", "[", " ", "]", " ").Replace(title)
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return fallbackGroup
	}
	return title
}

func eventTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
