package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "calgen/internal/log"
)

// ParsedEvent is the part of a VEVENT the importer cares about.
type ParsedEvent struct {
	Source Source

	UID     string
	Summary string

	// Start holds the calendar date of DTSTART; the time of day is
	// irrelevant for all-day calendars.
	Start  time.Time
	AllDay bool

	RawRRule   string
	Categories []string
	// Override is set for RECURRENCE-ID instances, which the importer
	// ignores in favour of the master event.
	Override bool
}

// Parse decodes an ICS payload. A VEVENT that cannot be read is logged
// and skipped; only an unreadable calendar is an error.
func Parse(src Source, body []byte) ([]ParsedEvent, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]ParsedEvent, 0)
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(src, ve)
		if err != nil {
			appLog.Warn("skipping unreadable vevent", "id", src.ID, "err", err)
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parsed", "id", src.ID, "events", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (ParsedEvent, error) {
	out := ParsedEvent{Source: src}

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = strings.TrimSpace(p.Value)
	}
	if out.Summary == "" {
		return out, errors.New("missing SUMMARY")
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	out.AllDay = !strings.Contains(dtStart.Value, "T")
	if vs := dtStart.ICalParameters["VALUE"]; len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		out.AllDay = true
	}

	var (
		start time.Time
		err   error
	)
	if out.AllDay {
		start, err = ve.GetAllDayStartAt()
	} else {
		start, err = ve.GetStartAt()
	}
	if err != nil {
		return out, err
	}
	out.Start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		for _, c := range strings.Split(p.Value, ",") {
			c = strings.TrimSpace(strings.ReplaceAll(c, `\`, ""))
			if c != "" {
				out.Categories = append(out.Categories, c)
			}
		}
	}
	out.Override = ve.GetProperty(ical.ComponentPropertyRecurrenceId) != nil

	return out, nil
}
