// Package ics moves calendars between the calendar file format and
// iCalendar: exporting a resolved year and importing feeds or files back
// into event groups.
package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"calgen/internal/civil"
	"calgen/internal/model"
	"calgen/internal/recurrence"
)

var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("calgen"))

// ExportOptions tunes Export.
type ExportOptions struct {
	// Name becomes X-WR-CALNAME.
	Name string
	// Stamp is written as DTSTAMP; zero means now.
	Stamp time.Time
}

// Export writes the resolved events of res as an iCalendar document with
// one all-day VEVENT per occurrence. UIDs are derived from group, title
// and date so re-exports update rather than duplicate.
func Export(w io.Writer, groups []model.EventGroup, res *recurrence.Result, opts ExportOptions) error {
	if res == nil {
		return fmt.Errorf("export: nothing resolved")
	}
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	titles := make(map[model.GroupID]string, len(groups))
	for _, g := range groups {
		titles[g.ID] = g.Title
	}

	cal := ical.NewCalendarFor("calgen")
	cal.SetMethod(ical.MethodPublish)
	cal.SetCalscale("GREGORIAN")
	if opts.Name != "" {
		cal.SetName(opts.Name)
		cal.SetXWRCalName(opts.Name)
	}

	for _, re := range res.Events {
		group := titles[re.Group]
		date := civil.Format(re.Date)

		ev := cal.AddEvent(EventUID(group, re.Title, date))
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(re.Date)
		ev.SetAllDayEndAt(re.Date.AddDate(0, 0, 1))
		ev.SetSummary(re.Title)
		ev.SetTimeTransparency(ical.TransparencyTransparent)
		if group != "" {
			ev.AddCategory(group)
		}
	}

	return cal.SerializeTo(w)
}

// EventUID returns the stable UID of one exported occurrence.
func EventUID(group, title, date string) string {
	return uuid.NewSHA1(uidNamespace, []byte(group+"\x00"+title+"\x00"+date)).String() + "@calgen"
}
