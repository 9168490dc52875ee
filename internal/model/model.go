package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GroupID identifies the event group an event belongs to. The zero value
// is NoGroup; parsed groups get dense ordinals starting at zero.
type GroupID struct {
	ordinal int
	set     bool
}

// NoGroup is the GroupID of events that do not belong to a group.
var NoGroup = GroupID{}

// Group returns the GroupID for the group declared at position n.
func Group(n int) GroupID {
	return GroupID{ordinal: n, set: true}
}

// Ordinal returns the group position and whether the ID names a group.
func (g GroupID) Ordinal() (int, bool) {
	return g.ordinal, g.set
}

// String returns the CSS class the renderer attaches to events of the group.
func (g GroupID) String() string {
	if !g.set {
		return ""
	}
	return "eventgroup" + strconv.Itoa(g.ordinal)
}

// MarshalText encodes the ID as its group ordinal ("" for NoGroup).
func (g GroupID) MarshalText() ([]byte, error) {
	if !g.set {
		return []byte{}, nil
	}
	return []byte(strconv.Itoa(g.ordinal)), nil
}

// Recurrence is a year-independent event rule. The set of implementations
// is closed: FixedDate, NthWeekdayOfMonth, DaysAfterEaster and FuzzySunday.
type Recurrence interface {
	fmt.Stringer
	recurrence()
}

// FixedDate is one specific calendar day every year.
type FixedDate struct {
	Month time.Month
	Day   int
}

// NthWeekdayOfMonth is the Nth Weekday of Month. Positive N counts from the
// start of the month, negative N from the end. A nil Month means every month.
type NthWeekdayOfMonth struct {
	N       int16
	Weekday time.Weekday
	Month   *time.Month
}

// DaysAfterEaster is Offset days after Easter Sunday (negative is before).
type DaysAfterEaster struct {
	Offset int16
}

// FuzzySunday moves every Monday produced by Inner to the Sunday before it
// and every Saturday to the Sunday after it.
type FuzzySunday struct {
	Inner Recurrence
}

func (FixedDate) recurrence()         {}
func (NthWeekdayOfMonth) recurrence() {}
func (DaysAfterEaster) recurrence()   {}
func (FuzzySunday) recurrence()       {}

// String renders the rule back into its one-line source form.
func (r FixedDate) String() string {
	return fmt.Sprintf("%d %s", r.Day, ShortMonth(r.Month))
}

func (r NthWeekdayOfMonth) String() string {
	if r.Month == nil {
		return fmt.Sprintf("%d %s", r.N, ShortWeekday(r.Weekday))
	}
	return fmt.Sprintf("%d %s/%s", r.N, ShortWeekday(r.Weekday), ShortMonth(*r.Month))
}

func (r DaysAfterEaster) String() string {
	return fmt.Sprintf("%d easter", r.Offset)
}

func (r FuzzySunday) String() string {
	if r.Inner == nil {
		return "ho repl"
	}
	return "ho repl " + r.Inner.String()
}

// MonthPtr returns a pointer to m, for building NthWeekdayOfMonth values.
func MonthPtr(m time.Month) *time.Month {
	return &m
}

// ShortMonth returns the lower-case three-letter month abbreviation.
func ShortMonth(m time.Month) string {
	return strings.ToLower(m.String()[:3])
}

// ShortWeekday returns the lower-case three-letter weekday abbreviation.
func ShortWeekday(wd time.Weekday) string {
	return strings.ToLower(wd.String()[:3])
}

// EventDescription is one parsed event line.
type EventDescription struct {
	Title string
	Rule  Recurrence
	Group GroupID
}

// EventGroup is a named collection of events. Style is passed through to
// the renderer untouched; "" means the group declared no style.
type EventGroup struct {
	ID     GroupID
	Title  string
	Style  string
	Events []EventDescription
}

// ResolvedEvent is one event occurrence in a specific year.
type ResolvedEvent struct {
	Date  time.Time
	Title string
	Group GroupID
}

// GroupStyle pairs a selected group with the style it declared.
type GroupStyle struct {
	ID    GroupID
	Style string
}

// Class returns the CSS class name of the group.
func (s GroupStyle) Class() string {
	return s.ID.String()
}

// Styles returns the styles of the selected groups that declared one, in
// group order.
func Styles(groups []EventGroup, sel Selection) []GroupStyle {
	out := make([]GroupStyle, 0)
	for _, g := range groups {
		if !sel.Selected(g.ID) || g.Style == "" {
			continue
		}
		out = append(out, GroupStyle{ID: g.ID, Style: g.Style})
	}
	return out
}
