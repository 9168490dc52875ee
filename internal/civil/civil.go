// Package civil holds the timezone-less date arithmetic the calendar is
// built on. Dates are represented as time.Time values at midnight UTC.
package civil

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrOutOfRange  = errors.New("date out of range")
)

// MinYear and MaxYear bound the representable calendar.
const (
	MinYear = 1
	MaxYear = 9999
)

var (
	MinDate = Date(MinYear, time.January, 1)
	MaxDate = Date(MaxYear, time.December, 31)
)

// Months lists the twelve months in calendar order.
var Months = [12]time.Month{
	time.January, time.February, time.March, time.April,
	time.May, time.June, time.July, time.August,
	time.September, time.October, time.November, time.December,
}

// DaysInMonth returns the length of month in year.
//
// February uses the simplified leap rule year%4 == 0, without the century
// correction. Existing calendar files depend on this behavior.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.April, time.June, time.September, time.November:
		return 30
	case time.February:
		if year%4 == 0 {
			return 29
		}
		return 28
	default:
		return 31
	}
}

// Date constructs the civil date year-month-day. Out-of-range values are
// normalized the way time.Date does; use Valid to check first.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Valid reports whether year-month-day names a real date inside
// [MinDate, MaxDate] that also fits DaysInMonth.
func Valid(year int, month time.Month, day int) bool {
	if year < MinYear || year > MaxYear {
		return false
	}
	if month < time.January || month > time.December {
		return false
	}
	if day < 1 || day > DaysInMonth(year, month) {
		return false
	}
	t := Date(year, month, day)
	return t.Month() == month && t.Day() == day
}

// Weekday returns the weekday of year-month-day.
func Weekday(year int, month time.Month, day int) time.Weekday {
	return Date(year, month, day).Weekday()
}

// DaysFromMonday returns the number of days between Monday and wd
// (Monday is 0, Sunday is 6).
func DaysFromMonday(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// IsWeekend reports whether wd is a Saturday or a Sunday.
func IsWeekend(wd time.Weekday) bool {
	return wd == time.Saturday || wd == time.Sunday
}

// Weekdays returns n weekdays cycling forward from start.
func Weekdays(start time.Weekday, n int) []time.Weekday {
	if n <= 0 {
		return nil
	}
	out := make([]time.Weekday, n)
	for i := range out {
		out[i] = time.Weekday((int(start) + i) % 7)
	}
	return out
}

// InRange reports whether t lies within [MinDate, MaxDate].
func InRange(t time.Time) bool {
	return !t.Before(MinDate) && !t.After(MaxDate)
}

// ShiftDays adds n days to t. It fails instead of leaving the
// representable range.
func ShiftDays(t time.Time, n int) (time.Time, error) {
	out := t.AddDate(0, 0, n)
	if !InRange(out) {
		if n < 0 {
			return time.Time{}, fmt.Errorf("%w: no date %d days before %s", ErrOutOfRange, -n, Format(t))
		}
		return time.Time{}, fmt.Errorf("%w: no date %d days after %s", ErrOutOfRange, n, Format(t))
	}
	return out, nil
}

// FindDate starts at year-month-day and steps one day at a time in
// direction (+1 or -1) until it reaches target. The start date itself is
// returned when it already falls on target.
func FindDate(year int, month time.Month, day int, target time.Weekday, direction int) (time.Time, error) {
	if direction != 1 && direction != -1 {
		return time.Time{}, fmt.Errorf("find date: direction must be 1 or -1, got %d", direction)
	}
	if !Valid(year, month, day) {
		return time.Time{}, fmt.Errorf("%w %d/%s/%d", ErrInvalidDate, year, month, day)
	}

	t := Date(year, month, day)
	for t.Weekday() != target {
		next, err := ShiftDays(t, direction)
		if err != nil {
			return time.Time{}, err
		}
		t = next
	}
	return t, nil
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(time.DateOnly)
}
