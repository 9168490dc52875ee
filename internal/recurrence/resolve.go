// Package recurrence expands event rules into the concrete dates they
// denote in a given year.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"calgen/internal/civil"
	"calgen/internal/easter"
	"calgen/internal/model"
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrZeroNth         = errors.New("nth weekday cannot be 0")
	ErrEaster          = errors.New("failed to calculate Easter")
	ErrShiftOutOfRange = errors.New("date shift out of range")
	ErrUnknownRule     = errors.New("unknown recurrence rule")
)

// Dates returns the dates rule denotes in year, in ascending rule order.
// An nth weekday that does not exist in a month contributes no date.
func Dates(rule model.Recurrence, year int) ([]time.Time, error) {
	switch r := rule.(type) {
	case model.FixedDate:
		return fixedDate(r, year)
	case model.NthWeekdayOfMonth:
		return nthWeekdayOfMonth(r, year)
	case model.DaysAfterEaster:
		return daysAfterEaster(r, year)
	case model.FuzzySunday:
		return fuzzySunday(r, year)
	default:
		return nil, fmt.Errorf("%w %T", ErrUnknownRule, rule)
	}
}

func fixedDate(r model.FixedDate, year int) ([]time.Time, error) {
	if !civil.Valid(year, r.Month, r.Day) {
		return nil, fmt.Errorf("%w %d/%s/%d", ErrInvalidDate, year, r.Month, r.Day)
	}
	return []time.Time{civil.Date(year, r.Month, r.Day)}, nil
}

func nthWeekdayOfMonth(r model.NthWeekdayOfMonth, year int) ([]time.Time, error) {
	if r.N == 0 {
		return nil, ErrZeroNth
	}

	months := civil.Months[:]
	if r.Month != nil {
		months = []time.Month{*r.Month}
	}

	out := make([]time.Time, 0, len(months))
	for _, month := range months {
		d, ok, err := NthWeekday(year, month, r.Weekday, int(r.N))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// NthWeekday finds the nth weekday of month. Positive n counts from the
// first day, negative n from the last day. ok is false when the month has
// fewer than |n| such weekdays.
//
// Negative n anchors on DaysInMonth, so February of a century year that is
// not a real leap year (1900, 2100) fails with civil.ErrInvalidDate. For a
// rule without a month that error fails the whole rule, not just February.
func NthWeekday(year int, month time.Month, wd time.Weekday, n int) (d time.Time, ok bool, err error) {
	switch {
	case n == 0:
		return time.Time{}, false, ErrZeroNth
	case n > 0:
		first, err := civil.FindDate(year, month, 1, wd, 1)
		if err != nil {
			return time.Time{}, false, err
		}
		d = first.AddDate(0, 0, 7*(n-1))
	default:
		last, err := civil.FindDate(year, month, civil.DaysInMonth(year, month), wd, -1)
		if err != nil {
			return time.Time{}, false, err
		}
		d = last.AddDate(0, 0, 7*(n+1))
	}

	if d.Year() != year || d.Month() != month {
		return time.Time{}, false, nil
	}
	return d, true, nil
}

func daysAfterEaster(r model.DaysAfterEaster, year int) ([]time.Time, error) {
	sunday, err := easter.Sunday(year)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEaster, err)
	}
	d, err := civil.ShiftDays(sunday, int(r.Offset))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShiftOutOfRange, err)
	}
	return []time.Time{d}, nil
}

func fuzzySunday(r model.FuzzySunday, year int) ([]time.Time, error) {
	if r.Inner == nil {
		return nil, fmt.Errorf("%w: empty fuzzy sunday rule", ErrUnknownRule)
	}
	inner, err := Dates(r.Inner, year)
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, 0, len(inner))
	for _, d := range inner {
		shifted, err := ToSunday(d)
		if err != nil {
			return nil, err
		}
		out = append(out, shifted)
	}
	return out, nil
}

// ToSunday moves a Monday back to the previous day and a Saturday forward
// to the next day. Other weekdays are returned unchanged.
func ToSunday(d time.Time) (time.Time, error) {
	var shift int
	switch d.Weekday() {
	case time.Monday:
		shift = -1
	case time.Saturday:
		shift = 1
	default:
		return d, nil
	}

	out, err := civil.ShiftDays(d, shift)
	if err != nil {
		if shift < 0 {
			return time.Time{}, fmt.Errorf("%w: no date before %s", ErrShiftOutOfRange, civil.Format(d))
		}
		return time.Time{}, fmt.Errorf("%w: no date after %s", ErrShiftOutOfRange, civil.Format(d))
	}
	return out, nil
}
