// Package easter computes the date of Gregorian Easter Sunday.
package easter

import (
	"errors"
	"fmt"
	"time"

	"calgen/internal/civil"
)

// ErrUnsupportedYear is returned for years the Gregorian computus does not cover.
var ErrUnsupportedYear = errors.New("year outside the Gregorian calendar")

// FirstYear is the first full year of the Gregorian calendar.
const FirstYear = 1583

// Sunday returns Easter Sunday of year using the anonymous Gregorian
// algorithm (Meeus/Jones/Butcher).
func Sunday(year int) (time.Time, error) {
	if year < FirstYear || year > civil.MaxYear {
		return time.Time{}, fmt.Errorf("%w: %d", ErrUnsupportedYear, year)
	}

	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return civil.Date(year, time.Month(month), day), nil
}
