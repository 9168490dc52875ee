package ics

import (
	"fmt"
	"math"
	"time"

	"github.com/teambition/rrule-go"

	"calgen/internal/civil"
	"calgen/internal/model"
)

// maxExpanded caps the dates produced for one event by the fallback
// expansion; a daily rule fills a year with 366.
const maxExpanded = 366

// RuleFor maps an imported event onto recurrence rules. RRULEs with an
// equivalent rule (yearly dates, nth weekdays, Easter offsets) map to a
// single rule; anything else is expanded for year into fixed dates.
func RuleFor(ev ParsedEvent, year int) ([]model.Recurrence, error) {
	if ev.Start.IsZero() {
		return nil, fmt.Errorf("%s: missing start date", ev.Summary)
	}
	if ev.RawRRule == "" {
		return []model.Recurrence{model.FixedDate{Month: ev.Start.Month(), Day: ev.Start.Day()}}, nil
	}

	opt, err := rrule.StrToROption(ev.RawRRule)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid RRULE %q: %w", ev.Summary, ev.RawRRule, err)
	}
	if r, ok := direct(opt, ev.Start); ok {
		return []model.Recurrence{r}, nil
	}
	return expand(opt, ev, year)
}

// direct recognises the RRULE shapes with an exact recurrence equivalent.
// Bounded rules (COUNT, UNTIL) and intervals are left to expand.
func direct(opt *rrule.ROption, start time.Time) (model.Recurrence, bool) {
	if opt.Count != 0 || !opt.Until.IsZero() || opt.Interval > 1 {
		return nil, false
	}
	if len(opt.Byyearday) > 0 || len(opt.Byweekno) > 0 ||
		len(opt.Byhour) > 0 || len(opt.Byminute) > 0 || len(opt.Bysecond) > 0 {
		return nil, false
	}

	switch opt.Freq {
	case rrule.YEARLY:
		if len(opt.Byeaster) > 0 {
			if len(opt.Byeaster) != 1 || len(opt.Bymonth) > 0 || len(opt.Bymonthday) > 0 ||
				len(opt.Byweekday) > 0 || len(opt.Bysetpos) > 0 {
				return nil, false
			}
			off := opt.Byeaster[0]
			if off < math.MinInt16 || off > math.MaxInt16 {
				return nil, false
			}
			return model.DaysAfterEaster{Offset: int16(off)}, true
		}

		if len(opt.Byweekday) == 0 && len(opt.Bysetpos) == 0 {
			month, day := start.Month(), start.Day()
			switch len(opt.Bymonth) {
			case 0:
			case 1:
				month = time.Month(opt.Bymonth[0])
			default:
				return nil, false
			}
			switch len(opt.Bymonthday) {
			case 0:
			case 1:
				day = opt.Bymonthday[0]
			default:
				return nil, false
			}
			if day < 1 || !civil.Valid(2000, month, day) {
				return nil, false
			}
			return model.FixedDate{Month: month, Day: day}, true
		}

		if len(opt.Bymonth) != 1 || len(opt.Bymonthday) > 0 {
			return nil, false
		}
		n, wd, ok := nthWeekday(opt)
		if !ok {
			return nil, false
		}
		return model.NthWeekdayOfMonth{N: n, Weekday: wd, Month: model.MonthPtr(time.Month(opt.Bymonth[0]))}, true

	case rrule.MONTHLY:
		if len(opt.Bymonth) > 0 || len(opt.Bymonthday) > 0 {
			return nil, false
		}
		n, wd, ok := nthWeekday(opt)
		if !ok {
			return nil, false
		}
		return model.NthWeekdayOfMonth{N: n, Weekday: wd}, true
	}
	return nil, false
}

// nthWeekday reads BYDAY=2MO, or BYDAY=MO;BYSETPOS=2 as some clients
// write it.
func nthWeekday(opt *rrule.ROption) (int16, time.Weekday, bool) {
	if len(opt.Byweekday) != 1 {
		return 0, 0, false
	}
	wd := opt.Byweekday[0]
	n := wd.N()
	switch {
	case n != 0 && len(opt.Bysetpos) == 0:
	case n == 0 && len(opt.Bysetpos) == 1:
		n = opt.Bysetpos[0]
	default:
		return 0, 0, false
	}
	if n == 0 || n < -5 || n > 5 {
		return 0, 0, false
	}
	return int16(n), weekday(wd), true
}

// weekday converts rrule's Monday-first index to time.Weekday.
func weekday(wd rrule.Weekday) time.Weekday {
	return time.Weekday((wd.Day() + 1) % 7)
}

func expand(opt *rrule.ROption, ev ParsedEvent, year int) ([]model.Recurrence, error) {
	opt.Dtstart = ev.Start
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid RRULE %q: %w", ev.Summary, ev.RawRRule, err)
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	seen := make(map[model.DayKey]bool)
	out := make([]model.Recurrence, 0)
	for _, t := range r.Between(from, to, true) {
		if t.Year() != year {
			continue
		}
		k := model.Key(t)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, model.FixedDate{Month: k.Month, Day: k.Day})
		if len(out) == maxExpanded {
			break
		}
	}
	return out, nil
}
