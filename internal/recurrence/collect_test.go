package recurrence

import (
	"errors"
	"testing"
	"time"

	"calgen/internal/dsl"
	"calgen/internal/model"
)

const scenario = `
[Holidays]
25 dec Christmas
1 mon/jan New Year Bank Holiday

[Broken]
30 feb Not a day
1 mar Spring

[Unselected]
26 dec Boxing Day
`

func parseScenario(t *testing.T) []model.EventGroup {
	t.Helper()
	groups, err := dsl.ParseString(scenario)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return groups
}

func TestCollectScenario2024(t *testing.T) {
	groups := parseScenario(t)
	sel := model.Selection{}
	sel.Set(groups[0].ID, true)

	res, err := Collect(groups, sel, 2024, PolicyAbort)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	christmas := res.Days[model.DayKey{Month: time.December, Day: 25}]
	if len(christmas) != 1 || christmas[0].Title != "Christmas" || christmas[0].Group != groups[0].ID {
		t.Errorf("Dec 25 = %+v", christmas)
	}
	newYear := res.Days[model.DayKey{Month: time.January, Day: 1}]
	if len(newYear) != 1 || newYear[0].Title != "New Year Bank Holiday" {
		t.Errorf("Jan 1 = %+v", newYear)
	}
	if _, ok := res.Days[model.DayKey{Month: time.December, Day: 26}]; ok {
		t.Error("unselected group contributed events")
	}
	if len(res.Events) != 2 {
		t.Errorf("got %d events, want 2", len(res.Events))
	}
}

func TestCollectAbortPolicy(t *testing.T) {
	groups := parseScenario(t)

	_, err := Collect(groups, model.SelectAll(groups), 2024, PolicyAbort)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}
	if want := "Broken: Not a day: invalid date 2024/February/30"; err.Error() != want {
		t.Errorf("err = %q, want %q", err.Error(), want)
	}
}

func TestCollectSkipPolicy(t *testing.T) {
	groups := parseScenario(t)

	res, err := Collect(groups, model.SelectAll(groups), 2024, PolicySkip)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("skipped = %+v, want one failure", res.Skipped)
	}
	f := res.Skipped[0]
	if f.Group != "Broken" || f.Event != "Not a day" || f.Rule != "30 feb" || !errors.Is(f.Err, ErrInvalidDate) {
		t.Errorf("failure = %+v", f)
	}
	// Siblings of the failing event still resolve.
	if evs := res.Days[model.DayKey{Month: time.March, Day: 1}]; len(evs) != 1 || evs[0].Title != "Spring" {
		t.Errorf("Mar 1 = %+v", evs)
	}
	if len(res.Events) != 4 {
		t.Errorf("got %d events, want 4", len(res.Events))
	}
}

func TestCollectKeepsOrderOnSharedDay(t *testing.T) {
	groups, err := dsl.ParseString("[A]\n25 dec First\n[B]\n-1 wed/dec Second\n[C]\n25 december Third\n")
	if err != nil {
		t.Fatal(err)
	}
	res, err := Collect(groups, model.SelectAll(groups), 2024, PolicyAbort)
	if err != nil {
		t.Fatal(err)
	}
	evs := res.Days[model.DayKey{Month: time.December, Day: 25}]
	if len(evs) != 3 {
		t.Fatalf("Dec 25 = %+v", evs)
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if evs[i].Title != want || evs[i].Group != model.Group(i) {
			t.Errorf("evs[%d] = %+v, want %s in group %d", i, evs[i], want, i)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": PolicyAbort, "abort": PolicyAbort, "SKIP": PolicySkip} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("retry"); err == nil {
		t.Error("ParsePolicy(retry): expected error")
	}
}
