package model

import (
	"testing"
	"time"
)

func TestGroupIDString(t *testing.T) {
	if got := NoGroup.String(); got != "" {
		t.Errorf("NoGroup.String() = %q, want empty", got)
	}
	if got := Group(0).String(); got != "eventgroup0" {
		t.Errorf("Group(0).String() = %q", got)
	}
	if got := Group(12).String(); got != "eventgroup12" {
		t.Errorf("Group(12).String() = %q", got)
	}
	if Group(0) == NoGroup {
		t.Error("Group(0) must differ from NoGroup")
	}
	if n, ok := Group(3).Ordinal(); !ok || n != 3 {
		t.Errorf("Group(3).Ordinal() = %d, %v", n, ok)
	}
}

func TestRecurrenceString(t *testing.T) {
	tests := []struct {
		rule Recurrence
		want string
	}{
		{FixedDate{Month: time.December, Day: 25}, "25 dec"},
		{NthWeekdayOfMonth{N: 1, Weekday: time.Monday}, "1 mon"},
		{NthWeekdayOfMonth{N: -1, Weekday: time.Friday, Month: MonthPtr(time.December)}, "-1 fri/dec"},
		{DaysAfterEaster{Offset: -46}, "-46 easter"},
		{FuzzySunday{Inner: FuzzySunday{Inner: DaysAfterEaster{Offset: 1}}}, "ho repl ho repl 1 easter"},
	}

	for _, tt := range tests {
		if got := tt.rule.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func testGroups() []EventGroup {
	return []EventGroup{
		{ID: Group(0), Title: "Holidays", Style: "color: red"},
		{ID: Group(1), Title: "Birthdays"},
		{ID: Group(2), Title: "Church", Style: "font-style: italic"},
	}
}

func TestSelectTitles(t *testing.T) {
	groups := testGroups()

	sel, err := SelectTitles(groups, []string{"holidays", " Church "})
	if err != nil {
		t.Fatalf("SelectTitles: %v", err)
	}
	if !sel.Selected(Group(0)) || sel.Selected(Group(1)) || !sel.Selected(Group(2)) {
		t.Errorf("unexpected selection %v", sel)
	}

	all, err := SelectTitles(groups, nil)
	if err != nil {
		t.Fatalf("SelectTitles(nil): %v", err)
	}
	for _, g := range groups {
		if !all.Selected(g.ID) {
			t.Errorf("group %q not selected by empty title list", g.Title)
		}
	}

	if _, err := SelectTitles(groups, []string{"Nope"}); err == nil {
		t.Error("expected error for unknown group title")
	}
}

func TestSelectionSetAndTitles(t *testing.T) {
	groups := testGroups()
	sel := Selection{}
	sel.Set(Group(2), true)
	sel.Set(Group(0), true)
	sel.Set(Group(0), false)

	got := sel.Titles(groups)
	if len(got) != 1 || got[0] != "Church" {
		t.Errorf("Titles() = %v, want [Church]", got)
	}
}

func TestStyles(t *testing.T) {
	groups := testGroups()
	sel := SelectAll(groups)
	sel.Set(Group(2), false)

	styles := Styles(groups, sel)
	if len(styles) != 1 {
		t.Fatalf("Styles() len = %d, want 1", len(styles))
	}
	if styles[0].Class() != "eventgroup0" || styles[0].Style != "color: red" {
		t.Errorf("Styles()[0] = %+v", styles[0])
	}
}

func TestDayMapTake(t *testing.T) {
	m := DayMap{}
	d := time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC)
	m.Add(ResolvedEvent{Date: d, Title: "Christmas", Group: Group(0)})
	m.Add(ResolvedEvent{Date: d, Title: "Church", Group: Group(1)})

	clone := m.Clone()

	evs := m.Take(Key(d))
	if len(evs) != 2 || evs[0].Title != "Christmas" || evs[1].Title != "Church" {
		t.Fatalf("Take() = %+v", evs)
	}
	if m.Len() != 0 {
		t.Errorf("Len() after Take = %d, want 0", m.Len())
	}
	if again := m.Take(Key(d)); again != nil {
		t.Errorf("second Take() = %+v, want nil", again)
	}
	if clone.Len() != 1 {
		t.Errorf("clone consumed along with original")
	}
}

func TestParseOutput(t *testing.T) {
	tests := []struct {
		in      string
		want    Output
		wantErr bool
	}{
		{"monthly", OutputMonthly, false},
		{"Yearly", OutputYearly, false},
		{"half-year", OutputHalfYear, false},
		{"halfyear", OutputHalfYear, false},
		{" diary ", OutputDiary, false},
		{"weekly", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutput(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutput(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
