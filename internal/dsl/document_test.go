package dsl

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"calgen/internal/model"
)

const sampleDocument = `
[Holidays: color: red]
25 dec Christmas
1 mon/jan New Year Bank Holiday

   [ Church ]
ho repl -46 easter Ash Wednesday
0 easter Easter Sunday

[Birthdays:]
`

func TestParse(t *testing.T) {
	groups, err := ParseString(sampleDocument)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}

	tests := []struct {
		title  string
		style  string
		events int
	}{
		{"Holidays", " color: red", 2},
		{"Church", "", 2},
		{"Birthdays", "", 0},
	}
	for i, tt := range tests {
		g := groups[i]
		if g.ID != model.Group(i) {
			t.Errorf("group %d id = %v", i, g.ID)
		}
		if g.Title != tt.title {
			t.Errorf("group %d title = %q, want %q", i, g.Title, tt.title)
		}
		if g.Style != tt.style {
			t.Errorf("group %d style = %q, want %q", i, g.Style, tt.style)
		}
		if len(g.Events) != tt.events {
			t.Errorf("group %d has %d events, want %d", i, len(g.Events), tt.events)
		}
		for _, ev := range g.Events {
			if ev.Group != g.ID {
				t.Errorf("event %q group = %v, want %v", ev.Title, ev.Group, g.ID)
			}
		}
	}

	want := model.FuzzySunday{Inner: model.DaysAfterEaster{Offset: -46}}
	if !reflect.DeepEqual(groups[1].Events[0].Rule, want) {
		t.Errorf("Ash Wednesday rule = %#v", groups[1].Events[0].Rule)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		line int
		want error
	}{
		{
			name: "event before first group",
			doc:  "\n25 dec Christmas\n[Holidays]\n",
			line: 2,
			want: ErrMissingGroup,
		},
		{
			name: "unterminated header",
			doc:  "[Holidays\n25 dec Christmas\n",
			line: 1,
			want: ErrUnterminatedHeader,
		},
		{
			name: "grammar error carries line number",
			doc:  "[Holidays]\n25 dec Christmas\n\n31 nowhere Oops\n",
			line: 4,
			want: ErrInvalidEvent,
		},
		{
			name: "bad index",
			doc:  "[Holidays]\nlast fri Oops\n",
			line: 2,
			want: ErrInvalidIndex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.doc)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("err %T is not a *ParseError", err)
			}
			if pe.Line != tt.line {
				t.Errorf("line = %d, want %d", pe.Line, tt.line)
			}
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := ParseString("[Holidays\n")
	if err == nil {
		t.Fatal("expected error")
	}
	want := "error on line 1: event group titles must end with a ']'"
	if err.Error() != want {
		t.Errorf("err = %q, want %q", err.Error(), want)
	}
}

func TestParseCRLF(t *testing.T) {
	groups, err := ParseString("[Holidays]\r\n25 dec Christmas\r\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := groups[0].Events[0].Title; got != "Christmas" {
		t.Errorf("title = %q", got)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.txt")
	if err := os.WriteFile(path, []byte(sampleDocument), 0o600); err != nil {
		t.Fatal(err)
	}
	groups, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(groups) != 3 {
		t.Errorf("got %d groups", len(groups))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	groups, err := ParseString(sampleDocument + "\n[Misc]\n-1 fri/dec Last Friday\n2 tue Club\nho repl 5 sat Market\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var buf bytes.Buffer
	if err := Format(&buf, groups); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(buf.String(), "[Holidays: color: red]\n25 dec Christmas\n") {
		t.Errorf("unexpected formatted output:\n%s", buf.String())
	}

	again, err := ParseString(buf.String())
	if err != nil {
		t.Fatalf("re-parse: %v\n%s", err, buf.String())
	}
	if !reflect.DeepEqual(groups, again) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", again, groups)
	}
}

func TestConvertTable(t *testing.T) {
	in := strings.Join([]string{
		"01-Jan\tNew Year's Day",
		"",
		"10-Feb\t  Pancake Day  ",
		"15-Mar\t",
		"no tab here",
		"  07-Jul\tSeven",
	}, "\n")

	var out bytes.Buffer
	n, err := ConvertTable(strings.NewReader(in), &out)
	if err != nil {
		t.Fatalf("ConvertTable: %v", err)
	}
	if n != 3 {
		t.Errorf("wrote %d lines, want 3", n)
	}
	want := "1 Jan New Year's Day\r\n10 Feb Pancake Day\r\n7 Jul Seven\r\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}

	groups, err := ParseString("[Imported]\n" + out.String())
	if err != nil {
		t.Fatalf("converted table does not parse: %v", err)
	}
	if got := groups[0].Events[2].Rule; !reflect.DeepEqual(got, model.FixedDate{Month: time.July, Day: 7}) {
		t.Errorf("rule = %#v", got)
	}
}

func TestConvertTableMissingDash(t *testing.T) {
	_, err := ConvertTable(strings.NewReader("0101\tBroken\n"), &bytes.Buffer{})
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Line != 1 {
		t.Fatalf("err = %v, want *ParseError on line 1", err)
	}
}
