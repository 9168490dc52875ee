package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"calgen/internal/dsl"
	"calgen/internal/model"
	"calgen/internal/recurrence"
)

const doc = `
[Holidays: color: red]
25 dec Christmas
1 mon/jan New Year Bank Holiday

[Birthdays]
14 feb <Valentine>

[Church: font-style: italic</style><script>]
0 easter Easter
`

func generate(t *testing.T, output model.Output) (string, *recurrence.Result) {
	t.Helper()
	groups, err := dsl.ParseString(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	page, res, err := Generate(groups, Request{
		Year:      2024,
		Output:    output,
		Selection: model.SelectAll(groups),
		Policy:    recurrence.PolicyAbort,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, page); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String(), res
}

func TestRenderOutputs(t *testing.T) {
	tests := []struct {
		output model.Output
		want   []string
	}{
		{model.OutputMonthly, []string{`<body class="monthly">`, "December 2024", `class="cell monthyear"`}},
		{model.OutputYearly, []string{`<body class="fullyear">`, "<h1>Year 2024</h1>", `class="shadedBackground"`}},
		{model.OutputHalfYear, []string{`<body class="halfyear">`, "<h1>Half-Year 2024</h1>"}},
		{model.OutputDiary, []string{`<body class="diary">`, "<h2>February 2024</h2>", `class="diarypage"`}},
	}

	for _, tt := range tests {
		t.Run(string(tt.output), func(t *testing.T) {
			out, _ := generate(t, tt.output)
			common := []string{
				"<!DOCTYPE html>",
				".eventgroup0 {  color: red }",
				`<div class="event eventgroup0">Christmas</div>`,
				`<div class="event eventgroup2">Easter</div>`,
				`<span class="daynum">25</span>`,
				"&lt;Valentine&gt;",
			}
			for _, want := range append(common, tt.want...) {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q", want)
				}
			}
		})
	}
}

func TestRenderHalfYearHasTwoPages(t *testing.T) {
	out, _ := generate(t, model.OutputHalfYear)
	if n := strings.Count(out, `<section class="page">`); n != 2 {
		t.Errorf("got %d pages, want 2", n)
	}
	if n := strings.Count(out, "<th>January</th>"); n != 1 {
		t.Errorf("January header appears %d times", n)
	}
	if n := strings.Count(out, "<th>July</th>"); n != 1 {
		t.Errorf("July header appears %d times", n)
	}
}

func TestRenderKeepsStyleInsideStyleElement(t *testing.T) {
	out, _ := generate(t, model.OutputMonthly)
	if strings.Contains(out, "</style><script>") {
		t.Error("group style escaped its <style> element")
	}
	if !strings.Contains(out, ".eventgroup2 {") {
		t.Error("missing style rule for group 2")
	}
}

func TestGenerateOnlySelectedStyles(t *testing.T) {
	groups, err := dsl.ParseString(doc)
	if err != nil {
		t.Fatal(err)
	}
	sel := model.Selection{}
	sel.Set(groups[1].ID, true)

	page, res, err := Generate(groups, Request{Year: 2024, Output: model.OutputMonthly, Selection: sel})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(page.Styles) != 0 {
		t.Errorf("styles = %+v, want none", page.Styles)
	}
	if len(res.Events) != 1 || res.Days.Len() != 1 {
		t.Errorf("result = %d events, %d days", len(res.Events), res.Days.Len())
	}
	if page.Title != "Monthly Calendar 2024" {
		t.Errorf("title = %q", page.Title)
	}
}

func TestGeneratePropagatesResolveErrors(t *testing.T) {
	groups, err := dsl.ParseString("[Bad]\n30 feb Nope\n")
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = Generate(groups, Request{Year: 2024, Output: model.OutputDiary, Selection: model.SelectAll(groups)})
	if !errors.Is(err, recurrence.ErrInvalidDate) {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}
}

func TestRenderWithoutLayout(t *testing.T) {
	if err := Render(&bytes.Buffer{}, Page{}); err == nil {
		t.Error("expected error for page without layout")
	}
}
