// Package render turns a built grid into a printable HTML page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"calgen/internal/civil"
	"calgen/internal/grid"
	"calgen/internal/model"
	"calgen/internal/recurrence"
)

//go:embed templates
var templateFS embed.FS

var funcs = template.FuncMap{
	"weekend": civil.IsWeekend,
	"short": func(wd time.Weekday) string {
		return wd.String()[:3]
	},
}

var (
	templates = template.Must(template.New("calendar").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	baseCSS   = mustReadCSS("templates/calendar.css")
)

func mustReadCSS(name string) template.CSS {
	data, err := templateFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return template.CSS(data)
}

// Page is the data handed to the templates.
type Page struct {
	Title  string
	Styles []model.GroupStyle
	Layout *grid.Layout
}

// BaseCSS returns the built-in calendar stylesheet.
func (p Page) BaseCSS() template.CSS {
	return baseCSS
}

// StyleSheets returns one ".eventgroupN { ... }" rule per styled group.
func (p Page) StyleSheets() []template.CSS {
	out := make([]template.CSS, 0, len(p.Styles))
	for _, s := range p.Styles {
		// Group styles come from the calendar file; keep them inside the
		// <style> element.
		style := strings.ReplaceAll(s.Style, "<", `\3C `)
		out = append(out, template.CSS(fmt.Sprintf(".%s { %s }", s.Class(), style)))
	}
	return out
}

func templateName(o model.Output) (string, error) {
	switch o {
	case model.OutputMonthly:
		return "monthly.html", nil
	case model.OutputYearly, model.OutputHalfYear:
		return "yearly.html", nil
	case model.OutputDiary:
		return "diary.html", nil
	default:
		return "", fmt.Errorf("no template for output %q", o)
	}
}

// Render writes p as a complete HTML document.
func Render(w io.Writer, p Page) error {
	if p.Layout == nil {
		return fmt.Errorf("render: page has no layout")
	}
	name, err := templateName(p.Layout.Output)
	if err != nil {
		return err
	}
	if p.Title == "" {
		p.Title = fmt.Sprintf("Calendar %d", p.Layout.Year)
	}

	// Render into a buffer so a template error never leaves half a page.
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, p); err != nil {
		return fmt.Errorf("failed to render calendar: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// Request describes one calendar render.
type Request struct {
	Year      int
	Output    model.Output
	Selection model.Selection
	Policy    recurrence.Policy
}

// Generate resolves groups for req, builds the grid and returns the page
// ready for Render along with the resolution result.
func Generate(groups []model.EventGroup, req Request) (Page, *recurrence.Result, error) {
	res, err := recurrence.Collect(groups, req.Selection, req.Year, req.Policy)
	if err != nil {
		return Page{}, nil, err
	}

	// The grid consumes its map; keep the result's copy intact for callers.
	layout, err := grid.Build(req.Output, req.Year, res.Days.Clone())
	if err != nil {
		return Page{}, nil, err
	}

	return Page{
		Title:  fmt.Sprintf("%s %d", req.Output.Label(), req.Year),
		Styles: model.Styles(groups, req.Selection),
		Layout: layout,
	}, res, nil
}
