package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"calgen/internal/model"
	"calgen/internal/recurrence"
)

var groupColors = []color.Attribute{
	color.FgCyan,
	color.FgGreen,
	color.FgMagenta,
	color.FgYellow,
	color.FgBlue,
}

// ListCmd prints the resolved events of the year as a table.
type ListCmd struct{}

func (c *ListCmd) Run(ctx *Context) error {
	groups, err := ctx.LoadGroups()
	if err != nil {
		return err
	}
	req, err := ctx.Request(groups)
	if err != nil {
		return err
	}
	res, err := recurrence.Collect(groups, req.Selection, req.Year, req.Policy)
	if err != nil {
		return err
	}

	titles := make(map[model.GroupID]string, len(groups))
	for _, g := range groups {
		titles[g.ID] = g.Title
	}

	bold := color.New(color.Bold).SprintFunc()
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("DATE"), bold("DAY"), bold("GROUP"), bold("EVENT"))
	for _, ev := range res.Events {
		tbl.AddRow(
			ev.Date.Format("2006-01-02"),
			model.ShortWeekday(ev.Date.Weekday()),
			groupColor(ev.Group).Sprint(titles[ev.Group]),
			ev.Title,
		)
	}
	_, _ = fmt.Fprintln(ctx.Stdout, tbl)

	if len(res.Skipped) > 0 {
		red := color.New(color.FgRed)
		_, _ = fmt.Fprintln(ctx.Stdout)
		_, _ = red.Fprintf(ctx.Stdout, "%d events skipped:\n", len(res.Skipped))
		for _, f := range res.Skipped {
			_, _ = fmt.Fprintf(ctx.Stdout, "  %s\n", f.Error())
		}
	}
	return nil
}

func groupColor(id model.GroupID) *color.Color {
	n, ok := id.Ordinal()
	if !ok {
		return color.New(color.Reset)
	}
	return color.New(groupColors[n%len(groupColors)])
}
