package cli

import (
	"fmt"

	"github.com/fatih/color"

	"calgen/internal/recurrence"
)

// CheckCmd validates the calendar file and resolves every group for the
// year, reporting all failures instead of stopping at the first.
type CheckCmd struct{}

func (c *CheckCmd) Run(ctx *Context) error {
	groups, err := ctx.LoadGroups()
	if err != nil {
		return err
	}
	req, err := ctx.Request(groups)
	if err != nil {
		return err
	}

	res, err := recurrence.Collect(groups, req.Selection, req.Year, recurrence.PolicySkip)
	if err != nil {
		return err
	}

	if len(res.Skipped) == 0 {
		_, _ = color.New(color.FgGreen).Fprintf(ctx.Stdout, "%s: %d groups, %d events in %d\n",
			ctx.Calendar, len(groups), len(res.Events), req.Year)
		return nil
	}

	red := color.New(color.FgRed)
	for _, f := range res.Skipped {
		_, _ = red.Fprintf(ctx.Stdout, "%s\n", f.Error())
	}
	total := 0
	for _, g := range groups {
		if req.Selection.Selected(g.ID) {
			total += len(g.Events)
		}
	}
	return fmt.Errorf("%d of %d events failed to resolve for %d", len(res.Skipped), total, req.Year)
}
