package cli

import (
	"fmt"

	"calgen/internal/ics"
	appLog "calgen/internal/log"
	"calgen/internal/recurrence"
)

// ExportCmd writes the resolved year as an iCalendar file.
type ExportCmd struct {
	Out  string `short:"O" help:"Write the .ics to this file instead of stdout." type:"path"`
	Name string `help:"Calendar name (X-WR-CALNAME)."`
}

func (c *ExportCmd) Run(ctx *Context) error {
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
	reportSkipped(res)

	name := c.Name
	if name == "" {
		name = fmt.Sprintf("Calendar %d", req.Year)
	}

	w, err := ctx.create(c.Out)
	if err != nil {
		return err
	}
	if err := ics.Export(w, groups, res, ics.ExportOptions{Name: name}); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	appLog.Info("calendar exported", "year", req.Year, "events", len(res.Events), "file", c.Out)
	return nil
}
