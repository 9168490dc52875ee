package cli

import (
	"bytes"
	"fmt"

	appLog "calgen/internal/log"
	"calgen/internal/model"
	"calgen/internal/render"
)

// RenderCmd writes the calendar as a standalone HTML page.
type RenderCmd struct {
	Out string `short:"O" help:"Write the page to this file instead of stdout." type:"path"`
}

func (c *RenderCmd) Run(ctx *Context) error {
	groups, err := ctx.LoadGroups()
	if err != nil {
		return err
	}
	page, err := ctx.renderPage(groups)
	if err != nil {
		return err
	}

	w, err := ctx.create(c.Out)
	if err != nil {
		return err
	}
	if _, err := w.Write(page); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("write %s: %w", c.Out, err)
	}
	appLog.Info("calendar written", "file", c.Out, "bytes", len(page))
	return nil
}

// renderPage resolves groups with the effective settings and renders the
// complete HTML page. Every resolution or selection error surfaces here,
// before anything is served or written.
func (c *Context) renderPage(groups []model.EventGroup) ([]byte, error) {
	req, err := c.Request(groups)
	if err != nil {
		return nil, err
	}
	page, res, err := render.Generate(groups, req)
	if err != nil {
		return nil, err
	}
	reportSkipped(res)

	var buf bytes.Buffer
	if err := render.Render(&buf, page); err != nil {
		return nil, err
	}
	appLog.Info("calendar rendered",
		"year", req.Year,
		"output", req.Output,
		"events", len(res.Events),
		"skipped", len(res.Skipped),
	)
	return buf.Bytes(), nil
}
