package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"calgen/internal/dsl"
	"calgen/internal/ics"
	appLog "calgen/internal/log"
	"calgen/internal/model"
)

// ImportCmd converts other formats into a calendar file.
type ImportCmd struct {
	Table   bool     `help:"Sources are tab-separated 'DD-Mon<TAB>title' tables (\"-\" reads stdin)."`
	Title   string   `help:"Write a [Title] group header before the table rows."`
	Out     string   `short:"O" help:"Write the calendar to this file instead of stdout." type:"path"`
	Sources []string `arg:"" help:"ICS files or http(s) URLs, or tables with --table."`
}

func (c *ImportCmd) Run(ctx *Context) error {
	w, err := ctx.create(c.Out)
	if err != nil {
		return err
	}
	if c.Table {
		err = c.importTables(ctx, w)
	} else {
		err = c.importICS(ctx, w)
	}
	if err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (c *ImportCmd) importTables(ctx *Context, w io.Writer) error {
	if c.Title != "" {
		if _, err := fmt.Fprintf(w, "[%s]\r\n", c.Title); err != nil {
			return err
		}
	}
	total := 0
	for _, src := range c.Sources {
		n, err := convertTableSource(ctx, src, w)
		if err != nil {
			return fmt.Errorf("%s: %w", src, err)
		}
		total += n
	}
	appLog.Info("tables converted", "sources", len(c.Sources), "events", total)
	return nil
}

func convertTableSource(ctx *Context, src string, w io.Writer) (int, error) {
	if src == "-" {
		return dsl.ConvertTable(ctx.Stdin, w)
	}
	f, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return dsl.ConvertTable(f, w)
}

func (c *ImportCmd) importICS(ctx *Context, w io.Writer) error {
	sources := make([]ics.Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		sources = append(sources, ics.SourceFor(s))
	}

	fetcher := ics.NewFetcher(ctx.Config.CacheDir)
	results, fetchErrs := fetcher.FetchAll(ctx.Ctx, sources)
	if len(results) == 0 {
		return errors.Join(append([]error{errors.New("no source could be read")}, fetchErrs...)...)
	}

	events := make([]ics.ParsedEvent, 0)
	for _, res := range results {
		parsed, err := ics.Parse(res.Source, res.Body)
		if err != nil {
			appLog.Error("ics parse failed", err, "id", res.Source.ID)
			continue
		}
		events = append(events, parsed...)
	}

	groups, convErrs := ics.ToGroups(events, ctx.Year)
	for _, err := range convErrs {
		appLog.Warn("event not imported", "err", err)
	}
	if len(groups) == 0 {
		return errors.New("no events imported")
	}

	if err := dsl.Format(w, groups); err != nil {
		return err
	}
	appLog.Info("ics imported",
		"sources", len(results),
		"groups", len(groups),
		"events", countEvents(groups),
		"failed", len(convErrs)+len(fetchErrs),
	)
	return nil
}

func countEvents(groups []model.EventGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Events)
	}
	return n
}
