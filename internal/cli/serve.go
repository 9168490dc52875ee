package cli

import (
	"fmt"
	"net"

	appLog "calgen/internal/log"
	"calgen/internal/metric"
	"calgen/internal/web"
)

// ServeCmd runs the calendar server until interrupted.
type ServeCmd struct {
	Listen string `short:"l" help:"Listen address (overrides the config)."`
}

func (c *ServeCmd) Run(ctx *Context) error {
	// Parse once up front so a bad file fails fast and gets remembered.
	if _, err := ctx.LoadGroups(); err != nil {
		return err
	}

	m := metric.New()
	store, err := web.NewStore(ctx.Calendar, m)
	if err != nil {
		return err
	}
	job, err := store.Watch(ctx.Config.ReloadCron)
	if err != nil {
		return err
	}
	defer job.Stop()

	addr := ctx.Config.Listen
	if c.Listen != "" {
		addr = c.Listen
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := web.NewServer(ctx.ServerConfig(), store, m)
	_, _ = fmt.Fprintln(ctx.Stdout, web.URL(ln))
	return srv.Serve(ctx.Ctx, ln)
}

// OpenCmd renders the calendar, serves it once on a local port and opens
// it in the browser. The server exits after the page has been delivered.
type OpenCmd struct {
	NoBrowser bool `name:"no-browser" help:"Only print the URL."`
}

func (c *OpenCmd) Run(ctx *Context) error {
	groups, err := ctx.LoadGroups()
	if err != nil {
		return err
	}
	page, err := ctx.renderPage(groups)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", ctx.Config.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", ctx.Config.Listen, err)
	}

	return web.ServeOnce(ctx.Ctx, ln, page, func(url string) error {
		_, _ = fmt.Fprintln(ctx.Stdout, url)
		if c.NoBrowser {
			return nil
		}
		if err := openBrowser(url); err != nil {
			appLog.Warn("could not open a browser; open the URL manually", "url", url, "err", err)
		}
		return nil
	})
}
