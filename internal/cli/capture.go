package cli

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"calgen/internal/capture"
	appLog "calgen/internal/log"
	"calgen/internal/web"
)

// CaptureCmd prints the calendar to PDF or PNG through headless Chromium.
type CaptureCmd struct {
	Out    string `short:"O" required:"" help:"Output file; .png selects a screenshot unless --format is given." type:"path"`
	Format string `help:"pdf or png; defaults to the output file extension."`
}

func (c *CaptureCmd) format() string {
	if c.Format != "" {
		return strings.ToLower(c.Format)
	}
	if strings.EqualFold(filepath.Ext(c.Out), ".png") {
		return "png"
	}
	return "pdf"
}

func (c *CaptureCmd) Run(ctx *Context) error {
	if f := c.format(); f != "pdf" && f != "png" {
		return fmt.Errorf("unknown capture format %q (want pdf or png)", c.Format)
	}
	groups, err := ctx.LoadGroups()
	if err != nil {
		return err
	}
	// Fail here rather than capture the server's error page.
	if _, err := ctx.renderPage(groups); err != nil {
		return err
	}
	store, err := web.NewStore(ctx.Calendar, nil)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}

	srvCtx, stop := context.WithCancel(ctx.Ctx)
	done := make(chan error, 1)
	go func() {
		done <- web.NewServer(ctx.ServerConfig(), store, nil).Serve(srvCtx, ln)
	}()
	defer func() {
		stop()
		if err := <-done; err != nil {
			appLog.Error("capture server shutdown failed", err)
		}
	}()

	opts := capture.Options{
		URL:     pageURL(web.URL(ln), ctx),
		Width:   ctx.Config.Capture.Width,
		Height:  ctx.Config.Capture.Height,
		Timeout: time.Duration(ctx.Config.Capture.TimeoutSeconds) * time.Second,
	}

	var data []byte
	switch c.format() {
	case "png":
		data, err = capture.ScreenshotPNG(ctx.Ctx, opts)
	default:
		data, err = capture.PrintPDF(ctx.Ctx, opts)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Out, data, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write %s: %w", c.Out, err)
	}
	appLog.Info("calendar captured", "file", c.Out, "format", c.format(), "bytes", len(data))
	return nil
}

// pageURL adds the effective settings to the calendar URL.
func pageURL(base string, ctx *Context) string {
	q := url.Values{}
	q.Set("year", strconv.Itoa(ctx.Year))
	q.Set("output", string(ctx.Output))
	q.Set("on_error", string(ctx.Policy))
	for _, g := range ctx.Groups {
		q.Add("group", g)
	}
	return base + "?" + q.Encode()
}
