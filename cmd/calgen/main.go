package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"calgen/internal/cli"
	appLog "calgen/internal/log"
)

var version = "0.1.0-dev"

func init() {
	// .env is optional.
	_ = godotenv.Load()
}

var CLI struct {
	cli.Globals `embed:""`

	Version kong.VersionFlag `help:"Print the version and exit."`

	Render  cli.RenderCmd  `cmd:"" default:"1" help:"Render the calendar as HTML."`
	Open    cli.OpenCmd    `cmd:"" help:"Serve the calendar once and open it in the browser."`
	Serve   cli.ServeCmd   `cmd:"" help:"Run the calendar server."`
	List    cli.ListCmd    `cmd:"" help:"List the resolved events of the year."`
	Export  cli.ExportCmd  `cmd:"" help:"Export the resolved year as iCalendar."`
	Import  cli.ImportCmd  `cmd:"" help:"Convert ICS feeds or DD-Mon tables into a calendar file."`
	Capture cli.CaptureCmd `cmd:"" help:"Print the calendar to PDF or PNG with headless Chromium."`
	Pick    cli.PickCmd    `cmd:"" help:"Pick year, layout and groups interactively and save them."`
	Check   cli.CheckCmd   `cmd:"" help:"Validate the calendar file for the year."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("calgen"),
		kong.Description("Printable calendar generator driven by a plain-text event file"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx, err := CLI.Globals.Context(ctx, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	appCtx.Stdout = color.Output

	err = kctx.Run(appCtx)
	_ = appLog.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
