// Package cli implements the calgen commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"calgen/internal/config"
	"calgen/internal/dsl"
	appLog "calgen/internal/log"
	"calgen/internal/model"
	"calgen/internal/recurrence"
	"calgen/internal/render"
)

// ErrNoCalendar is returned when neither --calendar nor the config names a
// calendar file.
var ErrNoCalendar = errors.New("no calendar file: pass --calendar or set calendar_file in the config")

// Globals are the flags shared by every command.
type Globals struct {
	Config   string   `help:"Config file path." type:"path" env:"CALGEN_CONFIG"`
	Calendar string   `short:"c" help:"Calendar file (defaults to the last one used)." type:"path"`
	Year     int      `short:"y" help:"Year to render (defaults to the config, then the current year)."`
	Output   string   `short:"o" help:"Layout: monthly, yearly, half-year or diary."`
	Group    []string `short:"g" help:"Event group to include; repeat for more. Defaults to all."`
	OnError  string   `name:"on-error" help:"What to do with events that fail to resolve: abort or skip."`
	Debug    bool     `help:"Enable debug logging."`
}

// Context carries the resolved settings into every command.
type Context struct {
	Ctx        context.Context
	Config     *config.Config
	ConfigPath string

	// Calendar is the calendar file in use; it may be empty for commands
	// that do not need one.
	Calendar string
	// explicitCalendar is set when Calendar came from the command line.
	explicitCalendar bool

	Year   int
	Output model.Output
	Groups []string
	Policy recurrence.Policy

	Stdout io.Writer
	Stdin  io.Reader
}

// Context loads the config, initialises logging and merges the flags over
// the config values.
func (g *Globals) Context(ctx context.Context, now time.Time) (*Context, error) {
	path := g.Config
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := appLog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	if g.Debug {
		level = appLog.LevelDebug
	}
	if err := appLog.Init(appLog.Options{Level: level, File: cfg.Log.File, JSON: cfg.Log.JSON}); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	return g.apply(ctx, cfg, path, now)
}

func (g *Globals) apply(ctx context.Context, cfg *config.Config, path string, now time.Time) (*Context, error) {
	c := &Context{
		Ctx:        ctx,
		Config:     cfg,
		ConfigPath: path,
		Calendar:   cfg.CalendarFile,
		Year:       cfg.EffectiveYear(now),
		Groups:     cfg.Groups,
		Stdout:     os.Stdout,
		Stdin:      os.Stdin,
	}
	if g.Calendar != "" {
		c.Calendar = g.Calendar
		c.explicitCalendar = true
	}
	if g.Year != 0 {
		c.Year = g.Year
	}
	if len(g.Group) > 0 {
		c.Groups = g.Group
	}

	outName := cfg.Output
	if g.Output != "" {
		outName = g.Output
	}
	out, err := model.ParseOutput(outName)
	if err != nil {
		return nil, err
	}
	c.Output = out

	policyName := cfg.OnError
	if g.OnError != "" {
		policyName = g.OnError
	}
	policy, err := recurrence.ParsePolicy(policyName)
	if err != nil {
		return nil, err
	}
	c.Policy = policy

	appLog.Debug("effective settings",
		"config", path,
		"calendar", c.Calendar,
		"year", c.Year,
		"output", c.Output,
		"groups", c.Groups,
		"on_error", c.Policy,
	)
	return c, nil
}

// LoadGroups parses the calendar file. A calendar named on the command
// line is remembered in the config for the next run.
func (c *Context) LoadGroups() ([]model.EventGroup, error) {
	if c.Calendar == "" {
		return nil, ErrNoCalendar
	}
	groups, err := dsl.ParseFile(c.Calendar)
	if err != nil {
		return nil, err
	}
	if c.explicitCalendar {
		if err := c.Config.RememberCalendarFile(c.ConfigPath, c.Calendar); err != nil {
			appLog.Warn("could not remember calendar file", "path", c.Calendar, "err", err)
		}
	}
	return groups, nil
}

// Request builds the render request for groups from the effective settings.
func (c *Context) Request(groups []model.EventGroup) (render.Request, error) {
	sel, err := model.SelectTitles(groups, c.Groups)
	if err != nil {
		return render.Request{}, err
	}
	return render.Request{Year: c.Year, Output: c.Output, Selection: sel, Policy: c.Policy}, nil
}

// ServerConfig returns a copy of the config whose defaults follow the
// effective settings, for the commands that start the HTTP server.
func (c *Context) ServerConfig() *config.Config {
	cfg := *c.Config
	cfg.Year = c.Year
	cfg.Output = string(c.Output)
	cfg.Groups = append([]string(nil), c.Groups...)
	cfg.OnError = string(c.Policy)
	return &cfg
}

// create opens path for writing, or returns Stdout for "" and "-".
func (c *Context) create(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{c.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func reportSkipped(res *recurrence.Result) {
	for _, f := range res.Skipped {
		appLog.Warn("event skipped", "group", f.Group, "event", f.Event, "rule", f.Rule, "err", f.Err)
	}
}
