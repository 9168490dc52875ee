package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"calgen/internal/civil"
	appLog "calgen/internal/log"
	"calgen/internal/model"
)

// PickCmd chooses year, layout and groups interactively and saves the
// choice as the new config defaults.
type PickCmd struct{}

// pickState backs the form fields.
type pickState struct {
	Year   string
	Output model.Output
	Groups []string
}

func newPickState(ctx *Context, groups []model.EventGroup) (*pickState, error) {
	sel, err := model.SelectTitles(groups, ctx.Groups)
	if err != nil {
		return nil, err
	}
	return &pickState{
		Year:   strconv.Itoa(ctx.Year),
		Output: ctx.Output,
		Groups: sel.Titles(groups),
	}, nil
}

func validateYear(s string) error {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a year such as 2025")
	}
	if y < civil.MinYear || y > civil.MaxYear {
		return fmt.Errorf("year must be between %d and %d", civil.MinYear, civil.MaxYear)
	}
	return nil
}

func pickForm(st *pickState, groups []model.EventGroup) *huh.Form {
	outputs := make([]huh.Option[model.Output], 0, len(model.Outputs))
	for _, o := range model.Outputs {
		outputs = append(outputs, huh.NewOption(o.Label(), o))
	}

	selected := make(map[string]bool, len(st.Groups))
	for _, t := range st.Groups {
		selected[t] = true
	}
	groupOpts := make([]huh.Option[string], 0, len(groups))
	for _, g := range groups {
		groupOpts = append(groupOpts, huh.NewOption(g.Title, g.Title).Selected(selected[g.Title]))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Year").
				Value(&st.Year).
				Validate(validateYear),
			huh.NewSelect[model.Output]().
				Title("Layout").
				Options(outputs...).
				Value(&st.Output),
			huh.NewMultiSelect[string]().
				Title("Event groups").
				Options(groupOpts...).
				Value(&st.Groups),
		),
	).WithTheme(huh.ThemeDracula())
}

// apply stores the picked values in the context's config. Selecting every
// group is saved as an empty list so groups added later are included.
func (st *pickState) apply(ctx *Context, groups []model.EventGroup) error {
	if err := validateYear(st.Year); err != nil {
		return err
	}
	year, _ := strconv.Atoi(strings.TrimSpace(st.Year))
	if len(st.Groups) == 0 {
		return errors.New("select at least one event group")
	}

	titles := st.Groups
	if len(titles) == len(groups) {
		titles = []string{}
	}

	cfg := ctx.Config
	cfg.Year = year
	cfg.Output = string(st.Output)
	cfg.Groups = titles
	if err := cfg.Save(ctx.ConfigPath); err != nil {
		return err
	}

	ctx.Year, ctx.Output, ctx.Groups = year, st.Output, titles
	return nil
}

func (c *PickCmd) Run(ctx *Context) error {
	groups, err := ctx.LoadGroups()
	if err != nil {
		return err
	}
	st, err := newPickState(ctx, groups)
	if err != nil {
		return err
	}
	if err := pickForm(st, groups).RunWithContext(ctx.Ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}
	if err := st.apply(ctx, groups); err != nil {
		return err
	}
	appLog.Info("defaults saved", "config", ctx.ConfigPath, "year", ctx.Year, "output", ctx.Output, "groups", ctx.Groups)
	return nil
}
