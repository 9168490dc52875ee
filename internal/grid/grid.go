// Package grid lays out one year of resolved events as printable cell
// grids: a monthly grid, a yearly grid (optionally split into two
// half-year pages) and diary pages.
//
// Builders consume the day map they are given: each day's events are
// taken out of the map by the one cell that shows them.
package grid

import (
	"fmt"
	"time"

	"calgen/internal/civil"
	appLog "calgen/internal/log"
	"calgen/internal/model"
)

const (
	// MonthlyCells is the number of day or filler cells in a monthly row,
	// enough for a 31-day month starting on a Sunday.
	MonthlyCells = 40
	// YearlyRows is the number of rows of every month column in the
	// yearly grid: six leading fillers plus 31 days.
	YearlyRows = 37
	// DiaryPageCells is the number of cells on one diary page.
	DiaryPageCells = 16
	// DiaryPagesPerMonth is the number of diary pages per month.
	DiaryPagesPerMonth = 2
	// DiaryRowPages is the number of month pages laid out side by side.
	DiaryRowPages = 8
)

type CellKind int

const (
	CellEmpty CellKind = iota
	CellDay
	CellMonthYear
)

// Cell is one unit of a calendar grid.
type Cell struct {
	Kind  CellKind
	Year  int
	Month time.Month
	// Day is set for CellDay.
	Day int
	// Weekday is set for day cells, and for every cell of the yearly grid.
	Weekday time.Weekday
	Events  []model.DayEvent
}

func (c Cell) IsEmpty() bool     { return c.Kind == CellEmpty }
func (c Cell) IsDay() bool       { return c.Kind == CellDay }
func (c Cell) IsMonthYear() bool { return c.Kind == CellMonthYear }

// DayLabel returns the zero-padded day of month.
func (c Cell) DayLabel() string {
	return fmt.Sprintf("%02d", c.Day)
}

// Weekend reports whether the cell's weekday is a Saturday or Sunday.
func (c Cell) Weekend() bool {
	return civil.IsWeekend(c.Weekday)
}

// WeekdayLabel returns the three-letter weekday name.
func (c Cell) WeekdayLabel() string {
	return c.Weekday.String()[:3]
}

// Label returns "January 2024" for month/year cells.
func (c Cell) Label() string {
	return fmt.Sprintf("%s %d", c.Month, c.Year)
}

func emptyCell() Cell {
	return Cell{Kind: CellEmpty}
}

func dayCell(year int, month time.Month, day int, days model.DayMap) Cell {
	return Cell{
		Kind:    CellDay,
		Year:    year,
		Month:   month,
		Day:     day,
		Weekday: civil.Weekday(year, month, day),
		Events:  days.Take(model.DayKey{Month: month, Day: day}),
	}
}

// leadingBlanks is the number of filler cells before day 1 in a grid whose
// columns start on Monday.
func leadingBlanks(year int, month time.Month) int {
	return civil.DaysFromMonday(civil.Weekday(year, month, 1))
}

// monthSequence returns the filler-then-days cells of month, padded with
// empty cells to exactly n.
func monthSequence(year int, month time.Month, days model.DayMap, n int) []Cell {
	cells := make([]Cell, 0, n)
	for i := 0; i < leadingBlanks(year, month) && len(cells) < n; i++ {
		cells = append(cells, emptyCell())
	}
	for d := 1; d <= civil.DaysInMonth(year, month) && len(cells) < n; d++ {
		cells = append(cells, dayCell(year, month, d, days))
	}
	for len(cells) < n {
		cells = append(cells, emptyCell())
	}
	return cells
}

// Monthly returns twelve rows, one per month. Each row holds MonthlyCells
// filler or day cells followed by a month/year label cell.
func Monthly(year int, days model.DayMap) [][]Cell {
	rows := make([][]Cell, 0, len(civil.Months))
	for _, month := range civil.Months {
		row := monthSequence(year, month, days, MonthlyCells)
		row = append(row, Cell{Kind: CellMonthYear, Year: year, Month: month})
		rows = append(rows, row)
	}
	return rows
}

// YearlyMonth is one month column of the yearly grid.
type YearlyMonth struct {
	Month time.Month
	Rows  []Cell
}

// YearlyPage is one printed page of the yearly grid.
type YearlyPage struct {
	Months []YearlyMonth
}

// YearlyCalendar is the yearly grid, on one page or split into two.
type YearlyCalendar struct {
	Title         string
	Year          int
	WeekdayTitles []time.Weekday
	Pages         []YearlyPage
}

// Body returns the CSS class of the page body.
func (y YearlyCalendar) Body() string {
	if len(y.Pages) > 1 {
		return "halfyear"
	}
	return "fullyear"
}

// Yearly lays every month out as a column of YearlyRows rows aligned by
// weekday. With split, months 1-6 and 7-12 go on separate pages.
func Yearly(year int, days model.DayMap, split bool) YearlyCalendar {
	weekdays := civil.Weekdays(time.Monday, YearlyRows)

	months := make([]YearlyMonth, 0, len(civil.Months))
	for _, month := range civil.Months {
		rows := monthSequence(year, month, days, YearlyRows)
		for i := range rows {
			rows[i].Weekday = weekdays[i]
		}
		months = append(months, YearlyMonth{Month: month, Rows: rows})
	}

	cal := YearlyCalendar{
		Title:         "Year",
		Year:          year,
		WeekdayTitles: weekdays,
	}
	if split {
		cal.Title = "Half-Year"
		cal.Pages = []YearlyPage{
			{Months: months[:6]},
			{Months: months[6:]},
		}
	} else {
		cal.Pages = []YearlyPage{{Months: months}}
	}
	return cal
}

// DiaryPage is one page of a month in the diary.
type DiaryPage struct {
	Month time.Month
	Cells []Cell
}

// Diary splits every month into DiaryPagesPerMonth pages of DiaryPageCells
// cells and groups the pages into rows of up to DiaryRowPages.
func Diary(year int, days model.DayMap) [][]DiaryPage {
	pages := make([]DiaryPage, 0, len(civil.Months)*DiaryPagesPerMonth)
	for _, month := range civil.Months {
		cells := make([]Cell, 0, DiaryPageCells*DiaryPagesPerMonth)
		for d := 1; d <= civil.DaysInMonth(year, month) && len(cells) < cap(cells); d++ {
			cells = append(cells, dayCell(year, month, d, days))
		}
		for len(cells) < cap(cells) {
			cells = append(cells, emptyCell())
		}
		for p := 0; p < DiaryPagesPerMonth; p++ {
			pages = append(pages, DiaryPage{
				Month: month,
				Cells: cells[p*DiaryPageCells : (p+1)*DiaryPageCells],
			})
		}
	}

	rows := make([][]DiaryPage, 0, (len(pages)+DiaryRowPages-1)/DiaryRowPages)
	for start := 0; start < len(pages); start += DiaryRowPages {
		end := min(start+DiaryRowPages, len(pages))
		rows = append(rows, pages[start:end])
	}
	return rows
}

// Layout is a built grid of one of the supported shapes.
type Layout struct {
	Output  model.Output
	Year    int
	Monthly [][]Cell
	Yearly  *YearlyCalendar
	Diary   [][]DiaryPage
}

// Build consumes days into the grid shape named by output.
func Build(output model.Output, year int, days model.DayMap) (*Layout, error) {
	if year < civil.MinYear || year > civil.MaxYear {
		return nil, fmt.Errorf("year %d outside %d..%d", year, civil.MinYear, civil.MaxYear)
	}

	l := &Layout{Output: output, Year: year}
	switch output {
	case model.OutputMonthly:
		l.Monthly = Monthly(year, days)
	case model.OutputYearly, model.OutputHalfYear:
		y := Yearly(year, days, output == model.OutputHalfYear)
		l.Yearly = &y
	case model.OutputDiary:
		l.Diary = Diary(year, days)
	default:
		return nil, fmt.Errorf("unknown output %q", output)
	}

	if n := days.Len(); n > 0 {
		appLog.Debug("days left without a grid cell", "output", output, "year", year, "days", n)
	}
	return l, nil
}
