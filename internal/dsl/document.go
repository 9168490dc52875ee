package dsl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	appLog "calgen/internal/log"
	"calgen/internal/model"
)

const maxLineBytes = 1 << 20

// ParseError reports the first problem found in a calendar document.
type ParseError struct {
	// Line is the 1-based line number, or 0 when not tied to a line.
	Line int
	// Text is the offending line, trimmed.
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("error on line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads a whole calendar document. Parsing stops at the first error,
// which is always a *ParseError.
func Parse(r io.Reader) ([]model.EventGroup, error) {
	groups := make([]model.EventGroup, 0)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if header, ok := strings.CutPrefix(line, "["); ok {
			inner, ok := strings.CutSuffix(header, "]")
			if !ok {
				return nil, &ParseError{Line: lineNum, Text: line, Err: ErrUnterminatedHeader}
			}
			title, style, _ := strings.Cut(inner, ":")
			groups = append(groups, model.EventGroup{
				ID:     model.Group(len(groups)),
				Title:  strings.TrimSpace(title),
				Style:  style,
				Events: make([]model.EventDescription, 0),
			})
			continue
		}

		if len(groups) == 0 {
			return nil, &ParseError{Line: lineNum, Text: line, Err: ErrMissingGroup}
		}
		current := &groups[len(groups)-1]
		ev, err := ParseEvent(line, current.ID)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Text: line, Err: err}
		}
		current.Events = append(current.Events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Line: lineNum + 1, Err: err}
	}

	appLog.Debug("calendar parsed", "groups", len(groups), "lines", lineNum)
	return groups, nil
}

// ParseString parses a calendar document held in memory.
func ParseString(s string) ([]model.EventGroup, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile reads and parses the calendar document at path.
func ParseFile(path string) ([]model.EventGroup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	groups, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return groups, nil
}

// Format writes groups back in document form. Parsing the output yields
// the same groups.
func Format(w io.Writer, groups []model.EventGroup) error {
	bw := bufio.NewWriter(w)
	for i, g := range groups {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		header := "[" + g.Title + "]"
		if g.Style != "" {
			header = "[" + g.Title + ":" + g.Style + "]"
		}
		if _, err := fmt.Fprintln(bw, header); err != nil {
			return err
		}
		for _, ev := range g.Events {
			if _, err := fmt.Fprintf(bw, "%s %s\n", ev.Rule, ev.Title); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
