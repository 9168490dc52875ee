package dsl

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ConvertTable turns rows of the form "DD-Mon<TAB>Title" into fixed-date
// event lines ("D Mon Title", CRLF terminated). Rows without a tab or
// with an empty title are skipped. It returns the number of lines written.
func ConvertTable(r io.Reader, w io.Writer) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	bw := bufio.NewWriter(w)

	written := 0
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		date, title, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		day, month, ok := strings.Cut(date, "-")
		if !ok {
			return written, &ParseError{Line: lineNum, Text: line, Err: fmt.Errorf("'-' not found in date %q", date)}
		}

		day = strings.TrimLeft(strings.TrimSpace(day), "0")
		month = strings.TrimSpace(month)
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}

		if _, err := fmt.Fprintf(bw, "%s %s %s\r\n", day, month, title); err != nil {
			return written, err
		}
		written++
	}
	if err := sc.Err(); err != nil {
		return written, err
	}
	return written, bw.Flush()
}
