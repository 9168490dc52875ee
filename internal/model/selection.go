package model

import (
	"fmt"
	"strings"
)

// Selection records which groups take part in a render. It lives beside the
// parsed groups so the parse result itself stays immutable.
type Selection map[GroupID]bool

// SelectAll selects every group.
func SelectAll(groups []EventGroup) Selection {
	sel := make(Selection, len(groups))
	for _, g := range groups {
		sel[g.ID] = true
	}
	return sel
}

// SelectTitles selects the groups whose titles match titles
// (case-insensitive). An empty titles list selects every group.
func SelectTitles(groups []EventGroup, titles []string) (Selection, error) {
	if len(titles) == 0 {
		return SelectAll(groups), nil
	}

	sel := make(Selection, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)
		found := false
		for _, g := range groups {
			if strings.EqualFold(g.Title, title) {
				sel[g.ID] = true
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown event group %q", title)
		}
	}
	return sel, nil
}

// Selected reports whether id is part of the selection.
func (s Selection) Selected(id GroupID) bool {
	return s[id]
}

// Set selects or deselects id.
func (s Selection) Set(id GroupID, selected bool) {
	if selected {
		s[id] = true
		return
	}
	delete(s, id)
}

// Titles returns the titles of the selected groups in group order.
func (s Selection) Titles(groups []EventGroup) []string {
	out := make([]string, 0, len(s))
	for _, g := range groups {
		if s.Selected(g.ID) {
			out = append(out, g.Title)
		}
	}
	return out
}
