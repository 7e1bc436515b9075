package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// fitWidth shortens s to width runes, marking the cut with an ellipsis.
// Strings that already fit are returned unchanged.
func fitWidth(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return string(r[:1])
	}
	return string(r[:width-1]) + "…"
}

// scrollWindow returns the [start, end) range of a list of total rows that
// fits in a viewport of rows lines with the cursor near the middle.
func scrollWindow(total, cursor, rows int) (start, end int) {
	if total <= rows {
		return 0, total
	}
	start = min(max(cursor-rows/2, 0), total-rows)
	return start, start + rows
}

// wrapWords breaks s into lines of at most width display cells, splitting on
// spaces. Words longer than width are cut with fitWidth.
func wrapWords(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	var lines []string
	var line strings.Builder
	for _, w := range strings.Fields(s) {
		w = fitWidth(w, width)
		switch {
		case line.Len() == 0:
			line.WriteString(w)
		case lipgloss.Width(line.String())+1+lipgloss.Width(w) <= width:
			line.WriteString(" " + w)
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(w)
		}
	}
	if line.Len() > 0 || len(lines) == 0 {
		lines = append(lines, line.String())
	}
	return lines
}
