// Package overlay composites a foreground block (modal, toast, help) over an
// already rendered background without clearing the screen.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Anchor is where the foreground block sits in the viewport.
type Anchor int

const (
	Center Anchor = iota
	Top
	Bottom
)

// Viewport describes the background area the block is placed into.
type Viewport struct {
	Width  int
	Height int
	Anchor Anchor
	Margin int // rows kept free between the block and the anchored edge
}

// Place draws fg over bg. Both may contain ANSI styling; cells of bg outside
// the block keep their styling. The result has at least vp.Height lines.
func Place(vp Viewport, fg, bg string) string {
	rows := strings.Split(bg, "\n")
	for len(rows) < vp.Height {
		rows = append(rows, strings.Repeat(" ", vp.Width))
	}

	block := strings.Split(fg, "\n")
	x, y := origin(vp, lipgloss.Width(fg), len(block))

	for i, line := range block {
		row := y + i
		if row >= len(rows) {
			break
		}
		rows[row] = splice(rows[row], line, x)
	}
	return strings.Join(rows, "\n")
}

// splice replaces the cells of row starting at column x with line.
func splice(row, line string, x int) string {
	left := ansi.Truncate(row, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	end := x + ansi.StringWidth(line)
	right := ""
	if end < ansi.StringWidth(row) {
		right = ansi.TruncateLeft(row, end, "")
	}
	return left + line + right
}

func origin(vp Viewport, w, h int) (int, int) {
	x := (vp.Width - w) / 2
	var y int
	switch vp.Anchor {
	case Top:
		y = vp.Margin
	case Bottom:
		y = vp.Height - h - vp.Margin
	default:
		y = (vp.Height - h) / 2
	}
	return max(x, 0), max(y, 0)
}
