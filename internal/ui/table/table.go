// Package table renders typed rows as fixed-width columns with a header,
// a selection gutter and optional bubblezone marks for mouse selection.
//
// The table holds no selection state; callers pass the selected index to
// View. Scrolling keeps the selected row visible via EnsureVisible.
package table

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"github.com/opticshield/opticshield/internal/ui/styles"
)

const (
	gutterWidth  = 2
	minFlexWidth = 3
)

// Column describes one column. Width 0 makes the column flexible: flexible
// columns share whatever the fixed ones leave, never going below MinWidth.
type Column[T any] struct {
	Header   string
	Width    int
	MinWidth int
	Align    lipgloss.Position
	Render   func(row T, width int) string
}

// Config is the table configuration.
type Config[T any] struct {
	Columns      []Column[T]
	EmptyMessage string
	// ZoneID returns the bubblezone id for a row, or "" for none.
	ZoneID func(row T) string
}

// ValidateConfig reports a missing column or render callback.
func ValidateConfig[T any](cfg Config[T]) error {
	if len(cfg.Columns) == 0 {
		return errors.New("table config: at least one column is required")
	}
	for i, col := range cfg.Columns {
		if col.Render == nil {
			return fmt.Errorf("table config: column %d (%q) has nil Render callback", i, col.Header)
		}
	}
	return nil
}

// Model is the table. It is a value type; setters return a copy.
type Model[T any] struct {
	config Config[T]
	rows   []T
	width  int
	height int
	offset int
}

// New creates a table. It panics when cfg is invalid.
func New[T any](cfg Config[T]) Model[T] {
	if err := ValidateConfig(cfg); err != nil {
		panic(err)
	}
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = "No data"
	}
	return Model[T]{config: cfg}
}

// SetRows replaces the rows.
func (m Model[T]) SetRows(rows []T) Model[T] {
	m.rows = rows
	m.offset = m.clamp(m.offset)
	return m
}

// SetSize sets the area the table renders into, header included.
func (m Model[T]) SetSize(width, height int) Model[T] {
	m.width = width
	m.height = height
	m.offset = m.clamp(m.offset)
	return m
}

// Rows returns the current rows.
func (m Model[T]) Rows() []T { return m.rows }

// Offset returns the index of the first visible row.
func (m Model[T]) Offset() int { return m.offset }

func (m Model[T]) bodyHeight() int {
	return max(m.height-1, 0)
}

func (m Model[T]) clamp(offset int) int {
	return max(min(offset, len(m.rows)-m.bodyHeight()), 0)
}

// EnsureVisible scrolls so that row i is on screen.
func (m Model[T]) EnsureVisible(i int) Model[T] {
	if i < 0 || i >= len(m.rows) {
		return m
	}
	if i < m.offset {
		m.offset = i
	}
	if h := m.bodyHeight(); h > 0 && i >= m.offset+h {
		m.offset = i - h + 1
	}
	m.offset = m.clamp(m.offset)
	return m
}

// View renders the table with row selected highlighted; -1 selects nothing.
func (m Model[T]) View(selected int) string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if len(m.rows) == 0 {
		return lipgloss.NewStyle().Foreground(styles.TextMutedColor).
			Render(styles.TruncateString(m.config.EmptyMessage, m.width))
	}

	widths := columnWidths(m.config.Columns, m.width-gutterWidth)
	lines := make([]string, 0, m.height)
	lines = append(lines, lipgloss.NewStyle().Foreground(styles.TextMutedColor).Bold(true).
		Render(strings.Repeat(" ", gutterWidth)+m.header(widths)))

	end := min(m.offset+m.bodyHeight(), len(m.rows))
	for i := m.offset; i < end; i++ {
		line := m.row(m.rows[i], widths, i == selected)
		if m.config.ZoneID != nil {
			if id := m.config.ZoneID(m.rows[i]); id != "" {
				line = zone.Mark(id, line)
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model[T]) header(widths []int) string {
	cells := make([]string, len(widths))
	for i, col := range m.config.Columns {
		cells[i] = align(styles.TruncateString(col.Header, widths[i]), widths[i], col.Align)
	}
	return strings.Join(cells, " ")
}

func (m Model[T]) row(row T, widths []int, selected bool) string {
	gutter := strings.Repeat(" ", gutterWidth)
	if selected {
		gutter = styles.SelectionIndicatorStyle.Render("▶ ")
	}
	cells := make([]string, len(widths))
	for i, col := range m.config.Columns {
		cell := flatten(col.Render(row, widths[i]))
		if lipgloss.Width(cell) > widths[i] {
			cell = ansi.Truncate(cell, widths[i], "...")
		}
		cells[i] = align(cell, widths[i], col.Align)
	}
	return gutter + strings.Join(cells, " ")
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// flatten keeps a cell on its row's single line.
func flatten(cell string) string {
	return lineBreaks.Replace(cell)
}

// columnWidths distributes total (separators included) over the columns.
func columnWidths[T any](cols []Column[T], total int) []int {
	widths := make([]int, len(cols))
	remaining := total - (len(cols) - 1)
	flex := 0
	for i, col := range cols {
		if col.Width > 0 {
			widths[i] = col.Width
			remaining -= col.Width
		} else {
			flex++
		}
	}
	if flex == 0 {
		return widths
	}
	share := max(remaining/flex, 0)
	extra := max(remaining-share*flex, 0)
	for i, col := range cols {
		if col.Width > 0 {
			continue
		}
		w := share
		if extra > 0 {
			w++
			extra--
		}
		widths[i] = max(w, col.MinWidth, minFlexWidth)
	}
	return widths
}

func align(s string, width int, pos lipgloss.Position) string {
	pad := width - lipgloss.Width(s)
	if pad <= 0 {
		return s
	}
	switch pos {
	case lipgloss.Right:
		return strings.Repeat(" ", pad) + s
	case lipgloss.Center:
		return strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2)
	default:
		return s + strings.Repeat(" ", pad)
	}
}
