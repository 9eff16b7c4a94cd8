// Package logview provides the debug log overlay: the most recent log
// entries in a scrollable box, filterable by level.
package logview

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/opticshield/opticshield/internal/log"
	"github.com/opticshield/opticshield/internal/ui/overlay"
	"github.com/opticshield/opticshield/internal/ui/styles"
)

const (
	// MaxEntries bounds the retained history; older entries are dropped.
	MaxEntries = 500

	viewportMaxHeight = 25
	viewportMinHeight = 5
	boxMaxWidth       = 160
	boxMinWidth       = 40
)

// Model is the overlay state. Entries are kept while it is hidden.
type Model struct {
	entries  []string
	visible  bool
	minLevel log.Level
	width    int
	height   int
	viewport viewport.Model
}

// New creates a hidden overlay showing every level.
func New() Model {
	return Model{minLevel: log.LevelDebug}
}

// Append records one entry, dropping the oldest beyond MaxEntries.
func (m Model) Append(entry string) Model {
	entry = strings.TrimRight(entry, "\n")
	if entry == "" {
		return m
	}
	m.entries = append(m.entries, entry)
	if over := len(m.entries) - MaxEntries; over > 0 {
		m.entries = append([]string(nil), m.entries[over:]...)
	}
	if m.visible {
		m.refresh()
	}
	return m
}

// Entries returns the retained entries, oldest first.
func (m Model) Entries() []string { return m.entries }

// Visible reports whether the overlay is open.
func (m Model) Visible() bool { return m.visible }

// MinLevel returns the active filter.
func (m Model) MinLevel() log.Level { return m.minLevel }

// Toggle opens or closes the overlay. Opening scrolls to the newest entry.
func (m Model) Toggle() Model {
	m.visible = !m.visible
	if m.visible {
		m.refresh()
	}
	return m
}

// SetSize records the terminal size.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	m.refresh()
	return m
}

// Update handles keys while visible: level filters, clear, scrolling, and
// esc or ctrl+x to close.
func (m Model) Update(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "c":
		m.entries = nil
	case "d":
		m.minLevel = log.LevelDebug
	case "i":
		m.minLevel = log.LevelInfo
	case "w":
		m.minLevel = log.LevelWarn
	case "e":
		m.minLevel = log.LevelError
	case "j", "down":
		m.viewport.ScrollDown(1)
		return m
	case "k", "up":
		m.viewport.ScrollUp(1)
		return m
	case "g":
		m.viewport.GotoTop()
		return m
	case "G":
		m.viewport.GotoBottom()
		return m
	case "esc", "ctrl+x":
		m.visible = false
		return m
	default:
		return m
	}
	m.refresh()
	return m
}

func (m *Model) refresh() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// header, divider, footer divider, footer and borders
	h := max(min(viewportMaxHeight, m.height-6), viewportMinHeight)
	m.viewport = viewport.New(m.contentWidth(), h)
	m.viewport.SetContent(m.content())
	m.viewport.GotoBottom()
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

func (m Model) contentWidth() int {
	return m.boxWidth() - 2
}

// levelOf reads the level tag the logger writes, e.g. "[WARN]".
func levelOf(entry string) (log.Level, bool) {
	for _, l := range []log.Level{log.LevelError, log.LevelWarn, log.LevelInfo, log.LevelDebug} {
		if strings.Contains(entry, "["+l.String()+"]") {
			return l, true
		}
	}
	return 0, false
}

func (m Model) filtered() []string {
	var out []string
	for _, e := range m.entries {
		if l, ok := levelOf(e); !ok || l >= m.minLevel {
			out = append(out, e)
		}
	}
	return out
}

func (m Model) content() string {
	entries := m.filtered()
	if len(entries) == 0 {
		return lipgloss.NewStyle().Foreground(styles.TextMutedColor).Italic(true).Render("No logs to display")
	}

	width := m.contentWidth()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if ansi.StringWidth(e) > width {
			e = ansi.Truncate(e, width, "...")
		}
		color := lipgloss.TerminalColor(styles.TextPrimaryColor)
		if l, ok := levelOf(e); ok {
			switch l {
			case log.LevelError:
				color = styles.StatusErrorColor
			case log.LevelWarn:
				color = styles.StatusWarningColor
			case log.LevelInfo:
				color = styles.ToastBorderInfoColor
			default:
				color = styles.TextMutedColor
			}
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(color).Render(e))
	}
	return strings.Join(lines, "\n")
}

func (m Model) footer() string {
	hint := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	active := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(true)

	parts := []string{hint.Render("[c] Clear")}
	for _, f := range []struct {
		level log.Level
		label string
	}{
		{log.LevelDebug, "[d] Debug"},
		{log.LevelInfo, "[i] Info"},
		{log.LevelWarn, "[w] Warn"},
		{log.LevelError, "[e] Error"},
	} {
		if f.level == m.minLevel {
			parts = append(parts, active.Render(f.label))
		} else {
			parts = append(parts, hint.Render(f.label))
		}
	}
	return strings.Join(parts, "  ")
}

// View renders the box, or "" when hidden.
func (m Model) View() string {
	if !m.visible {
		return ""
	}
	w := m.boxWidth()
	divider := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).Render(strings.Repeat("─", w))
	title := lipgloss.NewStyle().Bold(true).Foreground(styles.OverlayTitleColor).PaddingLeft(1).Render("Logs")

	body := strings.Join([]string{title, divider, m.viewport.View(), divider, m.footer()}, "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(w).
		Render(body)
}

// Overlay centers the box on bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Viewport{Width: m.width, Height: m.height}, m.View(), bg)
}
