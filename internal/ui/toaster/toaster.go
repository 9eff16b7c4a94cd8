// Package toaster shows short host-level notices, such as a reloaded config,
// at the bottom of the screen.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opticshield/opticshield/internal/ui/overlay"
	"github.com/opticshield/opticshield/internal/ui/styles"
)

// DefaultDuration is how long a toast stays up.
const DefaultDuration = 3 * time.Second

// Style selects the icon and border colour.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
	StyleWarn
)

// Model is the toast state. It is a value type: Show and Hide return a copy.
type Model struct {
	message string
	style   Style
	visible bool
	seq     int
}

// New returns a hidden toaster.
func New() Model {
	return Model{}
}

// Show replaces any current toast.
func (m Model) Show(message string, style Style) Model {
	m.message = message
	m.style = style
	m.visible = message != ""
	m.seq++
	return m
}

// Hide dismisses the toast.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Visible reports whether a toast is showing.
func (m Model) Visible() bool {
	return m.visible
}

// Message returns the current text.
func (m Model) Message() string {
	return m.message
}

// DismissMsg hides the toast it was scheduled for. A toast shown after the
// schedule has a different Seq and is left alone.
type DismissMsg struct{ Seq int }

// ScheduleDismiss returns a command that dismisses the current toast after d.
func (m Model) ScheduleDismiss(d time.Duration) tea.Cmd {
	seq := m.seq
	return tea.Tick(d, func(time.Time) tea.Msg { return DismissMsg{Seq: seq} })
}

// Update handles DismissMsg.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.Seq == m.seq {
		return m.Hide()
	}
	return m
}

// View renders the toast box, or "" when hidden.
func (m Model) View() string {
	if !m.visible {
		return ""
	}
	icon, color := "✅", lipgloss.TerminalColor(styles.ToastBorderSuccessColor)
	switch m.style {
	case StyleError:
		icon, color = "❌", styles.ToastBorderErrorColor
	case StyleInfo:
		icon, color = "ℹ️", styles.ToastBorderInfoColor
	case StyleWarn:
		icon, color = "⚠️", styles.ToastBorderWarnColor
	}
	return lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Render(icon + " " + m.message)
}

// Overlay draws the toast one row above the bottom edge of bg.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Viewport{
		Width:  width,
		Height: height,
		Anchor: overlay.Bottom,
		Margin: 1,
	}, m.View(), bg)
}
