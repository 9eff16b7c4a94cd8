package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderFormSection renders one form field: a bordered box whose top edge
// carries the label and an optional hint, ╭─ Name (required) ──╮.
func RenderFormSection(content []string, title, hint string, width int, focused bool) string {
	borderColor := lipgloss.TerminalColor(BorderDefaultColor)
	titleColor := lipgloss.TerminalColor(FormTextInputLabelColor)
	if focused {
		borderColor = BorderHighlightFocusColor
		titleColor = FormTextInputFocusedLabelColor
	}
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(titleColor)
	hintStyle := lipgloss.NewStyle().Foreground(TextMutedColor)

	innerWidth := max(width-2, 1)

	top := borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	if title != "" {
		label := title
		if hint != "" {
			label += " (" + hint + ")"
		}
		dashes := max(innerWidth-lipgloss.Width(label)-3, 0)
		top = borderStyle.Render(borderTopLeft+borderHorizontal+" ") + titleStyle.Render(title)
		if hint != "" {
			top += " " + hintStyle.Render("("+hint+")")
		}
		top += borderStyle.Render(" " + strings.Repeat(borderHorizontal, dashes) + borderTopRight)
	}

	lines := make([]string, 0, len(content)+2)
	lines = append(lines, top)
	for _, row := range content {
		if w := lipgloss.Width(row); w < innerWidth {
			row += strings.Repeat(" ", innerWidth-w)
		}
		lines = append(lines, borderStyle.Render(borderVertical)+row+borderStyle.Render(borderVertical))
	}
	lines = append(lines, borderStyle.Render(borderBottomLeft+strings.Repeat(borderHorizontal, innerWidth)+borderBottomRight))
	return strings.Join(lines, "\n")
}
