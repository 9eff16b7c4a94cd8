package personlist

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/opticshield/opticshield/internal/encoder"
	"github.com/opticshield/opticshield/internal/keys"
	"github.com/opticshield/opticshield/internal/person"
	"github.com/opticshield/opticshield/internal/registry"
	"github.com/opticshield/opticshield/internal/ui/styles"
	"github.com/opticshield/opticshield/internal/ui/table"
)

const metadataPlaceholder = "-"

func columns() []table.Column[person.Person] {
	return []table.Column[person.Person]{
		{Header: "Img", Width: 18, Render: func(p person.Person, _ int) string { return ImageCell(p) }},
		{Header: "ID", MinWidth: 6, Render: func(p person.Person, _ int) string {
			return lipgloss.NewStyle().Foreground(styles.TextSecondaryColor).Render(p.ShownID())
		}},
		{Header: "Name", MinWidth: 8, Render: func(p person.Person, _ int) string { return p.Name }},
		{Header: "Flag", Width: 9, Render: func(p person.Person, _ int) string {
			return styles.ClassificationStyle(p.Classification).Render(p.Classification.Label())
		}},
		{Header: "Metadata", MinWidth: 8, Render: func(p person.Person, _ int) string { return MetadataCell(p) }},
	}
}

// ImageCell is the Img column text: an inline marker describing the stored
// image, or a placeholder keyed by the record id.
func ImageCell(p person.Person) string {
	if !p.HasImage() {
		return lipgloss.NewStyle().Foreground(styles.TextPlaceholderColor).Render("[" + p.ShownID() + "]")
	}
	info, err := encoder.ParseDataURI(p.Image)
	if err != nil {
		return "▣ image"
	}
	return "▣ " + info.MIME + " " + styles.FormatBytes(info.Size)
}

// MetadataCell renders absent and empty annotations alike.
func MetadataCell(p person.Person) string {
	if text := p.MetadataText(); text != "" {
		return text
	}
	return metadataPlaceholder
}

// View renders the list body. The host draws the surrounding pane.
func (m Model) View() string {
	muted := lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	var body string
	switch m.state {
	case StateLoading:
		body = m.spinner.View() + " " + MsgLoading
	case StateErrored:
		errStyle := lipgloss.NewStyle().Foreground(styles.StatusErrorColor).Bold(true)
		body = errStyle.Render(styles.TruncateString(registry.UserMessage(m.err, MsgFetchFailed), max(m.width, 10))) +
			"\n" + muted.Render(MsgRetryHint)
	default:
		body = m.table.View(m.selectedIndex())
	}

	lines := strings.Split(body, "\n")
	for len(lines) < m.height-1 {
		lines = append(lines, "")
	}
	if m.state == StateReady && len(m.persons) > 0 {
		lines = append(lines, muted.Render(keys.RenderShortHelp([]key.Binding{
			keys.List.Cycle, keys.List.Delete, keys.List.Retry,
		})))
	}
	return strings.Join(lines, "\n")
}

// ConfirmOverlay draws the delete confirmation over bg, which is the whole
// screen of the given size. It returns bg unchanged when no dialog is open.
func (m Model) ConfirmOverlay(bg string, width, height int) string {
	if m.confirm == nil {
		return bg
	}
	dlg := *m.confirm
	dlg.SetSize(width, height)
	return dlg.Overlay(bg)
}
