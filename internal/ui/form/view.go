package form

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/opticshield/opticshield/internal/encoder"
	"github.com/opticshield/opticshield/internal/person"
	"github.com/opticshield/opticshield/internal/ui/styles"
)

// View renders the form body. The host draws the surrounding pane.
func (m Model) View() string {
	width := max(m.width, 12)
	var parts []string

	if banner := m.renderBanner(width); banner != "" {
		parts = append(parts, banner)
	}
	if m.warning != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(styles.StatusWarningColor).
			Render(wordwrap.String("⚠ "+m.warning, width)))
	}

	parts = append(parts,
		m.section(FieldName, "Name", "required", m.name.View()),
		m.section(FieldPersonID, "Person ID", "required", m.personID.View()),
		m.section(FieldClassification, "Flag", "←/→", m.renderClassification()),
		m.section(FieldImagePath, "Image", m.imageHint(), m.image.View()),
		m.section(FieldMetadata, "Metadata", "", m.metadata.View()),
		m.renderButtons(),
	)
	return strings.Join(parts, "\n")
}

func (m Model) section(f Field, title, hint, content string) string {
	return styles.RenderFormSection(strings.Split(content, "\n"), title, hint, m.width, m.focused && m.focus == f)
}

func (m Model) renderBanner(width int) string {
	text, isErr := m.Banner()
	if text == "" {
		return ""
	}
	style := lipgloss.NewStyle().Bold(true)
	switch {
	case isErr:
		style = style.Foreground(styles.StatusErrorColor)
	case m.state == StateSucceeded:
		style = style.Foreground(styles.StatusSuccessColor)
	default:
		style = style.Foreground(styles.StatusInfoColor)
		text = m.spinner.View() + " " + text
	}
	return style.Render(wordwrap.String(text, width))
}

func (m Model) renderClassification() string {
	var b strings.Builder
	for i, c := range person.Classifications() {
		if i > 0 {
			b.WriteString("  ")
		}
		if c == m.draft.Classification {
			b.WriteString(styles.ClassificationStyle(c).Underline(true).Render("● " + c.Label()))
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("○ " + c.Label()))
	}
	return b.String()
}

func (m Model) imageHint() string {
	switch {
	case m.draft.Image != "":
		info, err := encoder.ParseDataURI(m.draft.Image)
		if err != nil {
			return "attached"
		}
		return "attached " + info.MIME + " " + styles.FormatBytes(info.Size)
	case m.draft.ImagePath != "" && m.warning == "":
		return "encoding..."
	}
	return "optional"
}

func (m Model) renderButtons() string {
	submit := styles.PrimaryButtonStyle
	if m.focused && m.focus == FieldSubmit {
		submit = styles.PrimaryButtonFocusedStyle
	}
	label := "Submit"
	if m.state == StateSubmitting {
		submit = styles.DisabledButtonStyle
		label = MsgSubmitting
	}
	reset := styles.SecondaryButtonStyle
	if m.focused && m.focus == FieldReset {
		reset = styles.SecondaryButtonFocusedStyle
	}
	return submit.Render(label) + "  " + reset.Render("Reset")
}
