// Package modal provides the confirmation dialog used before destructive
// row actions.
package modal

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opticshield/opticshield/internal/keys"
	"github.com/opticshield/opticshield/internal/ui/overlay"
	"github.com/opticshield/opticshield/internal/ui/styles"
)

// ButtonVariant controls the styling of the confirm button.
type ButtonVariant int

const (
	ButtonPrimary ButtonVariant = iota
	ButtonDanger
)

const minWidth = 36

// Config controls modal appearance.
type Config struct {
	Title          string
	Message        string
	ConfirmLabel   string // defaults to "Confirm"
	ConfirmVariant ButtonVariant
	// Tag is echoed back in SubmitMsg and CancelMsg so the owner can tell
	// which pending action was answered.
	Tag string
}

// SubmitMsg is sent when the user confirms.
type SubmitMsg struct{ Tag string }

// CancelMsg is sent when the user dismisses the dialog.
type CancelMsg struct{ Tag string }

// Field identifies the focused button.
type Field int

const (
	FieldConfirm Field = iota
	FieldCancel
)

// Model is the modal state. Focus starts on Cancel so a stray enter never
// confirms a destructive action.
type Model struct {
	config  Config
	focused Field
	width   int
	height  int
}

// New creates a modal with the given configuration.
func New(cfg Config) Model {
	if cfg.ConfirmLabel == "" {
		cfg.ConfirmLabel = "Confirm"
	}
	return Model{config: cfg, focused: FieldCancel}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update handles key presses. The answer is delivered as a command so the
// owner sees it on its next Update.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Modal.Toggle):
			if m.focused == FieldConfirm {
				m.focused = FieldCancel
			} else {
				m.focused = FieldConfirm
			}
		case msg.String() == "y":
			return m, m.answer(FieldConfirm)
		case msg.String() == "enter":
			return m, m.answer(m.focused)
		case key.Matches(msg, keys.Modal.Cancel):
			return m, m.answer(FieldCancel)
		}
	}
	return m, nil
}

func (m Model) answer(f Field) tea.Cmd {
	tag := m.config.Tag
	if f == FieldConfirm {
		return func() tea.Msg { return SubmitMsg{Tag: tag} }
	}
	return func() tea.Msg { return CancelMsg{Tag: tag} }
}

// View renders the dialog box without the background.
func (m Model) View() string {
	width := max(minWidth, lipgloss.Width(m.config.Title)+2)

	title := lipgloss.NewStyle().Bold(true).Foreground(styles.OverlayTitleColor).PaddingLeft(1).
		Render(m.config.Title)
	divider := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).
		Render(strings.Repeat("─", width))

	var body strings.Builder
	if m.config.Message != "" {
		body.WriteString(lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Width(width - 2).
			Render(m.config.Message))
		body.WriteString("\n\n")
	}
	body.WriteString(m.buttons())

	content := title + "\n" + divider + "\n" + lipgloss.NewStyle().Padding(1, 1).Render(body.String())
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width).
		Render(content)
}

func (m Model) buttons() string {
	confirm := styles.PrimaryButtonStyle
	if m.config.ConfirmVariant == ButtonDanger {
		confirm = styles.DangerButtonStyle
	}
	if m.focused == FieldConfirm {
		confirm = styles.PrimaryButtonFocusedStyle
		if m.config.ConfirmVariant == ButtonDanger {
			confirm = styles.DangerButtonFocusedStyle
		}
	}
	cancel := styles.SecondaryButtonStyle
	if m.focused == FieldCancel {
		cancel = styles.SecondaryButtonFocusedStyle
	}
	return confirm.Render(m.config.ConfirmLabel) + "  " + cancel.Render("Cancel")
}

// Overlay renders the dialog centered on bg.
func (m Model) Overlay(bg string) string {
	return overlay.Place(overlay.Viewport{Width: m.width, Height: m.height}, m.View(), bg)
}

// SetSize records the viewport used for centering.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Focused returns the focused button.
func (m Model) Focused() Field { return m.focused }

// Tag returns the tag passed in Config.
func (m Model) Tag() string { return m.config.Tag }
