// Package markdown renders the key-binding reference shown by the help
// overlay.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/opticshield/opticshield/internal/ui/overlay"
	"github.com/opticshield/opticshield/internal/ui/styles"
)

// noMarginStyle strips glamour's document margins so the output fits the
// overlay box exactly.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps a glamour renderer with a fixed word-wrap width.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a renderer. style is a glamour standard style name ("dark",
// "light", "notty"); empty selects one from the terminal background.
func New(width int, style string) (*Renderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	opts = append(opts, glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)))

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(md string) (string, error) {
	out, err := r.renderer.Render(md)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

// Help is the help overlay: rendered markdown in a bordered box.
type Help struct {
	body string
}

// NewHelp renders md once; the overlay is static afterwards. A render
// failure falls back to the raw markdown.
func NewHelp(md string, width int, style string) Help {
	r, err := New(width, style)
	if err != nil {
		return Help{body: md}
	}
	out, err := r.Render(md)
	if err != nil {
		return Help{body: md}
	}
	return Help{body: out}
}

// View renders the boxed help text.
func (h Help) View() string {
	footer := lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("? or esc to close")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Padding(0, 1).
		Render(h.body + "\n\n" + footer)
}

// Overlay centers the help box on bg.
func (h Help) Overlay(bg string, width, height int) string {
	return overlay.Place(overlay.Viewport{Width: width, Height: height}, h.View(), bg)
}
