package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/opticshield/opticshield/internal/person"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "Alice", 10, "Alice"},
		{"exact", "Alice", 5, "Alice"},
		{"cut", "Alexandria", 8, "Alexa..."},
		{"tiny width", "Alexandria", 2, ".."},
		{"zero width", "Alice", 0, ""},
		{"wide runes", "日本語テキスト", 9, "日本語..."},
		{"combining marks kept whole", "ééééé", 4, "é..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, TruncateString(tt.in, tt.width))
		})
	}
}

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "512B", FormatBytes(512))
	require.Equal(t, "12.3KB", FormatBytes(12595))
	require.Equal(t, "2.0MB", FormatBytes(2*1024*1024))
}

func TestRenderPane_ExactSize(t *testing.T) {
	out := RenderPane("line one\nline two\nline three", "Persons", 20, 4, false)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	for _, l := range lines {
		require.Equal(t, 20, lipgloss.Width(l))
	}
	require.Contains(t, lines[0], "╭─ Persons")
	require.Contains(t, lines[1], "line one")
	require.NotContains(t, out, "line three", "content clipped to inner height")
}

func TestRenderPane_LongTitleTruncated(t *testing.T) {
	out := RenderPane("", "A very long pane title indeed", 16, 3, true)
	top := strings.Split(out, "\n")[0]
	require.Equal(t, 16, lipgloss.Width(top))
	require.Contains(t, top, "...")
}

func TestRenderFormSection(t *testing.T) {
	out := RenderFormSection([]string{"Alice"}, "Name", "required", 30, false)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "╭─ Name")
	require.Contains(t, lines[0], "(required)")
	require.Contains(t, lines[1], "Alice")
	for _, l := range lines {
		require.Equal(t, 30, lipgloss.Width(l))
	}
}

func TestRenderFormSection_FocusChangesColor(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })

	unfocused := RenderFormSection([]string{"x"}, "Name", "", 20, false)
	focused := RenderFormSection([]string{"x"}, "Name", "", 20, true)
	require.NotEqual(t, unfocused, focused)
}

func TestClassificationStyle(t *testing.T) {
	require.Equal(t, lipgloss.TerminalColor(WhitelistColor), ClassificationColor(person.Whitelist))
	require.Equal(t, lipgloss.TerminalColor(BlacklistColor), ClassificationColor(person.Blacklist))
	require.Equal(t, lipgloss.TerminalColor(WatchlistColor), ClassificationColor(person.Watchlist))
	require.True(t, ClassificationStyle(person.Blacklist).GetBold())
	require.False(t, ClassificationStyle(person.Whitelist).GetBold())
}

func TestApplyTheme(t *testing.T) {
	origMuted, origErr, origOK := TextMutedColor, StatusErrorColor, StatusSuccessColor
	t.Cleanup(func() {
		TextMutedColor, StatusErrorColor, StatusSuccessColor = origMuted, origErr, origOK
		BorderDefaultColor = origMuted
	})

	ApplyTheme("#111111", "", "#222222")
	require.Equal(t, lipgloss.AdaptiveColor{Light: "#111111", Dark: "#111111"}, TextMutedColor)
	require.Equal(t, TextMutedColor, BorderDefaultColor)
	require.Equal(t, origErr, StatusErrorColor, "empty override keeps default")
	require.Equal(t, lipgloss.AdaptiveColor{Light: "#222222", Dark: "#222222"}, StatusSuccessColor)
}
