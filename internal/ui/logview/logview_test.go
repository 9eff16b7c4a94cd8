package logview

import (
	"fmt"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/opticshield/opticshield/internal/log"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sample() Model {
	return New().
		Append("2026-10-19T10:00:00 [DEBUG] [list] fetch started\n").
		Append("2026-10-19T10:00:01 [INFO] [form] person added id=1").
		Append("2026-10-19T10:00:02 [WARN] [config] unknown feature flag").
		Append("2026-10-19T10:00:03 [ERROR] [registry] request failed").
		SetSize(120, 40)
}

func TestAppend_TrimsAndBounds(t *testing.T) {
	m := New().Append("").Append("\n")
	require.Empty(t, m.Entries())

	for i := range MaxEntries + 10 {
		m = m.Append(fmt.Sprintf("entry %d\n", i))
	}
	require.Len(t, m.Entries(), MaxEntries)
	require.Equal(t, "entry 10", m.Entries()[0])
	require.Equal(t, fmt.Sprintf("entry %d", MaxEntries+9), m.Entries()[MaxEntries-1])
}

func TestHiddenRendersNothing(t *testing.T) {
	m := sample()
	require.False(t, m.Visible())
	require.Empty(t, m.View())
	require.Equal(t, "bg", m.Overlay("bg"))
}

func TestToggleShowsEntries(t *testing.T) {
	m := sample().Toggle()
	require.True(t, m.Visible())

	v := m.View()
	require.Contains(t, v, "Logs")
	require.Contains(t, v, "fetch started")
	require.Contains(t, v, "request failed")
	require.Contains(t, v, "[e] Error")
}

func TestLevelFilters(t *testing.T) {
	tests := []struct {
		key     string
		level   log.Level
		visible []string
		hidden  []string
	}{
		{"d", log.LevelDebug, []string{"fetch started", "request failed"}, nil},
		{"i", log.LevelInfo, []string{"person added", "unknown feature flag"}, []string{"fetch started"}},
		{"w", log.LevelWarn, []string{"unknown feature flag", "request failed"}, []string{"person added"}},
		{"e", log.LevelError, []string{"request failed"}, []string{"unknown feature flag"}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := sample().Toggle().Update(keyMsg(tt.key))
			require.Equal(t, tt.level, m.MinLevel())
			v := m.View()
			for _, s := range tt.visible {
				require.Contains(t, v, s)
			}
			for _, s := range tt.hidden {
				require.NotContains(t, v, s)
			}
		})
	}
}

func TestClear(t *testing.T) {
	m := sample().Toggle().Update(keyMsg("c"))
	require.Empty(t, m.Entries())
	require.Contains(t, m.View(), "No logs to display")
}

func TestCloseKeys(t *testing.T) {
	for _, k := range []string{"esc", "ctrl+x"} {
		m := sample().Toggle().Update(keyMsg(k))
		require.False(t, m.Visible(), k)
	}
}

func TestAppendWhileVisibleRefreshes(t *testing.T) {
	m := sample().Toggle().Append("2026-10-19T10:00:04 [INFO] [ui] refresh counter=2")
	require.Contains(t, m.View(), "counter=2")
}

func TestLongEntriesAreTruncated(t *testing.T) {
	long := "2026-10-19T10:00:00 [INFO] [ui] " + strings.Repeat("x", 300)
	m := New().Append(long).SetSize(60, 30).Toggle()
	for _, line := range strings.Split(m.View(), "\n") {
		require.LessOrEqual(t, lipgloss.Width(line), 60)
	}
	require.Contains(t, m.View(), "...")
}
