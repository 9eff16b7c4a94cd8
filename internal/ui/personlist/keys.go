package personlist

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opticshield/opticshield/internal/keys"
)

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.List.Retry):
		if m.state == StateErrored {
			return m.Retry()
		}
		return m.Fetch()
	case key.Matches(msg, keys.List.Up):
		return m.moveSelection(-1), nil
	case key.Matches(msg, keys.List.Down):
		return m.moveSelection(1), nil
	case key.Matches(msg, keys.List.Cycle):
		return m.Cycle(m.selectedID)
	case key.Matches(msg, keys.List.Delete):
		return m.RequestDelete(m.selectedID), nil
	}
	return m, nil
}
