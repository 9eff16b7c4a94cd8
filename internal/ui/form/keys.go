package form

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opticshield/opticshield/internal/keys"
)

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Form.Submit):
		return m.Submit()
	case key.Matches(msg, keys.Form.Reset):
		return m.Reset(), nil
	case key.Matches(msg, keys.Form.NextField):
		return m.FocusField((m.focus + 1) % fieldCount), nil
	case key.Matches(msg, keys.Form.PrevField):
		return m.FocusField((m.focus + fieldCount - 1) % fieldCount), nil
	}

	switch m.focus {
	case FieldClassification:
		switch {
		case key.Matches(msg, keys.Form.FlagNext):
			return m.SetClassification(m.draft.Classification.Next()), nil
		case key.Matches(msg, keys.Form.FlagPrev):
			return m.SetClassification(m.draft.Classification.Prev()), nil
		case key.Matches(msg, keys.Form.Activate):
			return m.FocusField(FieldImagePath), nil
		}
		return m, nil

	case FieldSubmit, FieldReset:
		if key.Matches(msg, keys.Form.Activate) || msg.String() == " " {
			if m.focus == FieldSubmit {
				return m.Submit()
			}
			return m.Reset(), nil
		}
		return m, nil

	case FieldImagePath:
		if key.Matches(msg, keys.Form.Activate) {
			return m.SelectImage(m.image.Value())
		}
		var cmd tea.Cmd
		before := m.image.Value()
		m.image, cmd = m.image.Update(msg)
		if m.image.Value() != before {
			// typing a new path unbinds the previously attached file
			m.encodeSeq++
			m.draft.ImagePath = ""
			m.draft.Image = ""
			m.warning = ""
			m = m.edited()
		}
		return m, cmd

	case FieldName, FieldPersonID:
		if key.Matches(msg, keys.Form.Activate) {
			return m.FocusField(m.focus + 1), nil
		}
		var cmd tea.Cmd
		if m.focus == FieldName {
			before := m.name.Value()
			m.name, cmd = m.name.Update(msg)
			if m.name.Value() != before {
				m = m.edited()
			}
		} else {
			before := m.personID.Value()
			m.personID, cmd = m.personID.Update(msg)
			if m.personID.Value() != before {
				m = m.edited()
			}
		}
		return m, cmd

	case FieldMetadata:
		var cmd tea.Cmd
		before := m.metadata.Value()
		m.metadata, cmd = m.metadata.Update(msg)
		if m.metadata.Value() != before {
			m = m.edited()
		}
		return m, cmd
	}
	return m, nil
}
