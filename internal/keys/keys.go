// Package keys contains keybinding definitions.
package keys

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// App holds bindings handled by the host regardless of focus.
var App = struct {
	SwitchPane key.Binding
	Help       key.Binding
	Quit       key.Binding
	QuitList   key.Binding
	Logs       key.Binding
}{
	SwitchPane: key.NewBinding(
		key.WithKeys("ctrl+w"),
		key.WithHelp("ctrl+w", "switch pane"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	QuitList: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit (list)"),
	),
	Logs: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "debug logs"),
	),
}

// Form holds bindings for the creation form.
var Form = struct {
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	Reset     key.Binding
	FlagNext  key.Binding
	FlagPrev  key.Binding
	Activate  key.Binding
}{
	NextField: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "submit"),
	),
	Reset: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reset form"),
	),
	FlagNext: key.NewBinding(
		key.WithKeys("right", "l", " "),
		key.WithHelp("→/space", "next flag"),
	),
	FlagPrev: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "previous flag"),
	),
	Activate: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "attach image / press button"),
	),
}

// List holds bindings for the persons table.
var List = struct {
	Up     key.Binding
	Down   key.Binding
	Cycle  key.Binding
	Delete key.Binding
	Retry  key.Binding
}{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "move down"),
	),
	Cycle: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "cycle flag"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Retry: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload / retry"),
	),
}

// Modal holds bindings for confirmation dialogs.
var Modal = struct {
	Confirm key.Binding
	Cancel  key.Binding
	Toggle  key.Binding
}{
	Confirm: key.NewBinding(
		key.WithKeys("enter", "y"),
		key.WithHelp("enter/y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "n"),
		key.WithHelp("esc/n", "cancel"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("tab", "left", "right", "shift+tab"),
		key.WithHelp("tab", "switch button"),
	),
}

// ShortHelp is the one-line hint shown under the panes.
func ShortHelp(listFocused bool) []key.Binding {
	if listFocused {
		return []key.Binding{List.Cycle, List.Delete, List.Retry, App.SwitchPane, App.Help, App.QuitList}
	}
	return []key.Binding{Form.NextField, Form.Submit, Form.Reset, App.SwitchPane, App.Help, App.Quit}
}

// RenderShortHelp joins bindings as "key desc • key desc".
func RenderShortHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

// HelpMarkdown documents every binding as markdown tables, one per area.
func HelpMarkdown() string {
	sections := []struct {
		title    string
		bindings []key.Binding
	}{
		{"Add Person form", []key.Binding{Form.NextField, Form.PrevField, Form.FlagNext, Form.FlagPrev, Form.Activate, Form.Submit, Form.Reset}},
		{"Persons list", []key.Binding{List.Up, List.Down, List.Cycle, List.Delete, List.Retry}},
		{"Confirmation", []key.Binding{Modal.Confirm, Modal.Cancel, Modal.Toggle}},
		{"General", []key.Binding{App.SwitchPane, App.Help, App.Logs, App.QuitList, App.Quit}},
	}

	var b strings.Builder
	b.WriteString("# Keys\n")
	for _, s := range sections {
		fmt.Fprintf(&b, "\n## %s\n\n| Key | Action |\n| --- | --- |\n", s.title)
		for _, kb := range s.bindings {
			h := kb.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}
	return b.String()
}
