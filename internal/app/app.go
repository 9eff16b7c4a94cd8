// Package app contains the root application model: the Add Person form and
// the Persons list side by side, the refresh counter that connects them, and
// host-level concerns (config reload, toasts, help).
package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/opticshield/opticshield/internal/config"
	"github.com/opticshield/opticshield/internal/keys"
	"github.com/opticshield/opticshield/internal/log"
	"github.com/opticshield/opticshield/internal/person"
	"github.com/opticshield/opticshield/internal/pubsub"
	"github.com/opticshield/opticshield/internal/registry"
	"github.com/opticshield/opticshield/internal/ui/form"
	"github.com/opticshield/opticshield/internal/ui/logview"
	"github.com/opticshield/opticshield/internal/ui/markdown"
	"github.com/opticshield/opticshield/internal/ui/personlist"
	"github.com/opticshield/opticshield/internal/ui/styles"
	"github.com/opticshield/opticshield/internal/ui/toaster"
	"github.com/opticshield/opticshield/internal/watcher"
)

// URLSwapper is the part of the registry client the host needs to apply a
// reloaded base URL. *registry.HTTPClient implements it.
type URLSwapper interface {
	BaseURL() string
	SetBaseURL(baseURL string)
}

// Options wires the host to its collaborators.
type Options struct {
	Registry registry.Registry
	Client   URLSwapper // nil disables base URL reloads
	Encoder  form.ImageEncoder

	// ConfigPath is watched when AutoReload is set.
	ConfigPath string
	AutoReload bool
	// BaseURLFlag is the --base-url value, which outranks the file on reload.
	BaseURLFlag string

	Debug     bool
	HelpStyle string // glamour style for the help overlay; "" detects
}

type pane int

const (
	paneForm pane = iota
	paneList
)

// Model is the root application state.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options

	form form.Model
	list personlist.Model

	added         *pubsub.Broker[person.Person]
	addedListener *pubsub.ContinuousListener[person.Person]
	refresh       int

	focus   pane
	toaster toaster.Model
	help    *markdown.Help

	watcher     *watcher.Watcher
	watchCh     <-chan struct{}
	logListener *log.LogListener
	logs        logview.Model

	width  int
	height int
}

// New creates the host. Call Close when the program exits.
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	added := pubsub.NewBroker[person.Person]()

	m := Model{
		ctx:           ctx,
		cancel:        cancel,
		opts:          opts,
		added:         added,
		addedListener: pubsub.NewContinuousListener[person.Person](ctx, added),
		form:          form.New(ctx, opts.Registry, opts.Encoder, added),
		list:          personlist.New(ctx, opts.Registry),
		toaster:       toaster.New(),
		logs:          logview.New(),
	}
	m.setFocus(paneForm)

	if opts.AutoReload && opts.ConfigPath != "" && opts.Client != nil {
		w, err := watcher.New(watcher.DefaultConfig(opts.ConfigPath))
		if err == nil {
			ch, startErr := w.Start()
			if startErr == nil {
				m.watcher, m.watchCh = w, ch
			} else {
				_ = w.Stop()
				err = startErr
			}
		}
		if err != nil {
			// the UI works without reloads
			log.Warn(log.CatWatcher, "config watcher unavailable", "path", opts.ConfigPath, "error", err)
		}
	}
	if opts.Debug {
		m.logListener = log.NewListener(ctx)
	}
	return m
}

// Init mounts both controllers and starts the listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.form.Init(),
		m.list.Init(),
		m.addedListener.Listen(),
		watcher.WaitCmd(m.opts.ConfigPath, m.watchCh),
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Refresh returns the refresh counter handed to the list.
func (m Model) Refresh() int { return m.refresh }

// Form returns the form controller.
func (m Model) Form() form.Model { return m.form }

// List returns the list controller.
func (m Model) List() personlist.Model { return m.list }

// ListFocused reports whether the list pane owns the keyboard.
func (m Model) ListFocused() bool { return m.focus == paneList }

func (m *Model) setFocus(p pane) {
	m.focus = p
	m.form = m.form.SetFocused(p == paneForm)
	m.list = m.list.SetFocused(p == paneList)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.logs = m.logs.SetSize(msg.Width, msg.Height)
		m.help = nil
		return m, nil

	case pubsub.Event[person.Person]:
		if msg.Type != pubsub.CreatedEvent {
			return m, m.addedListener.Listen()
		}
		return m.bumpRefresh("person added", m.addedListener.Listen())

	case watcher.ChangedMsg:
		return m.reloadConfig(msg.Path)

	case log.LogEvent:
		m.logs = m.logs.Append(msg.Payload)
		return m, m.logListener.Listen()

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		before := m.list.SelectedID()
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		if m.list.SelectedID() != before {
			m.setFocus(paneList)
		}
		return m, cmd
	}

	// Controller-owned messages. Each controller ignores the other's.
	var formCmd, listCmd tea.Cmd
	m.form, formCmd = m.form.Update(msg)
	m.list, listCmd = m.list.Update(msg)
	return m, tea.Batch(formCmd, listCmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.App.Quit) {
		return m, tea.Quit
	}

	if m.logs.Visible() {
		m.logs = m.logs.Update(msg)
		return m, nil
	}
	if m.opts.Debug && key.Matches(msg, keys.App.Logs) {
		m.logs = m.logs.Toggle()
		return m, nil
	}

	if m.help != nil {
		if key.Matches(msg, keys.App.Help) || msg.Type == tea.KeyEsc {
			m.help = nil
		}
		return m, nil
	}

	if m.list.ConfirmOpen() {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, keys.App.SwitchPane) {
		if m.focus == paneForm {
			m.setFocus(paneList)
		} else {
			m.setFocus(paneForm)
		}
		return m, nil
	}

	if !m.form.Typing() || m.focus == paneList {
		switch {
		case key.Matches(msg, keys.App.Help):
			h := markdown.NewHelp(keys.HelpMarkdown(), max(min(m.width-8, 72), 30), m.opts.HelpStyle)
			m.help = &h
			return m, nil
		case m.focus == paneList && key.Matches(msg, keys.App.QuitList):
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	if m.focus == paneList {
		m.list, cmd = m.list.Update(msg)
	} else {
		m.form, cmd = m.form.Update(msg)
	}
	return m, cmd
}

// bumpRefresh increments the refresh counter and hands it to the list.
func (m Model) bumpRefresh(reason string, extra ...tea.Cmd) (tea.Model, tea.Cmd) {
	m.refresh++
	log.Debug(log.CatUI, "refresh", "reason", reason, "counter", m.refresh)
	var cmd tea.Cmd
	m.list, cmd = m.list.SetRefreshSignal(m.refresh)
	return m, tea.Batch(append(extra, cmd)...)
}

func (m Model) reloadConfig(path string) (tea.Model, tea.Cmd) {
	wait := watcher.WaitCmd(path, m.watchCh)

	cfg, err := config.ReadFile(path)
	if err != nil {
		log.ErrorErr(log.CatConfig, "config reload failed", err, "path", path)
		m.toaster = m.toaster.Show("Config reload failed: "+err.Error(), toaster.StyleError)
		return m, tea.Batch(wait, m.toaster.ScheduleDismiss(toaster.DefaultDuration))
	}

	url := config.ResolveBaseURL(m.opts.BaseURLFlag, cfg.BaseURL)
	if m.opts.Client == nil || url == m.opts.Client.BaseURL() {
		log.Debug(log.CatConfig, "config changed, base URL unchanged", "path", path)
		return m, wait
	}

	m.opts.Client.SetBaseURL(url)
	log.Info(log.CatConfig, "base URL reloaded", "url", url)
	m.toaster = m.toaster.Show("Registry is now "+url, toaster.StyleInfo)
	return m.bumpRefresh("base url changed", wait, m.toaster.ScheduleDismiss(toaster.DefaultDuration))
}

func (m *Model) layout() {
	formW, listW, paneH := m.paneSizes()
	m.form.SetWidth(formW - 2)
	m.list = m.list.SetSize(listW-2, paneH-2)
}

func (m Model) paneSizes() (formW, listW, paneH int) {
	formW = min(max(m.width*2/5, 36), 60)
	if m.width-formW < 30 {
		formW = max(m.width/2, 1)
	}
	return formW, max(m.width-formW, 1), max(m.height-1, 3)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	formW, listW, paneH := m.paneSizes()

	left := styles.RenderPane(m.form.View(), "Add Person", formW, paneH, m.focus == paneForm)
	title := "Persons"
	if m.list.State() == personlist.StateReady {
		title = fmt.Sprintf("Persons (%d)", len(m.list.Persons()))
	}
	right := styles.RenderPane(m.list.View(), title, listW, paneH, m.focus == paneList)

	status := keys.RenderShortHelp(keys.ShortHelp(m.focus == paneList))
	if entries := m.logs.Entries(); m.opts.Debug && len(entries) > 0 {
		status = entries[len(entries)-1]
	}
	view := lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n" +
		lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(styles.TruncateString(status, m.width))

	view = m.list.ConfirmOverlay(view, m.width, m.height)
	view = m.toaster.Overlay(view, m.width, m.height)
	if m.help != nil {
		view = m.help.Overlay(view, m.width, m.height)
	}
	view = m.logs.Overlay(view)
	return zone.Scan(view)
}

// Close stops the watcher and every listener.
func (m *Model) Close() error {
	m.cancel()
	m.added.Close()
	if m.watcher != nil {
		return m.watcher.Stop()
	}
	return nil
}
