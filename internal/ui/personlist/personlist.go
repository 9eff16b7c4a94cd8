// Package personlist implements the Persons list: the snapshot of every
// record on the server, refetched wholesale on mount, on every refresh
// signal change and after every row action.
//
// The snapshot is never patched locally. Overlapping fetches are applied in
// the order their responses arrive, so the last response to arrive decides
// what is shown.
package personlist

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/opticshield/opticshield/internal/log"
	"github.com/opticshield/opticshield/internal/person"
	"github.com/opticshield/opticshield/internal/registry"
	"github.com/opticshield/opticshield/internal/ui/modal"
	"github.com/opticshield/opticshield/internal/ui/styles"
	"github.com/opticshield/opticshield/internal/ui/table"
)

// Display texts.
const (
	MsgLoading     = "Loading persons..."
	MsgFetchFailed = "Failed to fetch persons"
	MsgEmpty       = "No persons found"
	MsgRetryHint   = "press r to retry"
)

// State is the list's fetch state.
type State int

const (
	StateLoading State = iota
	StateReady
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}

type (
	listLoadedMsg struct {
		seq     int
		persons []person.Person
		err     error
	}
	// mutationDoneMsg reports a finished update or remove. Its outcome only
	// reaches the log; the refetch that follows shows the server's truth.
	mutationDoneMsg struct {
		op  string
		id  string
		err error
	}
)

// Model is the list state holder. Create it with New.
type Model struct {
	ctx      context.Context
	registry registry.Registry

	state   State
	persons []person.Person
	err     error

	refresh  int // last refresh signal seen
	fetchSeq int

	selectedID string
	confirm    *modal.Model

	table   table.Model[person.Person]
	spinner spinner.Model
	zoneID  string

	focused bool
	width   int
	height  int
}

// New creates a list in the loading state. Init issues the first fetch.
func New(ctx context.Context, reg registry.Registry) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(styles.SpinnerColor)

	m := Model{
		ctx:      ctx,
		registry: reg,
		state:    StateLoading,
		spinner:  sp,
		zoneID:   zone.NewPrefix(),
	}
	m.table = table.New(table.Config[person.Person]{
		Columns:      columns(),
		EmptyMessage: MsgEmpty,
		ZoneID:       func(p person.Person) string { return m.rowZone(p.ID) },
	})
	return m
}

func (m Model) rowZone(id string) string {
	return m.zoneID + "row:" + id
}

// Init fetches the first snapshot.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(m.fetchSeq), m.spinner.Tick)
}

// State returns the fetch state.
func (m Model) State() State { return m.state }

// Persons returns the current snapshot. It is empty while errored.
func (m Model) Persons() []person.Person { return m.persons }

// Err returns the last fetch error while errored.
func (m Model) Err() error { return m.err }

// SelectedID returns the id of the selected record, or "".
func (m Model) SelectedID() string { return m.selectedID }

// RefreshSignal returns the last refresh signal value seen.
func (m Model) RefreshSignal() int { return m.refresh }

// ConfirmOpen reports whether a delete confirmation is showing.
func (m Model) ConfirmOpen() bool { return m.confirm != nil }

// SetFocused marks whether the list owns the keyboard.
func (m Model) SetFocused(focused bool) Model {
	m.focused = focused
	return m
}

// SetSize sets the inner size of the pane the list renders into.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.table = m.table.SetSize(width, max(height-2, 1))
	return m
}

// SetRefreshSignal refetches when n differs from the last value seen.
func (m Model) SetRefreshSignal(n int) (Model, tea.Cmd) {
	if n == m.refresh {
		return m, nil
	}
	m.refresh = n
	log.Debug(log.CatList, "refresh signal changed", "value", n)
	return m.Fetch()
}

// Fetch starts a full list fetch and enters the loading state.
func (m Model) Fetch() (Model, tea.Cmd) {
	m.fetchSeq++
	m.state = StateLoading
	return m, tea.Batch(m.fetchCmd(m.fetchSeq), m.spinner.Tick)
}

// Retry re-issues the same fetch after a failure.
func (m Model) Retry() (Model, tea.Cmd) {
	log.Info(log.CatList, "retrying fetch", "after", m.err)
	return m.Fetch()
}

func (m Model) fetchCmd(seq int) tea.Cmd {
	reg, ctx := m.registry, m.ctx
	return func() tea.Msg {
		persons, err := reg.List(ctx)
		return listLoadedMsg{seq: seq, persons: persons, err: err}
	}
}

// Cycle moves the record with id to the next classification, then refetches
// whatever the outcome.
func (m Model) Cycle(id string) (Model, tea.Cmd) {
	p, ok := m.find(id)
	if !ok || m.state != StateReady {
		return m, nil
	}
	next := p.Classification.Next()
	reg, ctx := m.registry, m.ctx
	log.Info(log.CatList, "cycling classification", "id", id, "from", p.Classification, "to", next)
	return m, func() tea.Msg {
		err := reg.UpdateClassification(ctx, id, next)
		return mutationDoneMsg{op: "update", id: id, err: err}
	}
}

// RequestDelete opens the confirmation for removing id. No request is made
// until the user confirms.
func (m Model) RequestDelete(id string) Model {
	p, ok := m.find(id)
	if !ok || m.state != StateReady {
		return m
	}
	name := p.Name
	if name == "" {
		name = p.ID
	}
	dlg := modal.New(modal.Config{
		Title:          "Delete person",
		Message:        "Delete " + name + " (" + p.ID + ")? This cannot be undone.",
		ConfirmLabel:   "Delete",
		ConfirmVariant: modal.ButtonDanger,
		Tag:            p.ID,
	})
	m.confirm = &dlg
	return m
}

func (m Model) remove(id string) tea.Cmd {
	reg, ctx := m.registry, m.ctx
	log.Info(log.CatList, "removing person", "id", id)
	return func() tea.Msg {
		err := reg.Remove(ctx, id)
		return mutationDoneMsg{op: "remove", id: id, err: err}
	}
}

// Update applies fetch results, mutation outcomes, confirmation answers and,
// when focused, key and mouse input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listLoadedMsg:
		return m.applyLoaded(msg), nil

	case mutationDoneMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatList, msg.op+" failed", msg.err, "id", msg.id)
		}
		return m.Fetch()

	case modal.SubmitMsg:
		if m.confirm == nil || m.confirm.Tag() != msg.Tag {
			return m, nil
		}
		m.confirm = nil
		return m, m.remove(msg.Tag)

	case modal.CancelMsg:
		if m.confirm != nil && m.confirm.Tag() == msg.Tag {
			log.Debug(log.CatList, "delete declined", "id", msg.Tag)
			m.confirm = nil
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.confirm != nil {
			dlg, cmd := m.confirm.Update(msg)
			m.confirm = &dlg
			return m, cmd
		}
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.confirm != nil {
			return m, nil
		}
		return m.handleMouse(msg), nil
	}
	return m, nil
}

func (m Model) applyLoaded(msg listLoadedMsg) Model {
	if msg.seq != m.fetchSeq {
		log.Debug(log.CatList, "applying out-of-order fetch result", "seq", msg.seq, "latest", m.fetchSeq)
	}
	if msg.err != nil {
		log.ErrorErr(log.CatList, "fetch failed", msg.err)
		m.state = StateErrored
		m.err = msg.err
		m.persons = nil
		m.table = m.table.SetRows(nil)
		return m
	}

	prev := m.selectedIndex()
	m.state = StateReady
	m.err = nil
	m.persons = msg.persons
	if m.persons == nil {
		m.persons = []person.Person{}
	}
	m.table = m.table.SetRows(m.persons)
	if _, ok := m.find(m.selectedID); !ok {
		m.selectedID = ""
		if len(m.persons) > 0 {
			m.selectedID = m.persons[min(max(prev, 0), len(m.persons)-1)].ID
		}
	}
	m.table = m.table.EnsureVisible(m.selectedIndex())
	log.Debug(log.CatList, "snapshot replaced", "count", len(m.persons))
	return m
}

func (m Model) find(id string) (person.Person, bool) {
	for _, p := range m.persons {
		if p.ID == id && id != "" {
			return p, true
		}
	}
	return person.Person{}, false
}

func (m Model) selectedIndex() int {
	for i, p := range m.persons {
		if p.ID == m.selectedID {
			return i
		}
	}
	return -1
}

// Select makes id the selected record when it is in the snapshot.
func (m Model) Select(id string) Model {
	if _, ok := m.find(id); ok {
		m.selectedID = id
		m.table = m.table.EnsureVisible(m.selectedIndex())
	}
	return m
}

func (m Model) moveSelection(delta int) Model {
	if len(m.persons) == 0 {
		return m
	}
	i := m.selectedIndex() + delta
	i = min(max(i, 0), len(m.persons)-1)
	return m.Select(m.persons[i].ID)
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m
	}
	for _, p := range m.persons {
		if z := zone.Get(m.rowZone(p.ID)); z != nil && z.InBounds(msg) {
			return m.Select(p.ID)
		}
	}
	return m
}
