// Package form implements the Add Person form: the draft of a new record,
// its required-field validation and submission through the registry.
//
// The form moves through four states. It starts in StateEditing. Submit
// moves to StateSubmitting only when name and person id are present. A
// successful create clears the draft, publishes an added event and shows
// StateSucceeded for SuccessDisplayInterval. A failed create keeps the
// draft and stays in StateFailed until the next edit or Reset.
package form

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opticshield/opticshield/internal/log"
	"github.com/opticshield/opticshield/internal/person"
	"github.com/opticshield/opticshield/internal/pubsub"
	"github.com/opticshield/opticshield/internal/registry"
	"github.com/opticshield/opticshield/internal/ui/styles"
)

// SuccessDisplayInterval is how long the success banner stays up.
const SuccessDisplayInterval = 3 * time.Second

// Banner texts.
const (
	MsgRequired   = "Name and Person ID are required"
	MsgSucceeded  = "Person added successfully!"
	MsgFailed     = "Failed to add person"
	MsgSubmitting = "Submitting..."
)

// State is the form's submission state.
type State int

const (
	StateEditing State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ValidationError is returned by Submit when required fields are blank.
// It never leaves the form.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string { return MsgRequired }

// ImageEncoder converts a file into a data URI.
type ImageEncoder interface {
	Encode(path string) (string, error)
}

// Field identifies a focusable element.
type Field int

const (
	FieldName Field = iota
	FieldPersonID
	FieldClassification
	FieldImagePath
	FieldMetadata
	FieldSubmit
	FieldReset
	fieldCount
)

// Messages produced by the form's commands.
type (
	submitResultMsg struct {
		generation int
		person     person.Person
		err        error
	}
	imageEncodedMsg struct {
		seq  int
		path string
		uri  string
		err  error
	}
	successExpiredMsg struct {
		seq int
	}
)

// Model is the form state holder. The zero value is not usable; call New.
type Model struct {
	ctx      context.Context
	registry registry.Registry
	encoder  ImageEncoder
	added    pubsub.Publisher[person.Person]

	draft   person.Draft
	state   State
	err     error
	warning string // image problems; never blocks submission

	// generation increments on Reset so a create that was in flight reports
	// back without touching the fresh draft.
	generation int
	encodeSeq  int
	successSeq int

	name     textinput.Model
	personID textinput.Model
	image    textinput.Model
	metadata textarea.Model
	spinner  spinner.Model

	focus   Field
	focused bool
	width   int
}

// New creates a form. added receives a CreatedEvent for every successful
// create; it may be nil.
func New(ctx context.Context, reg registry.Registry, enc ImageEncoder, added pubsub.Publisher[person.Person]) Model {
	name := textinput.New()
	name.Prompt = ""
	name.Placeholder = "Full name"

	personID := textinput.New()
	personID.Prompt = ""
	personID.Placeholder = "Person ID"

	image := textinput.New()
	image.Prompt = ""
	image.Placeholder = "Path to image, enter to attach"

	metadata := textarea.New()
	metadata.Placeholder = "Optional notes / role / remarks"
	metadata.ShowLineNumbers = false
	metadata.Prompt = ""
	metadata.SetHeight(3)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(styles.SpinnerColor)

	m := Model{
		ctx:      ctx,
		registry: reg,
		encoder:  enc,
		added:    added,
		draft:    person.NewDraft(),
		name:     name,
		personID: personID,
		image:    image,
		metadata: metadata,
		spinner:  sp,
		focused:  true,
	}
	m.SetWidth(48)
	m.applyFocus()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Draft returns a copy of the current draft.
func (m Model) Draft() person.Draft { return m.draft }

// State returns the submission state.
func (m Model) State() State { return m.state }

// Err returns the validation or submission error shown in the banner.
func (m Model) Err() error { return m.err }

// Warning returns the image warning, if any.
func (m Model) Warning() string { return m.warning }

// Focus returns the focused field.
func (m Model) Focus() Field { return m.focus }

// Typing reports whether the focused field consumes printable keys.
func (m Model) Typing() bool {
	switch m.focus {
	case FieldName, FieldPersonID, FieldImagePath, FieldMetadata:
		return m.focused
	}
	return false
}

// Submitting reports whether a create is in flight for the current draft.
func (m Model) Submitting() bool { return m.state == StateSubmitting }

// SetFocused marks whether the form pane owns the keyboard.
func (m Model) SetFocused(focused bool) Model {
	m.focused = focused
	m.applyFocus()
	return m
}

// SetWidth sets the inner width of the pane the form renders into.
func (m *Model) SetWidth(width int) {
	m.width = width
	inner := max(width-4, 8)
	m.name.Width = inner
	m.personID.Width = inner
	m.image.Width = inner
	m.metadata.SetWidth(inner)
}

// FocusField moves focus to f.
func (m Model) FocusField(f Field) Model {
	if f < 0 || f >= fieldCount {
		return m
	}
	m.focus = f
	m.applyFocus()
	return m
}

func (m *Model) applyFocus() {
	m.name.Blur()
	m.personID.Blur()
	m.image.Blur()
	m.metadata.Blur()
	if !m.focused {
		return
	}
	switch m.focus {
	case FieldName:
		m.name.Focus()
	case FieldPersonID:
		m.personID.Focus()
	case FieldImagePath:
		m.image.Focus()
	case FieldMetadata:
		m.metadata.Focus()
	}
}

// SetName edits the name the same way typing does.
func (m Model) SetName(v string) Model {
	m.name.SetValue(v)
	return m.edited()
}

// SetPersonID edits the person id.
func (m Model) SetPersonID(v string) Model {
	m.personID.SetValue(v)
	return m.edited()
}

// SetMetadata edits the notes.
func (m Model) SetMetadata(v string) Model {
	m.metadata.SetValue(v)
	return m.edited()
}

// SetClassification picks the flag; invalid values are ignored.
func (m Model) SetClassification(c person.Classification) Model {
	if !c.Valid() {
		return m
	}
	m.draft.Classification = c
	return m.edited()
}

// SelectImage binds path as the draft's image file and starts encoding it.
// A previous image is dropped immediately; an empty path just clears it.
func (m Model) SelectImage(path string) (Model, tea.Cmd) {
	m.image.SetValue(path)
	m.encodeSeq++
	m.draft.ImagePath = path
	m.draft.Image = ""
	m.warning = ""
	m = m.edited()
	if path == "" || m.encoder == nil {
		return m, nil
	}

	seq, enc := m.encodeSeq, m.encoder
	log.Debug(log.CatEncoder, "encoding image", "path", path, "seq", seq)
	return m, func() tea.Msg {
		uri, err := enc.Encode(path)
		return imageEncodedMsg{seq: seq, path: path, uri: uri, err: err}
	}
}

// edited syncs the draft from the inputs. Any edit leaves the failed state.
func (m Model) edited() Model {
	m.draft.Name = m.name.Value()
	m.draft.PersonID = m.personID.Value()
	m.draft.Metadata = m.metadata.Value()
	if m.state == StateFailed {
		m.state = StateEditing
		m.err = nil
	}
	if _, ok := m.err.(*ValidationError); ok {
		m.err = nil
	}
	return m
}

// Submit validates the draft and, when valid, starts the create call.
// It is ignored while a create for this draft is in flight.
func (m Model) Submit() (Model, tea.Cmd) {
	if m.state == StateSubmitting {
		return m, nil
	}
	m = m.edited()
	if m.draft.MissingRequired() {
		var missing []string
		if isBlank(m.draft.Name) {
			missing = append(missing, "name")
		}
		if isBlank(m.draft.PersonID) {
			missing = append(missing, "personId")
		}
		m.state = StateEditing
		m.err = &ValidationError{Fields: missing}
		return m, nil
	}

	m.state = StateSubmitting
	m.err = nil
	req := registry.RequestFromDraft(m.draft)
	gen, reg, ctx := m.generation, m.registry, m.ctx
	log.Info(log.CatForm, "submitting person", "name", req.Name, "flag", req.Classification, "has_image", req.Image != "")

	create := func() tea.Msg {
		p, err := reg.Create(ctx, req)
		return submitResultMsg{generation: gen, person: p, err: err}
	}
	return m, tea.Batch(create, m.spinner.Tick)
}

// Reset clears every draft field, the bound file, the banner and any
// pending image encoding, from any state.
func (m Model) Reset() Model {
	m.generation++
	m.encodeSeq++
	m.successSeq++
	m.clearDraft()
	m.state = StateEditing
	m.err = nil
	log.Debug(log.CatForm, "form reset", "generation", m.generation)
	return m
}

func (m *Model) clearDraft() {
	m.draft = person.NewDraft()
	m.warning = ""
	m.name.Reset()
	m.personID.Reset()
	m.image.Reset()
	m.metadata.Reset()
}

// Update handles the form's own messages and, when focused, key presses.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submitResultMsg:
		return m.handleSubmitResult(msg)

	case imageEncodedMsg:
		if msg.seq != m.encodeSeq {
			log.Debug(log.CatEncoder, "discarding superseded image", "path", msg.path)
			return m, nil
		}
		if msg.err != nil {
			log.ErrorErr(log.CatEncoder, "image encoding failed", msg.err, "path", msg.path)
			m.draft.Image = ""
			m.warning = "Image not attached: " + msg.err.Error()
			return m, nil
		}
		m.draft.Image = msg.uri
		m.warning = ""
		return m, nil

	case successExpiredMsg:
		if msg.seq == m.successSeq && m.state == StateSucceeded {
			m.state = StateEditing
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != StateSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleSubmitResult(msg submitResultMsg) (Model, tea.Cmd) {
	if msg.err == nil && m.added != nil {
		m.added.Publish(pubsub.CreatedEvent, msg.person)
	}
	if msg.generation != m.generation {
		log.Debug(log.CatForm, "create finished after reset", "error", msg.err)
		return m, nil
	}
	if msg.err != nil {
		log.ErrorErr(log.CatForm, "create failed", msg.err)
		m.state = StateFailed
		m.err = msg.err
		return m, nil
	}

	log.Info(log.CatForm, "person added", "id", msg.person.ID)
	m.encodeSeq++
	m.clearDraft()
	m.err = nil
	m.state = StateSucceeded
	m.successSeq++
	seq := m.successSeq
	return m, tea.Tick(SuccessDisplayInterval, func(time.Time) tea.Msg {
		return successExpiredMsg{seq: seq}
	})
}

// Banner returns the status line text and whether it is an error.
func (m Model) Banner() (string, bool) {
	switch {
	case m.state == StateSubmitting:
		return MsgSubmitting, false
	case m.state == StateSucceeded:
		return MsgSucceeded, false
	case m.state == StateFailed:
		return registry.UserMessage(m.err, MsgFailed), true
	case m.err != nil:
		return m.err.Error(), true
	}
	return "", false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
