package taskform

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/onetask/internal/engine"
	"github.com/nhle/onetask/internal/model"
	"github.com/nhle/onetask/internal/theme"
)

// Mode selects which fields the form shows.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
	ModeLink
)

// TaskCreatedMsg is dispatched when a new task is submitted.
type TaskCreatedMsg struct {
	Draft engine.TaskDraft
}

// TaskUpdatedMsg is dispatched when an edited task is submitted.
type TaskUpdatedMsg struct {
	ID    string
	Draft engine.EditDraft
}

// LinkAddedMsg is dispatched when a custom link is submitted.
type LinkAddedMsg struct {
	TaskID      string
	URL         string
	Description string
}

// FormCancelMsg is dispatched when the user cancels the form.
type FormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title           string
	dueDate         string
	priority        model.Priority
	note            string
	linkURL         string
	linkDescription string
}

// Model is the Bubble Tea model for the task create, edit and link forms.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	mode   Mode
	taskID string
	width  int
	height int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityNone},
		width:  width,
		height: height,
	}
}

// Mode returns the mode of the form last started.
func (m Model) Mode() Mode { return m.mode }

// StartCreate initializes the form for a new task. title pre-fills the title
// field, for example with dictated text.
func (m *Model) StartCreate(title string) tea.Cmd {
	m.mode = ModeCreate
	m.taskID = ""
	*m.fb = formBindings{title: title, priority: model.PriorityNone}
	m.form = m.build(
		m.titleField(),
		m.dueDateField(),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(priorityOptions()...).
			Value(&m.fb.priority),
		m.noteField(),
		m.linkURLField(),
		m.linkDescriptionField(),
	)
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing task. Existing
// links are kept; a filled-in link is attached as an extra one.
func (m *Model) StartEdit(t model.Task) tea.Cmd {
	m.mode = ModeEdit
	m.taskID = t.ID
	*m.fb = formBindings{title: t.Title, note: t.Note, priority: t.Priority}
	if t.DueDate != nil {
		m.fb.dueDate = t.DueDate.String()
	}
	m.form = m.build(
		m.titleField(),
		m.dueDateField(),
		m.noteField(),
		m.linkURLField(),
		m.linkDescriptionField(),
	)
	return m.form.Init()
}

// StartLink initializes the form for attaching a link to a task.
func (m *Model) StartLink(taskID string) tea.Cmd {
	m.mode = ModeLink
	m.taskID = taskID
	*m.fb = formBindings{}
	m.form = m.build(
		huh.NewInput().
			Title("URL").
			Placeholder("https://...").
			Value(&m.fb.linkURL).
			Validate(validateURL),
		m.linkDescriptionField(),
	)
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		return m, func() tea.Msg { return FormCancelMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return FormCancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	switch m.mode {
	case ModeEdit:
		titleText = "Edit Task"
	case ModeLink:
		titleText = "Attach Link"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) build(fields ...huh.Field) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) titleField() huh.Field {
	return huh.NewInput().
		Title("Title").
		Placeholder("What needs to be done?").
		Value(&m.fb.title).
		Validate(validateTitle)
}

func (m *Model) dueDateField() huh.Field {
	return huh.NewInput().
		Title("Due Date").
		Placeholder("YYYY-MM-DD (optional)").
		Value(&m.fb.dueDate).
		Validate(validateOptionalDate)
}

func (m *Model) noteField() huh.Field {
	return huh.NewText().
		Title("Note").
		Placeholder("Optional details...").
		Value(&m.fb.note)
}

func (m *Model) linkURLField() huh.Field {
	return huh.NewInput().
		Title("Link").
		Placeholder("https://... (optional)").
		Value(&m.fb.linkURL).
		Validate(validateOptionalURL)
}

func (m *Model) linkDescriptionField() huh.Field {
	return huh.NewInput().
		Title("Link Description").
		Placeholder("Defaults to the site name").
		Value(&m.fb.linkDescription)
}

func priorityOptions() []huh.Option[model.Priority] {
	opts := make([]huh.Option[model.Priority], len(model.Priorities))
	for i, p := range model.Priorities {
		opts[i] = huh.NewOption(p.Label(), p)
	}
	return opts
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb
	id := m.taskID

	switch m.mode {
	case ModeEdit:
		draft := engine.EditDraft{
			Title:           fb.title,
			DueDate:         fb.dueDate,
			Note:            fb.note,
			LinkURL:         fb.linkURL,
			LinkDescription: fb.linkDescription,
		}
		return func() tea.Msg { return TaskUpdatedMsg{ID: id, Draft: draft} }
	case ModeLink:
		return func() tea.Msg {
			return LinkAddedMsg{TaskID: id, URL: fb.linkURL, Description: fb.linkDescription}
		}
	default:
		draft := engine.TaskDraft{
			Title:           fb.title,
			DueDate:         fb.dueDate,
			Priority:        fb.priority,
			Note:            fb.note,
			LinkURL:         fb.linkURL,
			LinkDescription: fb.linkDescription,
		}
		return func() tea.Msg { return TaskCreatedMsg{Draft: draft} }
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateTitle(s string) error {
	_, err := model.ValidateTitle(s)
	return err
}

func validateOptionalDate(s string) error {
	_, err := model.ParseOptionalDate(s)
	return err
}

func validateURL(s string) error {
	_, err := model.ParseLinkURL(s)
	return err
}

func validateOptionalURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validateURL(s)
}
