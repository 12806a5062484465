package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/onetask/internal/engine"
	"github.com/nhle/onetask/internal/keys"
	"github.com/nhle/onetask/internal/model"
	appsync "github.com/nhle/onetask/internal/sync"
	"github.com/nhle/onetask/internal/ui"
	"github.com/nhle/onetask/internal/ui/command"
	"github.com/nhle/onetask/internal/ui/focus"
	helpview "github.com/nhle/onetask/internal/ui/help"
	"github.com/nhle/onetask/internal/ui/suggest"
	"github.com/nhle/onetask/internal/ui/settings"
	"github.com/nhle/onetask/internal/ui/taskform"
	"github.com/nhle/onetask/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewFocus ViewState = iota
	ViewList
	ViewHelp
	ViewCommand
	ViewTaskForm
	ViewSuggest
	ViewSettings
)

// Options configures the root model.
type Options struct {
	// NoService hides remote features behind setup instructions.
	NoService bool

	// Pump delivers engine events to the UI. A default pump is created when
	// nil.
	Pump *appsync.Pump

	// Settings backs the settings view. The view is unavailable when nil.
	Settings *settings.Deps
}

// Model is the root Bubble Tea model that manages view routing, layout and
// access to the engine.
type Model struct {
	ctx          context.Context
	engine       *engine.Engine
	pump         *appsync.Pump
	unsubscribe  func()
	currentView  ViewState
	previousView ViewState
	frame        ui.Frame
	keys         *keys.KeyMap
	focus        focus.Model
	taskList     tasklist.Model
	helpView     helpview.Model
	commandView  command.Model
	formView     taskform.Model
	suggestView  suggest.Model
	settingsView settings.Model
	hasSettings  bool
	ready        bool
	notice       string
	noticeSeq    int
	celebSeq     int
	placing      int
}

// New creates the root model over eng and subscribes to its events.
func New(ctx context.Context, eng *engine.Engine, opts Options) Model {
	k := keys.DefaultKeyMap()
	p := opts.Pump
	if p == nil {
		p = appsync.New(appsync.DefaultInterval, eng.Now)
	}

	m := Model{
		ctx:         ctx,
		engine:      eng,
		pump:        p,
		unsubscribe: eng.Subscribe(p.Publish),
		currentView: ViewFocus,
		keys:        k,
		focus:       focus.New(k, 80, 22),
		taskList:    tasklist.New(k, 80, 22),
		helpView:    helpview.New(k, 80, 22),
		commandView: command.New(80, 22),
		formView:    taskform.New(80, 22),
		suggestView: suggest.New(k, opts.NoService, 80, 22),
	}
	if opts.Settings != nil {
		m.settingsView = settings.New(*opts.Settings, k, 80, 22)
		m.hasSettings = true
	}
	m.refresh()
	return m
}

// Init starts listening for engine events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.pump.Start(),
		tea.SetWindowTitle("onetask"),
	)
}

// Update handles messages and re-reads engine state afterwards.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.refresh()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.frame = ui.NewFrame(msg.Width, msg.Height)
		m.ready = true
		w, h := m.frame.BodyWidth(), m.frame.BodyHeight()
		m.focus.SetSize(w, h)
		m.taskList.SetSize(w, h)
		m.taskList.SetOrigin(m.frame.BodyTop())
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.formView.SetSize(w, h)
		m.suggestView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.EventMsg:
		cmd := m.handleEvent(msg.Event)
		return m, tea.Batch(cmd, m.pump.WaitForNext())

	case appsync.DayChangedMsg:
		var cmd tea.Cmd
		if err := m.engine.ReconcileStreak(m.ctx); err != nil {
			cmd = m.setNotice("Could not update streak.")
		}
		return m, tea.Batch(cmd, m.pump.WaitForNext())

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case celebrationDoneMsg:
		if msg.seq == m.celebSeq {
			m.focus.SetCelebration(nil)
		}
		return m, nil

	case completionDueMsg:
		m.engine.FinishCompletion(m.ctx, msg.taskID)
		return m, nil

	case taskPlacedMsg:
		m.placing--
		cmd := m.insertPlaced(msg.draft, msg.at)
		return m, cmd

	case prioritizedMsg:
		// The engine reports the outcome through a notice.
		_ = m.engine.FinishPrioritize(m.ctx, msg.ranked, msg.err)
		return m, nil

	// Task list
	case tasklist.SelectedTaskMsg:
		m.engine.Select(msg.Index)
		m.currentView = ViewFocus
		return m, nil

	case tasklist.BackMsg:
		m.currentView = ViewFocus
		return m, nil

	case tasklist.MoveMsg:
		m.move(msg)
		return m, nil

	case tasklist.DragStartMsg:
		m.engine.DragStart(msg.Index)
		return m, nil

	case tasklist.DropMsg:
		m.engine.Drop(m.ctx, msg.Target)
		return m, nil

	case tasklist.DragEndMsg:
		m.engine.DragEnd()
		return m, nil

	case tasklist.TouchStartMsg:
		m.engine.TouchStart(msg.Index)
		return m, nil

	case tasklist.TouchMoveMsg:
		m.engine.TouchMove(msg.X, msg.Y, m.taskList)
		return m, nil

	case tasklist.TouchEndMsg:
		m.engine.TouchEnd(m.ctx, msg.X, msg.Y, m.taskList)
		return m, nil

	// Focus view
	case focus.RemoveLinkMsg:
		if err := m.engine.RemoveLink(m.ctx, msg.TaskID, msg.LinkID); err != nil {
			cmd := m.setNotice(errorNotice(err))
			return m, cmd
		}
		return m, nil

	// Forms
	case taskform.TaskCreatedMsg:
		m.currentView = m.previousView
		cmd := m.addTask(msg.Draft)
		return m, cmd

	case taskform.TaskUpdatedMsg:
		m.currentView = m.previousView
		if err := m.engine.EditTask(m.ctx, msg.ID, msg.Draft); err != nil {
			cmd := m.setNotice(errorNotice(err))
			return m, cmd
		}
		return m, nil

	case taskform.LinkAddedMsg:
		m.currentView = m.previousView
		if _, err := m.engine.AttachLink(m.ctx, msg.TaskID, msg.URL, msg.Description); err != nil {
			cmd := m.setNotice(errorNotice(err))
			return m, cmd
		}
		cmd := m.setNotice("Link added.")
		return m, cmd

	case taskform.FormCancelMsg:
		m.currentView = m.previousView
		return m, nil

	// Suggestions
	case suggest.LoadedMsg:
		var cmd tea.Cmd
		m.suggestView, cmd = m.suggestView.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		// Each spinner ignores ticks carrying another spinner's id.
		var suggestCmd, settingsCmd tea.Cmd
		m.suggestView, suggestCmd = m.suggestView.Update(msg)
		if m.hasSettings {
			m.settingsView, settingsCmd = m.settingsView.Update(msg)
		}
		return m, tea.Batch(suggestCmd, settingsCmd)

	case suggest.SaveMsg:
		if _, err := m.engine.SaveSuggestedLink(m.ctx, msg.TaskID, msg.Link); err != nil {
			cmd := m.setNotice(errorNotice(err))
			return m, cmd
		}
		return m, nil

	case suggest.RefreshMsg:
		cmd := m.fetchSuggestions(msg.TaskID, true)
		return m, cmd

	case suggest.AskMsg:
		u, err := m.engine.AskURL(m.ctx, msg.TaskID)
		if err != nil {
			cmd := m.setNotice(errorNotice(err))
			return m, cmd
		}
		m.suggestView.SetAskURL(u)
		return m, nil

	case suggest.CloseMsg:
		m.currentView = ViewFocus
		return m, nil

	// Settings
	case settings.DoneMsg:
		m.currentView = m.previousView
		return m, nil

	case settings.SavedMsg:
		cmd := m.setNotice("Settings saved. Restart onetask to apply them.")
		return m, cmd

	// Command palette
	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(msg)

	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that are not owned by a sub-view.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		cmd := m.quit()
		return m, cmd, true
	}

	// Text-entry views own every other key.
	switch m.currentView {
	case ViewTaskForm, ViewCommand:
		if msg.String() == "esc" && m.currentView == ViewCommand {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false
	case ViewSuggest, ViewSettings:
		return m, nil, false
	case ViewHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
		}
		return m, nil, true
	}

	// ViewFocus and ViewList share these.
	switch {
	case key.Matches(msg, m.keys.Quit):
		cmd := m.quit()
		return m, cmd, true

	case key.Matches(msg, m.keys.Help):
		m.open(ViewHelp)
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.open(ViewCommand)
		cmd := m.commandView.Focus()
		return m, cmd, true

	case key.Matches(msg, m.keys.Add):
		cmd := m.openCreate("")
		return m, cmd, true

	case key.Matches(msg, m.keys.Prioritize):
		cmd := m.prioritize()
		return m, cmd, true

	case key.Matches(msg, m.keys.Settings):
		cmd := m.openSettings()
		return m, cmd, true
	}

	if m.currentView == ViewList {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		m.engine.Next()
		return m, nil, true

	case key.Matches(msg, m.keys.Prev):
		m.engine.Prev()
		return m, nil, true

	case key.Matches(msg, m.keys.Done):
		cmd := m.complete()
		return m, cmd, true

	case key.Matches(msg, m.keys.Edit):
		t, ok := m.engine.Current()
		if !ok {
			return m, nil, true
		}
		m.open(ViewTaskForm)
		cmd := m.formView.StartEdit(t)
		return m, cmd, true

	case key.Matches(msg, m.keys.Link):
		t, ok := m.engine.Current()
		if !ok {
			return m, nil, true
		}
		m.open(ViewTaskForm)
		cmd := m.formView.StartLink(t.ID)
		return m, cmd, true

	case key.Matches(msg, m.keys.List):
		m.taskList.FocusCurrent()
		m.currentView = ViewList
		return m, nil, true

	case key.Matches(msg, m.keys.Suggest):
		cmd := m.openSuggest()
		return m, cmd, true

	case key.Matches(msg, m.keys.Ask):
		t, ok := m.engine.Current()
		if !ok {
			return m, nil, true
		}
		u, err := m.engine.AskURL(m.ctx, t.ID)
		if err != nil {
			cmd := m.setNotice(errorNotice(err))
			return m, cmd, true
		}
		cmd := m.setNotice(u)
		return m, cmd, true

	case key.Matches(msg, m.keys.Dictate):
		text, err := m.engine.Dictate(m.ctx)
		if err != nil {
			// Unavailability is reported through an engine notice.
			return m, nil, true
		}
		cmd := m.openCreate(text)
		return m, cmd, true
	}
	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewFocus:
		m.focus, cmd = m.focus.Update(msg)
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewTaskForm:
		m.formView, cmd = m.formView.Update(msg)
	case ViewSuggest:
		m.suggestView, cmd = m.suggestView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

// open switches to v, remembering where to return.
func (m *Model) open(v ViewState) {
	if m.currentView == v {
		return
	}
	m.previousView = m.currentView
	m.currentView = v
}

func (m *Model) quit() tea.Cmd {
	m.pump.Stop()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	return tea.Quit
}

// refresh copies engine state into the views.
func (m *Model) refresh() {
	now := m.engine.Now()
	var cur *model.Task
	if t, ok := m.engine.Current(); ok {
		cur = &t
	}
	m.focus.SetSnapshot(focus.Snapshot{
		Task:       cur,
		Index:      m.engine.CurrentIndex(),
		Total:      m.engine.Len(),
		Completing: cur != nil && m.engine.IsCompleting(cur.ID),
		Now:        now,
	})
	m.taskList.SetSnapshot(tasklist.Snapshot{
		Tasks:     m.engine.Tasks(),
		Current:   m.engine.CurrentIndex(),
		Dragging:  m.engine.Dragging(),
		Highlight: m.engine.Highlight(),
		Now:       now,
	})
}

// View renders the active view inside the screen frame.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.frame.Header("onetask", m.status())
	content := m.renderContent()
	statusBar := m.frame.StatusBar(m.keyHints(), m.notice != "")

	return m.frame.Compose(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewFocus:
		return m.focus.View()
	case ViewList:
		return m.taskList.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewTaskForm:
		return m.formView.View()
	case ViewSuggest:
		return m.suggestView.View()
	case ViewSettings:
		return m.settingsView.View()
	default:
		return ""
	}
}

// status returns the right-hand header text.
func (m Model) status() string {
	s := fmt.Sprintf("🔥 %d day streak", m.engine.Streak().Count)
	if m.engine.Prioritizing() {
		s += " · prioritizing…"
	}
	if m.placing > 0 {
		s += " · placing…"
	}
	return s
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.notice != "" {
		return m.notice
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewTaskForm:
		return "enter submit | esc cancel"
	case ViewSuggest:
		return "enter save | r new links | a ask the web | esc close"
	case ViewSettings:
		return "e edit | c test connection | d remove token | esc back"
	case ViewList:
		if m.engine.Dragging() >= 0 {
			return "j/k choose spot | space drop | esc cancel"
		}
		return "enter focus | J/K move | space grab | drag with mouse | esc back"
	default:
		return "h/l prev/next | x done | n new | e edit | s links | t all | p prioritize | ? help"
	}
}
