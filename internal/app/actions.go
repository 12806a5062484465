package app

import (
	"errors"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/onetask/internal/engine"
	"github.com/nhle/onetask/internal/model"
	"github.com/nhle/onetask/internal/ordering"
	"github.com/nhle/onetask/internal/streak"
	"github.com/nhle/onetask/internal/ui/command"
	"github.com/nhle/onetask/internal/ui/suggest"
	"github.com/nhle/onetask/internal/ui/tasklist"
)

// noticeDuration is how long a notice replaces the key hints.
const noticeDuration = 4 * time.Second

// noticeExpiredMsg clears a notice unless a newer one replaced it.
type noticeExpiredMsg struct{ seq int }

// celebrationDoneMsg hides a milestone banner unless a newer one replaced it.
type celebrationDoneMsg struct{ seq int }

// completionDueMsg removes a completed task after its acknowledgment delay.
type completionDueMsg struct{ taskID string }

// taskPlacedMsg carries the insertion index computed for a new task.
type taskPlacedMsg struct {
	draft engine.TaskDraft
	at    int
}

// prioritizedMsg carries a full-list ranking result.
type prioritizedMsg struct {
	ranked []model.Task
	err    error
}

// handleEvent turns an engine event into UI state.
func (m *Model) handleEvent(ev engine.Event) tea.Cmd {
	switch ev.Kind {
	case engine.EventNotice:
		return m.setNotice(ev.Notice)
	case engine.EventCelebration:
		m.celebSeq++
		seq := m.celebSeq
		m.focus.SetCelebration(ev.Celebration)
		return tea.Tick(streak.CelebrationDuration, func(time.Time) tea.Msg {
			return celebrationDoneMsg{seq: seq}
		})
	}
	return nil
}

// setNotice shows text in the status bar for noticeDuration.
func (m *Model) setNotice(text string) tea.Cmd {
	m.noticeSeq++
	seq := m.noticeSeq
	m.notice = text
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

func errorNotice(err error) string {
	switch {
	case errors.Is(err, ordering.ErrTaskNotFound):
		return "That task no longer exists."
	case errors.Is(err, engine.ErrNoCurrentTask):
		return "No task selected."
	default:
		msg := err.Error()
		if msg == "" {
			return "Something went wrong."
		}
		return strings.ToUpper(msg[:1]) + msg[1:] + "."
	}
}

// openCreate shows the new task form with an optional pre-filled title.
func (m *Model) openCreate(title string) tea.Cmd {
	m.open(ViewTaskForm)
	return m.formView.StartCreate(title)
}

// addTask places and inserts a submitted draft. Only ranking-service
// placement runs off the update loop.
func (m *Model) addTask(d engine.TaskDraft) tea.Cmd {
	if err := d.Validate(); err != nil {
		return m.setNotice(errorNotice(err))
	}
	existing := m.engine.Tasks()
	if d.Priority != model.PriorityAI {
		return m.insertPlaced(d, m.engine.PlaceTask(m.ctx, d, existing))
	}

	m.placing++
	eng, ctx := m.engine, m.ctx
	return func() tea.Msg {
		return taskPlacedMsg{draft: d, at: eng.PlaceTask(ctx, d, existing)}
	}
}

func (m *Model) insertPlaced(d engine.TaskDraft, at int) tea.Cmd {
	if _, err := m.engine.InsertPlaced(m.ctx, d, at); err != nil {
		return m.setNotice(errorNotice(err))
	}
	return nil
}

// prioritize starts a full-list ranking in the background.
func (m *Model) prioritize() tea.Cmd {
	tasks, err := m.engine.BeginPrioritize()
	if err != nil {
		return m.setNotice(errorNotice(err))
	}
	eng, ctx := m.engine, m.ctx
	return func() tea.Msg {
		ranked, err := eng.RankList(ctx, tasks)
		return prioritizedMsg{ranked: ranked, err: err}
	}
}

// complete marks the current task done and schedules its removal.
func (m *Model) complete() tea.Cmd {
	c, err := m.engine.BeginCompletionCurrent(m.ctx)
	if errors.Is(err, engine.ErrCompleting) {
		return nil
	}
	if err != nil {
		return m.setNotice(errorNotice(err))
	}
	id := c.TaskID
	return tea.Tick(streak.CompletionDelay, func(time.Time) tea.Msg {
		return completionDueMsg{taskID: id}
	})
}

// openSuggest shows the suggestion panel for the current task and starts
// fetching.
func (m *Model) openSuggest() tea.Cmd {
	t, ok := m.engine.Current()
	if !ok {
		return m.setNotice(errorNotice(engine.ErrNoCurrentTask))
	}
	m.open(ViewSuggest)
	start := m.suggestView.Start(t.ID, t.Title)
	if !m.suggestView.Loading() {
		return start
	}
	return tea.Batch(start, m.fetchSuggestions(t.ID, false))
}

// fetchSuggestions runs a suggestion request in the background.
func (m *Model) fetchSuggestions(taskID string, fresh bool) tea.Cmd {
	q, err := m.engine.PrepareSuggestions(m.ctx, taskID, fresh)
	if err != nil {
		return func() tea.Msg { return suggest.LoadedMsg{TaskID: taskID, Err: err} }
	}
	eng, ctx := m.engine, m.ctx
	return func() tea.Msg {
		links, err := eng.FetchSuggestions(ctx, q)
		return suggest.LoadedMsg{TaskID: taskID, Links: links, Err: err}
	}
}

func (m *Model) move(msg tasklist.MoveMsg) {
	if msg.Direction == ordering.Up {
		m.engine.MoveUp(m.ctx, msg.Index)
		return
	}
	m.engine.MoveDown(m.ctx, msg.Index)
}

// executeCommand handles a command from the command palette.
func (m Model) executeCommand(c command.CommandMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch c.Name {
	case "add":
		if c.Args == "" {
			cmd = m.openCreate("")
			break
		}
		cmd = m.addTask(engine.TaskDraft{Title: c.Args, Priority: model.PriorityNone})
	case "done":
		cmd = m.complete()
	case "next":
		m.engine.Next()
	case "prev":
		m.engine.Prev()
	case "prioritize":
		cmd = m.prioritize()
	case "suggest":
		cmd = m.openSuggest()
	case "ask":
		t, ok := m.engine.Current()
		if !ok {
			cmd = m.setNotice(errorNotice(engine.ErrNoCurrentTask))
			break
		}
		u, err := m.engine.AskURL(m.ctx, t.ID)
		if err != nil {
			cmd = m.setNotice(errorNotice(err))
			break
		}
		cmd = m.setNotice(u)
	case "link":
		cmd = m.linkCommand(c.Args)
	case "list":
		m.taskList.FocusCurrent()
		m.currentView = ViewList
	case "move":
		cmd = m.moveCommand(c.Args)
	case "help":
		m.open(ViewHelp)
	case "settings":
		cmd = m.openSettings()
	case "quit", "q":
		cmd = m.quit()
	default:
		cmd = m.setNotice("Unknown command: " + c.Name)
	}
	return m, cmd
}

// openSettings shows the settings overview.
func (m *Model) openSettings() tea.Cmd {
	if !m.hasSettings {
		return m.setNotice("Settings are not available.")
	}
	m.settingsView.Reset()
	m.open(ViewSettings)
	return nil
}

// linkCommand attaches "<url> [description]" to the current task.
func (m *Model) linkCommand(args string) tea.Cmd {
	t, ok := m.engine.Current()
	if !ok {
		return m.setNotice(errorNotice(engine.ErrNoCurrentTask))
	}
	rawURL, desc, _ := strings.Cut(args, " ")
	if _, err := m.engine.AttachLink(m.ctx, t.ID, rawURL, desc); err != nil {
		return m.setNotice(errorNotice(err))
	}
	return m.setNotice("Link added.")
}

// moveCommand relocates a task given "<from> <to>" as 1-based positions.
func (m *Model) moveCommand(args string) tea.Cmd {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return m.setNotice("Usage: move <from> <to>")
	}
	from, err1 := strconv.Atoi(fields[0])
	to, err2 := strconv.Atoi(fields[1])
	n := m.engine.Len()
	if err1 != nil || err2 != nil || from < 1 || from > n || to < 1 || to > n {
		return m.setNotice("Positions must be between 1 and " + strconv.Itoa(n) + ".")
	}
	m.engine.Move(m.ctx, from-1, to-1)
	return nil
}
