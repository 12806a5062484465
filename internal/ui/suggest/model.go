// Package suggest is the panel that fetches and saves link suggestions for
// the focused task.
package suggest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/onetask/internal/engine"
	"github.com/nhle/onetask/internal/keys"
	"github.com/nhle/onetask/internal/model"
	"github.com/nhle/onetask/internal/theme"
)

// CloseMsg signals the parent to close the panel.
type CloseMsg struct{}

// LoadedMsg carries the result of a suggestion request.
type LoadedMsg struct {
	TaskID string
	Links  []model.SuggestedLink
	Err    error
}

// SaveMsg asks the parent to attach a suggestion to the task.
type SaveMsg struct {
	TaskID string
	Link   model.SuggestedLink
}

// RefreshMsg asks the parent for alternative suggestions.
type RefreshMsg struct {
	TaskID string
}

// AskMsg asks the parent for a web search URL for the task.
type AskMsg struct {
	TaskID string
}

// Model is the suggestion panel.
type Model struct {
	taskID    string
	title     string
	links     []model.SuggestedLink
	saved     map[string]bool
	cursor    int
	loading   bool
	err       error
	askURL    string
	noService bool
	spinner   spinner.Model
	keys      *keys.KeyMap
	width     int
	height    int
}

// New creates a suggestion panel. noService shows setup instructions
// instead of fetching.
func New(k *keys.KeyMap, noService bool, width, height int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorMagenta)

	return Model{
		saved:     make(map[string]bool),
		noService: noService,
		spinner:   s,
		keys:      k,
		width:     width,
		height:    height,
	}
}

// Init returns the initial command for the panel.
func (m Model) Init() tea.Cmd {
	return nil
}

// Start opens the panel for a task and marks it loading. The parent issues
// the actual request.
func (m *Model) Start(taskID, title string) tea.Cmd {
	m.taskID = taskID
	m.title = title
	m.links = nil
	m.saved = make(map[string]bool)
	m.cursor = 0
	m.err = nil
	m.askURL = ""
	if m.noService {
		m.loading = false
		return nil
	}
	m.loading = true
	return m.spinner.Tick
}

// TaskID returns the task the panel is showing suggestions for.
func (m Model) TaskID() string { return m.taskID }

// Loading reports whether a request is in flight.
func (m Model) Loading() bool { return m.loading }

// SetAskURL shows a web search link for the task.
func (m *Model) SetAskURL(u string) { m.askURL = u }

// Update handles messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.TaskID != m.taskID {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		if msg.Err == nil {
			m.links = msg.Links
			m.cursor = 0
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.links)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Select):
		if m.loading || m.cursor >= len(m.links) {
			return m, nil
		}
		l := m.links[m.cursor]
		m.saved[l.URL] = true
		id := m.taskID
		return m, func() tea.Msg { return SaveMsg{TaskID: id, Link: l} }

	case key.Matches(msg, m.keys.Refresh):
		if m.loading || m.noService {
			return m, nil
		}
		m.loading = true
		m.err = nil
		id := m.taskID
		return m, tea.Batch(
			m.spinner.Tick,
			func() tea.Msg { return RefreshMsg{TaskID: id} },
		)

	case key.Matches(msg, m.keys.Ask):
		id := m.taskID
		return m, func() tea.Msg { return AskMsg{TaskID: id} }
	}
	return m, nil
}

// View renders the panel.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	sections := []string{titleStyle.Render("Helpful links for: " + m.title)}

	switch {
	case m.noService:
		sections = append(sections, theme.DimmedStyle.Render(
			"Link suggestions need the ranking service.\n\n"+
				"Set api.base_url in the config file, then store a token with:\n"+
				"  onetask token set\n\n"+
				"Press Esc to go back."))
	case m.loading:
		sections = append(sections, m.spinner.View()+" Finding links...")
	case m.err != nil:
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.ColorRed).Render(errorText(m.err)))
	default:
		sections = append(sections, m.renderLinks())
	}

	if m.askURL != "" {
		sections = append(sections, "", theme.DimmedStyle.Render("Ask the web:"), m.askURL)
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderLinks() string {
	var lines []string
	for i, l := range m.links {
		mark := "  "
		if m.saved[l.URL] {
			mark = "✓ "
		}
		line := fmt.Sprintf("%s%s  %s", mark, l.Description, theme.DimmedStyle.Render(l.URL))
		if i == m.cursor {
			lines = append(lines, theme.SelectedItemStyle.Render(line))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func errorText(err error) string {
	if errors.Is(err, engine.ErrNoSuggestions) {
		return "No suggestions for this task. Press r to try again."
	}
	return "Could not fetch suggestions. Press r to try again."
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
