// Package focus renders the single task the user is working on.
package focus

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/onetask/internal/keys"
	"github.com/nhle/onetask/internal/model"
	"github.com/nhle/onetask/internal/streak"
	"github.com/nhle/onetask/internal/theme"
)

// RemoveLinkMsg asks the parent to drop a saved link.
type RemoveLinkMsg struct {
	TaskID string
	LinkID string
}

// Snapshot is what the focus view shows.
type Snapshot struct {
	Task       *model.Task
	Index      int
	Total      int
	Completing bool
	Now        time.Time
}

// Model is the focused task view component.
type Model struct {
	snap        Snapshot
	celebration *streak.Celebration
	linkCursor  int
	viewport    viewport.Model
	keys        *keys.KeyMap
	width       int
	height      int
}

// New creates a new focus view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the focus view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the focus view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.snap.Task != nil {
		links := m.snap.Task.SavedLinks
		switch {
		case key.Matches(msg, m.keys.CycleLink):
			if len(links) > 0 {
				m.linkCursor = (m.linkCursor + 1) % len(links)
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, m.keys.RemoveLink):
			if m.linkCursor < len(links) {
				rm := RemoveLinkMsg{TaskID: m.snap.Task.ID, LinkID: links[m.linkCursor].ID}
				return m, func() tea.Msg { return rm }
			}
			return m, nil
		}
	}

	// Delegate to viewport for scrolling (pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the focus view.
func (m Model) View() string {
	var body string
	if m.snap.Task == nil {
		body = lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Nothing to do. Press n to add a task.")
	} else {
		body = m.viewport.View()
	}

	if m.celebration == nil {
		return body
	}
	banner := lipgloss.PlaceHorizontal(m.width, lipgloss.Center,
		theme.CelebrationStyle.Render(fmt.Sprintf("🔥 %d days · %s", m.celebration.Count, m.celebration.Message)))
	return lipgloss.JoinVertical(lipgloss.Left, banner, body)
}

// SetSnapshot updates what is displayed. The link cursor is kept when the
// same task is shown again.
func (m *Model) SetSnapshot(s Snapshot) {
	sameTask := s.Task != nil && m.snap.Task != nil && s.Task.ID == m.snap.Task.ID
	m.snap = s
	if !sameTask {
		m.linkCursor = 0
		m.viewport.GotoTop()
	}
	if s.Task != nil && m.linkCursor >= len(s.Task.SavedLinks) {
		m.linkCursor = max(len(s.Task.SavedLinks)-1, 0)
	}
	m.refresh()
}

// SetCelebration shows or, with nil, hides a milestone banner.
func (m *Model) SetCelebration(c *streak.Celebration) {
	m.celebration = c
}

// LinkCursor returns the index of the highlighted saved link.
func (m Model) LinkCursor() int { return m.linkCursor }

// SetSize updates the focus view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
}

// renderContent builds the task card for the viewport.
func (m Model) renderContent() string {
	t := m.snap.Task
	if t == nil {
		return ""
	}

	var sections []string
	sections = append(sections,
		theme.DimmedStyle.Render(fmt.Sprintf("Task %d of %d", m.snap.Index+1, m.snap.Total)),
		"",
	)

	title := t.Title
	if m.snap.Completing {
		title = "✓ " + title
	}
	sections = append(sections, theme.TitleStyle.Render(title))

	var badges []string
	if t.Priority != "" && t.Priority != model.PriorityNone {
		badges = append(badges, theme.PriorityStyle(t.Priority).Render(t.Priority.Label()))
	}
	if t.DueDate != nil {
		overdue := t.IsOverdue(m.snap.Now)
		label := "Due " + t.DueDate.String()
		if overdue {
			label = "Overdue · " + t.DueDate.String()
		}
		badges = append(badges, theme.DueStyle(overdue).Render(label))
	}
	if len(badges) > 0 {
		sections = append(sections, strings.Join(badges, "  "))
	}

	if t.Note != "" {
		sections = append(sections, "", t.Note)
	}

	if len(t.SavedLinks) > 0 {
		sections = append(sections, "", lipgloss.NewStyle().Bold(true).Render("Links"))
		for i, l := range t.SavedLinks {
			line := fmt.Sprintf("%s  %s", l.Description, theme.DimmedStyle.Render(l.URL))
			if i == m.linkCursor {
				sections = append(sections, theme.SelectedItemStyle.Render(line))
			} else {
				sections = append(sections, theme.ListItemStyle.Render(line))
			}
		}
	}

	if m.snap.Completing {
		sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.ColorGreen).Bold(true).Render("Nice work!"))
	}

	style := theme.CardStyle
	if m.snap.Completing {
		style = theme.CompletingCardStyle
	}
	cardWidth := min(m.width-4, 80)
	card := style.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
}
