package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/onetask/internal/keys"
	"github.com/nhle/onetask/internal/model"
	"github.com/nhle/onetask/internal/streak"
	"github.com/nhle/onetask/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	m.help.Width = m.width - 4
	m.help.ShowAll = true

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		"",
		titleStyle.Render("Priorities"),
		priorityLegend(),
		"",
		titleStyle.Render("Streak Milestones"),
		milestoneLegend(),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

func priorityLegend() string {
	placement := map[model.Priority]string{
		model.PriorityNone:   "added at the top",
		model.PriorityHigh:   "added at the top",
		model.PriorityMedium: "added in the middle",
		model.PriorityLow:    "added at the bottom",
		model.PriorityAI:     "placed by the ranking service",
	}
	var b strings.Builder
	for _, p := range model.Priorities {
		fmt.Fprintf(&b, "%s  %s\n",
			theme.PriorityStyle(p).Width(14).Render(p.Label()),
			theme.DimmedStyle.Render(placement[p]))
	}
	return strings.TrimRight(b.String(), "\n")
}

func milestoneLegend() string {
	var lines []string
	for _, n := range streak.Milestones() {
		msg, _ := streak.MilestoneMessage(n)
		lines = append(lines, fmt.Sprintf("%4d days  %s", n, msg))
	}
	return strings.Join(lines, "\n")
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
