// Package command is the ":" palette for typed commands.
package command

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/onetask/internal/theme"
)

// usages maps each command to its argument synopsis and a short description.
var usages = map[string]string{
	"add":        "add [title]: add a task, or open the form without a title",
	"ask":        "ask: show a web search for the current task",
	"done":       "done: complete the current task",
	"help":       "help: show key bindings",
	"link":       "link <url> [description]: attach a link to the current task",
	"list":       "list: show all tasks",
	"move":       "move <from> <to>: move a task, positions start at 1",
	"next":       "next: show the next task",
	"prev":       "prev: show the previous task",
	"prioritize": "prioritize: let the ranking service reorder every task",
	"quit":       "quit: leave onetask",
	"settings":   "settings: edit the service URL, token and place",
	"suggest":    "suggest: find helpful links for the current task",
}

// Names lists the commands in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(usages))
	for n := range usages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Usage returns the synopsis of the single command starting with prefix.
func Usage(prefix string) (string, bool) {
	prefix = strings.ToLower(prefix)
	if u, ok := usages[prefix]; ok {
		return u, true
	}
	var found string
	for n, u := range usages {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		if found != "" {
			return "", false
		}
		found = u
	}
	return found, found != ""
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Name string
	Args string
}

// Parse splits palette input into a command name and its argument text.
func Parse(input string) CommandMsg {
	name, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	return CommandMsg{
		Name: strings.ToLower(name),
		Args: strings.TrimSpace(args),
	}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "add Buy milk · prioritize · move 3 1 ..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Names())
	ti.Focus()
	ti.Width = width - 6

	return Model{input: ti, width: width, height: height}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEnter {
		parsed := Parse(m.input.Value())
		m.input.Reset()
		if parsed.Name == "" {
			return m, nil
		}
		return m, func() tea.Msg { return parsed }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// hint describes the command being typed, or lists them all.
func (m Model) hint() string {
	name := Parse(m.input.Value()).Name
	if name != "" {
		if u, ok := Usage(name); ok {
			return u
		}
	}
	return strings.Join(Names(), " · ")
}

// View renders the command palette.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Command")

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.input.View(),
		"",
		theme.HelpStyle.Render(m.hint()),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
