package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Focus navigation
	Next key.Binding
	Prev key.Binding

	// List navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Views
	List     key.Binding
	Command  key.Binding
	Help     key.Binding
	Settings key.Binding

	// Task actions
	Add  key.Binding
	Edit key.Binding
	Done key.Binding

	// Reordering
	MoveUp   key.Binding
	MoveDown key.Binding
	Grab     key.Binding

	// Ranking service
	Prioritize key.Binding
	Suggest    key.Binding
	Refresh    key.Binding
	Ask        key.Binding

	// Links
	Link       key.Binding
	CycleLink  key.Binding
	RemoveLink key.Binding

	// Voice
	Dictate key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Next: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next task"),
		),
		Prev: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "previous task"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "focus task"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		List: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "all tasks"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Add: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit task"),
		),
		Done: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "done"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move down"),
		),
		Grab: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "grab / drop"),
		),
		Prioritize: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "prioritize all"),
		),
		Suggest: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "suggest links"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "new suggestions"),
		),
		Ask: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "ask the web"),
		),
		Link: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "attach link"),
		),
		CycleLink: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next link"),
		),
		RemoveLink: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove link"),
		),
		Dictate: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "voice input"),
		),
		Settings: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "settings"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Prev, k.Next, k.Done, k.Add,
		k.List, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Add, k.Edit, k.Done, k.List, k.Command, k.Settings, k.Help},
		{k.MoveUp, k.MoveDown, k.Grab, k.Prioritize},
		{k.Suggest, k.Refresh, k.Ask, k.Link, k.CycleLink, k.RemoveLink, k.Dictate},
	}
}
