package tasklist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/onetask/internal/keys"
	"github.com/nhle/onetask/internal/model"
	"github.com/nhle/onetask/internal/ordering"
	"github.com/nhle/onetask/internal/theme"
)

// headerLines is the number of lines drawn above the first row.
const headerLines = 2

// BackMsg signals the parent to leave the list.
type BackMsg struct{}

// SelectedTaskMsg is sent when the user picks a task to focus on.
type SelectedTaskMsg struct {
	Index int
}

// MoveMsg asks the parent to swap a task with its neighbour.
type MoveMsg struct {
	Index     int
	Direction ordering.Direction
}

// DragStartMsg starts a keyboard drag on a row.
type DragStartMsg struct {
	Index int
}

// DropMsg finishes a keyboard drag over a row.
type DropMsg struct {
	Target int
}

// DragEndMsg abandons a keyboard drag.
type DragEndMsg struct{}

// TouchStartMsg starts a mouse drag on a row.
type TouchStartMsg struct {
	Index int
}

// TouchMoveMsg reports the pointer position during a mouse drag.
type TouchMoveMsg struct {
	X, Y int
}

// TouchEndMsg reports where a mouse drag was released.
type TouchEndMsg struct {
	X, Y int
}

// Snapshot is the engine state the list renders.
type Snapshot struct {
	Tasks     []model.Task
	Current   int
	Dragging  int
	Highlight ordering.Highlight
	Now       time.Time
}

// Model is the full task list with reordering.
type Model struct {
	snap     Snapshot
	cursor   int
	offset   int
	touching bool
	originY  int
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new task list model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		snap: Snapshot{
			Current:   -1,
			Dragging:  -1,
			Highlight: ordering.Highlight{Dragged: -1, Hovered: -1},
		},
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetSnapshot replaces the rendered state and keeps the cursor in range.
func (m *Model) SetSnapshot(s Snapshot) {
	m.snap = s
	m.clampCursor()
}

// FocusCurrent moves the cursor to the task under the viewing pointer.
func (m *Model) FocusCurrent() {
	if m.snap.Current >= 0 {
		m.cursor = m.snap.Current
	}
	m.clampCursor()
}

// Cursor returns the highlighted row.
func (m Model) Cursor() int { return m.cursor }

// SetOrigin sets the screen row the list is drawn at, for mouse hit
// testing.
func (m *Model) SetOrigin(y int) { m.originY = y }

// IndexAt maps a screen position to a task index.
func (m Model) IndexAt(_, y int) (int, bool) {
	row := y - m.originY - headerLines
	if row < 0 || row >= m.visibleRows() {
		return -1, false
	}
	i := m.offset + row
	if i >= len(m.snap.Tasks) {
		return -1, false
	}
	return i, true
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m Model) dragging() bool { return m.snap.Dragging >= 0 }

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if m.dragging() {
			return m, emit(DragEndMsg{})
		}
		return m, emit(BackMsg{})

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snap.Tasks)-1 {
			m.cursor++
			m.scroll()
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.scroll()
		}

	case key.Matches(msg, m.keys.MoveUp):
		if m.dragging() || m.cursor <= 0 {
			return m, nil
		}
		i := m.cursor
		m.cursor--
		m.scroll()
		return m, emit(MoveMsg{Index: i, Direction: ordering.Up})

	case key.Matches(msg, m.keys.MoveDown):
		if m.dragging() || m.cursor >= len(m.snap.Tasks)-1 {
			return m, nil
		}
		i := m.cursor
		m.cursor++
		m.scroll()
		return m, emit(MoveMsg{Index: i, Direction: ordering.Down})

	case key.Matches(msg, m.keys.Grab):
		if len(m.snap.Tasks) == 0 {
			return m, nil
		}
		if m.dragging() {
			return m, emit(DropMsg{Target: m.cursor})
		}
		return m, emit(DragStartMsg{Index: m.cursor})

	case key.Matches(msg, m.keys.Select):
		if m.dragging() {
			return m, emit(DropMsg{Target: m.cursor})
		}
		if m.cursor < len(m.snap.Tasks) {
			return m, emit(SelectedTaskMsg{Index: m.cursor})
		}
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if m.cursor > 0 {
				m.cursor--
				m.scroll()
			}
			return m, nil
		case tea.MouseButtonWheelDown:
			if m.cursor < len(m.snap.Tasks)-1 {
				m.cursor++
				m.scroll()
			}
			return m, nil
		case tea.MouseButtonLeft:
			i, ok := m.IndexAt(msg.X, msg.Y)
			if !ok {
				return m, nil
			}
			m.cursor = i
			m.touching = true
			return m, emit(TouchStartMsg{Index: i})
		}

	case tea.MouseActionMotion:
		if m.touching {
			return m, emit(TouchMoveMsg{X: msg.X, Y: msg.Y})
		}

	case tea.MouseActionRelease:
		if m.touching {
			m.touching = false
			if i, ok := m.IndexAt(msg.X, msg.Y); ok {
				m.cursor = i
			}
			return m, emit(TouchEndMsg{X: msg.X, Y: msg.Y})
		}
	}
	return m, nil
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// View renders the task list view.
func (m Model) View() string {
	if len(m.snap.Tasks) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No tasks yet.\n\nPress n to add one.")
	}

	title := fmt.Sprintf("All tasks (%d)", len(m.snap.Tasks))
	if m.dragging() {
		title += theme.DimmedStyle.Render("  moving, press space to drop")
	}
	lines := []string{theme.TitleStyle.PaddingLeft(1).Render(title), ""}

	end := min(m.offset+m.visibleRows(), len(m.snap.Tasks))
	for i := m.offset; i < end; i++ {
		lines = append(lines, renderRow(i, m.snap.Tasks[i], i == m.snap.Current, m.rowState(i), m.snap.Now, m.width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) rowState(i int) rowState {
	h := m.snap.Highlight
	switch {
	case i == h.Dragged || i == m.snap.Dragging:
		return rowDragged
	case i == h.Hovered:
		return rowDropTarget
	case m.dragging() && i == m.cursor:
		return rowDropTarget
	case i == m.cursor:
		return rowSelected
	default:
		return rowNormal
	}
}

func (m Model) visibleRows() int {
	return max(m.height-headerLines, 1)
}

func (m *Model) clampCursor() {
	n := len(m.snap.Tasks)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scroll()
}

// scroll keeps the cursor inside the visible window.
func (m *Model) scroll() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if maxOffset := max(len(m.snap.Tasks)-rows, 0); m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.scroll()
}
