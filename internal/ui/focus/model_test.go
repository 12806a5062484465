package focus

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/onetask/internal/keys"
	"github.com/nhle/onetask/internal/model"
	"github.com/nhle/onetask/internal/streak"
)

func linkedTask() *model.Task {
	return &model.Task{
		ID:    "t1",
		Title: "Plan trip",
		SavedLinks: []model.Link{
			{ID: "l1", URL: "https://a.example", Description: "Flights"},
			{ID: "l2", URL: "https://b.example", Description: "Hotels"},
		},
	}
}

func TestFocus_EmptyList(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 20)
	m.SetSnapshot(Snapshot{})
	assert.Contains(t, m.View(), "Nothing to do")
}

func TestFocus_RendersTask(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 30)
	m.SetSnapshot(Snapshot{Task: linkedTask(), Index: 1, Total: 3, Now: time.Now()})

	view := m.View()
	assert.Contains(t, view, "Plan trip")
	assert.Contains(t, view, "Task 2 of 3")
	assert.Contains(t, view, "Hotels")
}

func TestFocus_CycleAndRemoveLink(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 30)
	m.SetSnapshot(Snapshot{Task: linkedTask(), Total: 1})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.LinkCursor())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	require.NotNil(t, cmd)
	assert.Equal(t, RemoveLinkMsg{TaskID: "t1", LinkID: "l2"}, cmd())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.LinkCursor(), "cursor wraps")
}

func TestFocus_CursorClampsWhenLinksShrink(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 30)
	task := linkedTask()
	m.SetSnapshot(Snapshot{Task: task, Total: 1})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})

	shrunk := task.Clone()
	shrunk.SavedLinks = shrunk.SavedLinks[:1]
	m.SetSnapshot(Snapshot{Task: &shrunk, Total: 1})
	assert.Equal(t, 0, m.LinkCursor())
}

func TestFocus_Celebration(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 30)
	m.SetSnapshot(Snapshot{Task: linkedTask(), Total: 1})
	m.SetCelebration(&streak.Celebration{Count: 7, Message: "Week Warrior! 🎉"})
	assert.Contains(t, m.View(), "Week Warrior!")

	m.SetCelebration(nil)
	assert.NotContains(t, m.View(), "Week Warrior!")
}
