package taskform

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/onetask/internal/engine"
	"github.com/nhle/onetask/internal/model"
)

func TestValidators(t *testing.T) {
	assert.Error(t, validateTitle("   "))
	assert.NoError(t, validateTitle("Buy milk"))

	assert.NoError(t, validateOptionalDate(""))
	assert.NoError(t, validateOptionalDate("2026-10-19"))
	assert.Error(t, validateOptionalDate("19/10/2026"))

	assert.NoError(t, validateOptionalURL(""))
	assert.Error(t, validateOptionalURL("not a url"))
	assert.NoError(t, validateOptionalURL("https://example.com"))
	assert.Error(t, validateURL(""))
}

func TestStartCreate_ResetsBindings(t *testing.T) {
	m := New(80, 24)
	m.fb.note = "left over"
	m.StartCreate("dictated title")

	assert.Equal(t, ModeCreate, m.Mode())
	assert.Equal(t, "dictated title", m.fb.title)
	assert.Empty(t, m.fb.note)
	assert.Equal(t, model.PriorityNone, m.fb.priority)
}

func TestStartEdit_PrefillsTask(t *testing.T) {
	due := model.NewDate(2026, 10, 20)
	m := New(80, 24)
	m.StartEdit(model.Task{ID: "t1", Title: "Write report", DueDate: &due, Note: "draft"})

	assert.Equal(t, ModeEdit, m.Mode())
	assert.Equal(t, "Write report", m.fb.title)
	assert.Equal(t, "2026-10-20", m.fb.dueDate)
	assert.Equal(t, "draft", m.fb.note)
}

func TestHandleSubmit(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		m := New(80, 24)
		m.StartCreate("")
		m.fb.title = "Buy milk"
		m.fb.priority = model.PriorityLow

		msg := m.handleSubmit()()
		created, ok := msg.(TaskCreatedMsg)
		require.True(t, ok)
		assert.Equal(t, engine.TaskDraft{Title: "Buy milk", Priority: model.PriorityLow}, created.Draft)
	})

	t.Run("edit", func(t *testing.T) {
		m := New(80, 24)
		m.StartEdit(model.Task{ID: "t1", Title: "Old"})
		m.fb.title = "New"

		msg := m.handleSubmit()()
		updated, ok := msg.(TaskUpdatedMsg)
		require.True(t, ok)
		assert.Equal(t, "t1", updated.ID)
		assert.Equal(t, "New", updated.Draft.Title)
	})

	t.Run("link", func(t *testing.T) {
		m := New(80, 24)
		m.StartLink("t2")
		m.fb.linkURL = "https://example.com"

		msg := m.handleSubmit()()
		assert.Equal(t, LinkAddedMsg{TaskID: "t2", URL: "https://example.com"}, msg)
	})
}

func TestEscCancels(t *testing.T) {
	m := New(80, 24)
	m.StartCreate("")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, FormCancelMsg{}, cmd())
}
