package suggest

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/onetask/internal/engine"
	"github.com/nhle/onetask/internal/keys"
	"github.com/nhle/onetask/internal/model"
)

var links = []model.SuggestedLink{
	{URL: "https://a.example", Description: "Guide"},
	{URL: "https://b.example", Description: "Video"},
}

func loaded(t *testing.T) Model {
	t.Helper()
	m := New(keys.DefaultKeyMap(), false, 80, 24)
	require.NotNil(t, m.Start("t1", "Learn Go"))
	assert.True(t, m.Loading())

	m, _ = m.Update(LoadedMsg{TaskID: "t1", Links: links})
	require.False(t, m.Loading())
	return m
}

func TestSuggest_SaveSelected(t *testing.T) {
	m := loaded(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SaveMsg{TaskID: "t1", Link: links[1]}, cmd())
	assert.Contains(t, m.View(), "✓ Video")
}

func TestSuggest_IgnoresResultsForOtherTask(t *testing.T) {
	m := New(keys.DefaultKeyMap(), false, 80, 24)
	m.Start("t1", "Learn Go")

	m, _ = m.Update(LoadedMsg{TaskID: "t2", Links: links})
	assert.True(t, m.Loading())
}

func TestSuggest_Refresh(t *testing.T) {
	m := loaded(t)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	assert.True(t, m.Loading())

	// A second refresh while loading is ignored.
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	assert.Nil(t, cmd)
}

func TestSuggest_Errors(t *testing.T) {
	m := New(keys.DefaultKeyMap(), false, 80, 24)
	m.Start("t1", "Learn Go")
	m, _ = m.Update(LoadedMsg{TaskID: "t1", Err: engine.ErrNoSuggestions})
	assert.Contains(t, m.View(), "No suggestions")

	m.Start("t1", "Learn Go")
	m, _ = m.Update(LoadedMsg{TaskID: "t1", Err: errors.New("boom")})
	assert.Contains(t, m.View(), "Could not fetch")
}

func TestSuggest_NoService(t *testing.T) {
	m := New(keys.DefaultKeyMap(), true, 80, 24)
	assert.Nil(t, m.Start("t1", "Learn Go"))
	assert.False(t, m.Loading())
	assert.Contains(t, m.View(), "onetask token set")
}

func TestSuggest_AskAndClose(t *testing.T) {
	m := loaded(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	require.NotNil(t, cmd)
	assert.Equal(t, AskMsg{TaskID: "t1"}, cmd())

	m.SetAskURL("https://www.perplexity.ai/?q=Learn+Go")
	assert.Contains(t, m.View(), "perplexity")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
}
