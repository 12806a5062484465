package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want CommandMsg
	}{
		{"prioritize", CommandMsg{Name: "prioritize"}},
		{"  ADD  Buy milk  ", CommandMsg{Name: "add", Args: "Buy milk"}},
		{"move 3 1", CommandMsg{Name: "move", Args: "3 1"}},
		{"", CommandMsg{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestModel_EnterEmitsCommand(t *testing.T) {
	m := New(80, 24)
	for _, r := range "add Call mom" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Name: "add", Args: "Call mom"}, cmd())
	assert.Empty(t, m.input.Value())
}

func TestModel_EnterOnBlankDoesNothing(t *testing.T) {
	m := New(80, 24)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestUsage(t *testing.T) {
	u, ok := Usage("move")
	require.True(t, ok)
	assert.Contains(t, u, "<from> <to>")

	u, ok = Usage("se")
	require.True(t, ok)
	assert.Contains(t, u, "settings")

	_, ok = Usage("p")
	assert.False(t, ok, "prev and prioritize both match")

	_, ok = Usage("zzz")
	assert.False(t, ok)
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	assert.Equal(t, "add", names[0])
	assert.Contains(t, names, "settings")
	assert.IsIncreasing(t, names)
}

func TestView_ShowsUsageWhileTyping(t *testing.T) {
	m := New(80, 24)
	assert.Contains(t, m.View(), "prioritize")

	for _, r := range "mov" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Contains(t, m.View(), "positions start at 1")
}
