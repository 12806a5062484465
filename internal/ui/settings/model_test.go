package settings

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/onetask/internal/keys"
	"github.com/nhle/onetask/internal/model"
)

type fakeTokens struct {
	token  string
	setErr error
}

func (f *fakeTokens) APIToken() (string, error) { return f.token, nil }

func (f *fakeTokens) SetAPIToken(token string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.token = token
	return nil
}

func (f *fakeTokens) ClearAPIToken() error {
	f.token = ""
	return nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, tokens *fakeTokens) (Model, *[]model.AppConfig) {
	t.Helper()
	var saved []model.AppConfig
	cfg := *model.DefaultAppConfig()
	m := New(Deps{
		Config: cfg,
		Path:   "/tmp/onetask.yaml",
		Save: func(c model.AppConfig) error {
			saved = append(saved, c)
			return nil
		},
		Tokens: tokens,
		Check: func(context.Context, model.APIConfig) error {
			return errors.New("connection refused")
		},
	}, keys.DefaultKeyMap(), 80, 24)
	return m, &saved
}

func TestOverview(t *testing.T) {
	m, _ := newTestModel(t, &fakeTokens{token: "abc"})

	view := m.View()
	assert.Contains(t, view, "Settings")
	assert.Contains(t, view, model.DefaultAPIBaseURL)
	assert.Contains(t, view, "30s")
	assert.NotContains(t, view, "not set")
	assert.Contains(t, view, "/tmp/onetask.yaml")
}

func TestEscCloses(t *testing.T) {
	m, _ := newTestModel(t, &fakeTokens{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, DoneMsg{}, cmd())
}

func TestEditThenEscReturnsToOverview(t *testing.T) {
	m, _ := newTestModel(t, &fakeTokens{})

	m, _ = m.Update(runes("e"))
	require.Equal(t, ModeForm, m.Mode())
	assert.Equal(t, model.DefaultAPIBaseURL, m.fb.baseURL)
	assert.Equal(t, "30", m.fb.timeout)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeView, m.Mode())
}

func TestFormConfig(t *testing.T) {
	m, _ := newTestModel(t, &fakeTokens{})
	*m.fb = formBindings{
		baseURL:  " http://localhost:8080/api/ ",
		timeout:  "10",
		place:    " Haifa ",
		fallback: "Israel",
	}

	cfg := m.formConfig()
	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 10, cfg.API.TimeoutSec)
	assert.Equal(t, "Haifa", cfg.Location.Place)
	assert.Equal(t, m.cfg.Storage, cfg.Storage)
}

func TestSave(t *testing.T) {
	tokens := &fakeTokens{}
	m, saved := newTestModel(t, tokens)

	cfg := m.cfg
	cfg.API.BaseURL = "http://localhost:8080/api"
	msg := m.save(cfg, "  secret ")()

	m, cmd := m.Update(msg)
	assert.Equal(t, ModeView, m.Mode())
	assert.Equal(t, "http://localhost:8080/api", m.Config().API.BaseURL)
	assert.Equal(t, "secret", tokens.token)
	require.Len(t, *saved, 1)
	require.NotNil(t, cmd)
	assert.Equal(t, SavedMsg{Config: cfg}, cmd())
	assert.Contains(t, m.View(), "Settings saved")
}

func TestSave_BlankTokenKeepsExisting(t *testing.T) {
	tokens := &fakeTokens{token: "old"}
	m, _ := newTestModel(t, tokens)

	m, _ = m.Update(m.save(m.cfg, "")())
	assert.Equal(t, "old", tokens.token)
	assert.True(t, m.tokenSet)
}

func TestSave_TokenError(t *testing.T) {
	m, _ := newTestModel(t, &fakeTokens{setErr: errors.New("locked")})

	m, cmd := m.Update(m.save(m.cfg, "x")())
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Error saving settings: locked")
}

func TestClearToken(t *testing.T) {
	tokens := &fakeTokens{token: "abc"}
	m, _ := newTestModel(t, tokens)

	m, _ = m.Update(runes("d"))
	require.Equal(t, ModeConfirmClear, m.Mode())

	m, _ = m.Update(m.clearToken()())
	assert.Equal(t, ModeView, m.Mode())
	assert.False(t, m.tokenSet)
	assert.Empty(t, tokens.token)
}

func TestClearToken_NothingToRemove(t *testing.T) {
	m, _ := newTestModel(t, &fakeTokens{})

	m, _ = m.Update(runes("d"))
	assert.Equal(t, ModeView, m.Mode())
	assert.Contains(t, m.View(), "No token to remove.")
}

func TestCheck(t *testing.T) {
	m, _ := newTestModel(t, &fakeTokens{})

	m, cmd := m.Update(runes("c"))
	require.NotNil(t, cmd)
	require.Equal(t, ModeChecking, m.Mode())

	m, _ = m.Update(checkResultMsg{err: errors.New("connection refused")})
	assert.Equal(t, ModeCheckResult, m.Mode())
	assert.Contains(t, m.View(), "Connection failed")
	assert.Contains(t, m.View(), "connection refused")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeView, m.Mode())
}

func TestCheck_CancelledResultIgnored(t *testing.T) {
	m, _ := newTestModel(t, &fakeTokens{})

	m, _ = m.Update(runes("c"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, ModeView, m.Mode())

	m, _ = m.Update(checkResultMsg{})
	assert.Equal(t, ModeView, m.Mode())
}

func TestCheck_NoServiceURL(t *testing.T) {
	m, _ := newTestModel(t, &fakeTokens{})
	m.cfg.API.BaseURL = ""

	m, cmd := m.Update(runes("c"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "No service URL configured.")
	assert.Contains(t, m.View(), "(off)")
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateOptionalURL(""))
	assert.NoError(t, validateOptionalURL("https://example.com/api"))
	assert.Error(t, validateOptionalURL("example.com"))

	assert.NoError(t, validateTimeout("30"))
	assert.Error(t, validateTimeout("0"))
	assert.Error(t, validateTimeout("soon"))
}
