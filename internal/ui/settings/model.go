// Package settings is the view for the ranking service configuration and
// its token.
package settings

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/onetask/internal/keys"
	"github.com/nhle/onetask/internal/model"
	"github.com/nhle/onetask/internal/theme"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeView         Mode = iota // Show current settings
	ModeForm                     // Editing
	ModeSaving                   // Writing config and token
	ModeChecking                 // Testing the connection
	ModeCheckResult              // Show the connection result
	ModeConfirmClear             // Confirm token removal
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg signals the settings were written. They apply from the next
// start.
type SavedMsg struct {
	Config model.AppConfig
}

// TokenStore reads and writes the service token.
type TokenStore interface {
	APIToken() (string, error)
	SetAPIToken(token string) error
	ClearAPIToken() error
}

// Deps wires the view to the config file, the keyring and the service.
type Deps struct {
	Config model.AppConfig
	Path   string
	Save   func(model.AppConfig) error
	Tokens TokenStore

	// Check sends a test request with the given settings.
	Check func(ctx context.Context, api model.APIConfig) error
}

type savedInternalMsg struct {
	cfg      model.AppConfig
	tokenSet bool
	err      error
}

type clearedInternalMsg struct{ err error }

type checkResultMsg struct{ err error }

// formBindings keeps huh's Value pointers valid across model copies.
type formBindings struct {
	baseURL  string
	timeout  string
	place    string
	fallback string
	token    string
	confirm  bool
}

// Model is the Bubble Tea model for the settings view.
type Model struct {
	deps     Deps
	cfg      model.AppConfig
	tokenSet bool

	mode     Mode
	form     *huh.Form
	fb       *formBindings
	checkErr error
	spinner  spinner.Model

	statusMsg string

	keys          *keys.KeyMap
	width, height int
}

// New creates the settings view. The token store is only asked whether a
// token exists.
func New(d Deps, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		deps:    d,
		cfg:     d.Config,
		fb:      &formBindings{},
		spinner: sp,
		keys:    k,
		width:   width,
		height:  height,
	}
	if d.Tokens != nil {
		tok, err := d.Tokens.APIToken()
		if err != nil {
			m.statusMsg = fmt.Sprintf("Could not read token: %v", err)
		}
		m.tokenSet = tok != ""
	}
	return m
}

// Mode returns the current mode.
func (m Model) Mode() Mode { return m.mode }

// Config returns the settings as last saved.
func (m Model) Config() model.AppConfig { return m.cfg }

// Reset returns to the overview, dropping any half-filled form.
func (m *Model) Reset() {
	m.mode = ModeView
	m.form = nil
	m.statusMsg = ""
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedInternalMsg:
		m.mode = ModeView
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving settings: %v", msg.err)
			return m, nil
		}
		m.cfg = msg.cfg
		m.tokenSet = msg.tokenSet
		m.statusMsg = "Settings saved. They apply the next time onetask starts."
		cfg := msg.cfg
		return m, func() tea.Msg { return SavedMsg{Config: cfg} }

	case clearedInternalMsg:
		m.mode = ModeView
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error removing token: %v", msg.err)
			return m, nil
		}
		m.tokenSet = false
		m.statusMsg = "Token removed."
		return m, nil

	case checkResultMsg:
		if m.mode != ModeChecking {
			return m, nil
		}
		m.checkErr = msg.err
		m.mode = ModeCheckResult
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeChecking || m.mode == ModeSaving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m.updateForm(msg)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeView:
		return m.handleViewKeys(msg)
	case ModeForm, ModeConfirmClear:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeView
			m.form = nil
			return m, nil
		}
		return m.updateForm(msg)
	case ModeCheckResult:
		switch msg.String() {
		case "enter", "esc":
			m.mode = ModeView
			m.checkErr = nil
		case "r":
			return m.startCheck()
		}
		return m, nil
	case ModeChecking:
		// Only allow escape while checking
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeView
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleViewKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return DoneMsg{} }

	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Select):
		m.statusMsg = ""
		return m.startForm()

	case msg.String() == "c":
		return m.startCheck()

	case msg.String() == "d":
		if !m.tokenSet || m.deps.Tokens == nil {
			m.statusMsg = "No token to remove."
			return m, nil
		}
		m.fb.confirm = false
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Remove the service token?").
					Affirmative("Remove").
					Negative("Cancel").
					Value(&m.fb.confirm),
			),
		).WithWidth(m.formWidth()).WithShowHelp(false)
		m.mode = ModeConfirmClear
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) startForm() (Model, tea.Cmd) {
	*m.fb = formBindings{
		baseURL:  m.cfg.API.BaseURL,
		timeout:  strconv.Itoa(m.cfg.API.TimeoutSec),
		place:    m.cfg.Location.Place,
		fallback: m.cfg.Location.Fallback,
	}

	tokenHint := "Leave blank to keep the current token"
	if !m.tokenSet {
		tokenHint = "Optional bearer token"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Service URL").
				Description("Ranking and suggestion service root. Blank turns AI features off").
				Placeholder(model.DefaultAPIBaseURL).
				Value(&m.fb.baseURL).
				Validate(validateOptionalURL),
			huh.NewInput().
				Title("Timeout (seconds)").
				Value(&m.fb.timeout).
				Validate(validateTimeout),
			huh.NewInput().
				Title("Token").
				Description(tokenHint).
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.token),
			huh.NewInput().
				Title("Place").
				Description("Where you are, for suggestions. Blank uses the fallback").
				Placeholder("Tel Aviv, Israel").
				Value(&m.fb.place),
			huh.NewInput().
				Title("Fallback place").
				Value(&m.fb.fallback),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
	m.mode = ModeForm
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || (m.mode != ModeForm && m.mode != ModeConfirmClear) {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.mode = ModeView
		m.form = nil
		return m, nil
	case huh.StateCompleted:
		m.form = nil
		if m.mode == ModeConfirmClear {
			if !m.fb.confirm {
				m.mode = ModeView
				return m, nil
			}
			m.mode = ModeSaving
			return m, tea.Batch(m.spinner.Tick, m.clearToken())
		}
		m.mode = ModeSaving
		return m, tea.Batch(m.spinner.Tick, m.save(m.formConfig(), m.fb.token))
	}
	return m, cmd
}

// formConfig applies the form values to the current settings.
func (m Model) formConfig() model.AppConfig {
	cfg := m.cfg
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(m.fb.baseURL), "/")
	if n, err := strconv.Atoi(strings.TrimSpace(m.fb.timeout)); err == nil {
		cfg.API.TimeoutSec = n
	}
	cfg.Location.Place = strings.TrimSpace(m.fb.place)
	cfg.Location.Fallback = strings.TrimSpace(m.fb.fallback)
	return cfg
}

func (m Model) save(cfg model.AppConfig, token string) tea.Cmd {
	d, tokenSet := m.deps, m.tokenSet
	token = strings.TrimSpace(token)
	return func() tea.Msg {
		if d.Save == nil {
			return savedInternalMsg{err: fmt.Errorf("no config file")}
		}
		if err := d.Save(cfg); err != nil {
			return savedInternalMsg{err: err}
		}
		if token != "" && d.Tokens != nil {
			if err := d.Tokens.SetAPIToken(token); err != nil {
				return savedInternalMsg{err: err}
			}
			tokenSet = true
		}
		return savedInternalMsg{cfg: cfg, tokenSet: tokenSet}
	}
}

func (m Model) clearToken() tea.Cmd {
	tokens := m.deps.Tokens
	return func() tea.Msg {
		return clearedInternalMsg{err: tokens.ClearAPIToken()}
	}
}

func (m Model) startCheck() (Model, tea.Cmd) {
	if m.cfg.API.BaseURL == "" || m.deps.Check == nil {
		m.statusMsg = "No service URL configured."
		m.mode = ModeView
		return m, nil
	}
	m.mode = ModeChecking
	m.checkErr = nil
	check, api := m.deps.Check, m.cfg.API
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), api.Timeout())
			defer cancel()
			return checkResultMsg{err: check(ctx, api)}
		},
	)
}

// View renders the settings UI based on the current mode.
func (m Model) View() string {
	var content string
	switch m.mode {
	case ModeForm, ModeConfirmClear:
		if m.form != nil {
			content = m.form.View()
		}
	case ModeSaving:
		content = m.spinner.View() + " Saving..."
	case ModeChecking:
		content = fmt.Sprintf("%s Testing connection to %s...\n\nPress esc to cancel.",
			m.spinner.View(), m.cfg.API.BaseURL)
	case ModeCheckResult:
		content = m.viewCheckResult()
	default:
		content = m.viewOverview()
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m Model) viewOverview() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Settings"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(theme.DimmedStyle.Render(fmt.Sprintf("%-14s", label)))
		b.WriteString(value)
		b.WriteString("\n")
	}

	service := m.cfg.API.BaseURL
	if service == "" {
		service = "(off)"
	}
	row("Service", service)
	row("Timeout", m.cfg.API.Timeout().String())
	if m.tokenSet {
		row("Token", "set")
	} else {
		row("Token", "not set")
	}
	place := m.cfg.Location.Place
	if place == "" {
		place = "(unknown)"
	}
	row("Place", place)
	row("Fallback", m.cfg.Location.Fallback)
	if m.deps.Path != "" {
		row("Config file", m.deps.Path)
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true).
			Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.DimmedStyle.Render("e edit | c test connection | d remove token | esc back"))
	return b.String()
}

func (m Model) viewCheckResult() string {
	if m.checkErr != nil {
		return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed).Render("Connection failed") +
			"\n\n" + m.checkErr.Error() + "\n\n" +
			theme.DimmedStyle.Render("r retry | enter/esc back")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).Render("Connection successful") +
		"\n\n" + theme.DimmedStyle.Render("enter/esc back")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func validateOptionalURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://example.com)")
	}
	return nil
}

func validateTimeout(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("timeout must be a positive number of seconds")
	}
	return nil
}
