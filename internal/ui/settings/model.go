// Package settings edits the configuration file from inside the app.
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

	"github.com/nhle/dayboard/internal/config"
	"github.com/nhle/dayboard/internal/keys"
	"github.com/nhle/dayboard/internal/theme"
	"github.com/nhle/dayboard/internal/ui"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeForm       Mode = iota // Editing values
	ModeValidating             // Checking the backend and saving
	ModeResult                 // Showing the outcome
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg reports the configuration written to disk.
type SavedMsg struct {
	Config *config.AppConfig
}

// resultMsg carries the outcome of validateAndSave.
type resultMsg struct {
	cfg *config.AppConfig
	err error
}

// Prober checks that a backend answers at baseURL.
type Prober func(ctx context.Context, baseURL string) error

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	baseURL      string
	timeout      string
	pollInterval string
	limit        string
	onFailure    string
	logLevel     string
}

// Model is the settings view.
type Model struct {
	mode    Mode
	cfg     *config.AppConfig
	path    string
	probe   Prober
	form    *huh.Form
	fb      *formBindings
	spinner spinner.Model
	err     error

	keys          *keys.KeyMap
	width, height int
}

// New creates a settings view editing cfg, saved to path.
func New(cfg *config.AppConfig, path string, probe Prober, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		cfg:     cfg,
		path:    path,
		probe:   probe,
		fb:      &formBindings{},
		spinner: sp,
		keys:    k,
		width:   width,
		height:  height,
	}
}

// Start fills the form from the current configuration.
func (m *Model) Start() tea.Cmd {
	*m.fb = bindingsFrom(m.cfg)
	m.mode = ModeForm
	m.err = nil
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.mode = ModeResult
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.cfg = msg.cfg
		cfg := msg.cfg
		return m, func() tea.Msg { return SavedMsg{Config: cfg} }

	case spinner.TickMsg:
		if m.mode != ModeValidating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case ModeResult:
			switch {
			case key.Matches(msg, m.keys.Refresh) && m.err != nil:
				return m, m.Start()
			case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Select):
				return m, done
			}
			return m, nil
		case ModeValidating:
			return m, nil
		}
	}

	if m.mode != ModeForm || m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.mode = ModeValidating
		return m, tea.Batch(m.spinner.Tick, m.validateAndSave())
	case huh.StateAborted:
		return m, done
	}
	return m, cmd
}

func done() tea.Msg { return DoneMsg{} }

// validateAndSave checks the new backend URL, then writes the file.
func (m Model) validateAndSave() tea.Cmd {
	fb, base, path, probe := *m.fb, *m.cfg, m.path, m.probe
	return func() tea.Msg {
		next, err := fb.apply(base)
		if err != nil {
			return resultMsg{err: err}
		}

		if probe != nil {
			ctx, cancel := ui.RequestContext()
			defer cancel()
			if err := probe(ctx, next.API.BaseURL); err != nil {
				return resultMsg{err: fmt.Errorf("backend not reachable: %w", err)}
			}
		}

		if err := config.Save(path, &next); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{cfg: &next}
	}
}

func bindingsFrom(cfg *config.AppConfig) formBindings {
	return formBindings{
		baseURL:      cfg.API.BaseURL,
		timeout:      strconv.Itoa(cfg.API.TimeoutSec),
		pollInterval: strconv.Itoa(cfg.Notifications.PollIntervalSec),
		limit:        strconv.Itoa(cfg.Notifications.Limit),
		onFailure:    cfg.Notifications.OnFailure,
		logLevel:     cfg.Log.Level,
	}
}

// apply returns cfg with the form values written over it.
func (fb formBindings) apply(cfg config.AppConfig) (config.AppConfig, error) {
	cfg.API.BaseURL = strings.TrimSpace(fb.baseURL)
	cfg.Notifications.OnFailure = fb.onFailure
	cfg.Log.Level = fb.logLevel

	ints := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"request timeout", fb.timeout, &cfg.API.TimeoutSec},
		{"poll interval", fb.pollInterval, &cfg.Notifications.PollIntervalSec},
		{"notification limit", fb.limit, &cfg.Notifications.Limit},
	}
	for _, f := range ints {
		n, err := strconv.Atoi(strings.TrimSpace(f.raw))
		if err != nil {
			return cfg, fmt.Errorf("%s must be a number", f.name)
		}
		*f.dst = n
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("Root of the REST API").
				Placeholder("http://localhost:8080/").
				Value(&m.fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Request timeout (seconds)").
				Value(&m.fb.timeout).
				Validate(validatePositive("Request timeout")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Notification poll interval (seconds)").
				Value(&m.fb.pollInterval).
				Validate(validatePositive("Poll interval")),
			huh.NewInput().
				Title("Notifications kept").
				Description("How many of the most recent notifications are shown").
				Value(&m.fb.limit).
				Validate(validatePositive("Limit")),
			huh.NewSelect[string]().
				Title("When a poll fails").
				Options(
					huh.NewOption("Keep the last list", config.FailureKeep),
					huh.NewOption("Clear the list", config.FailureReset),
				).
				Value(&m.fb.onFailure),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&m.fb.logLevel),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

// View renders the settings view for the current mode.
func (m Model) View() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	switch m.mode {
	case ModeValidating:
		return style.Render(fmt.Sprintf("%s Checking %s...", m.spinner.View(), m.fb.baseURL))

	case ModeResult:
		if m.err != nil {
			errStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed)
			return style.Render(errStyle.Render("Settings not saved") + "\n\n" +
				m.err.Error() + "\n\n" +
				theme.HelpStyle.Render("r retry | enter/esc back"))
		}
		okStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen)
		return style.Render(okStyle.Render("Settings saved") + "\n\n" +
			"Written to " + m.path + ".\nRestart dayboard to apply them.\n\n" +
			theme.HelpStyle.Render("enter/esc back"))
	}

	if m.form == nil {
		return ""
	}
	return style.Render(theme.TitleStyle.Render("Settings") + "\n" +
		theme.HelpStyle.Render(m.path) + "\n\n" + m.form.View())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	w := m.width - 6
	if w > 80 {
		w = 80
	}
	if w < 30 {
		w = 30
	}
	return w
}

// --- Validators ---

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., http://localhost:8080)")
	}
	return nil
}

func validatePositive(fieldName string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%s must be a number", fieldName)
		}
		if n <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
		return nil
	}
}
