// Package auth renders the login and registration forms.
package auth

import (
	"fmt"
	"net/mail"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/theme"
)

// Mode selects which form is shown.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// LoginMsg is dispatched when the login form is submitted.
type LoginMsg struct {
	Credentials model.Credentials
}

// RegisterMsg is dispatched when the registration form is submitted.
type RegisterMsg struct {
	Request model.RegisterRequest
}

// SwitchMsg asks the app to navigate to the other auth page.
type SwitchMsg struct {
	To Mode
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	firstName string
	lastName  string
	email     string
	password  string
	confirm   string
}

// Model is the login / register view.
type Model struct {
	mode   Mode
	form   *huh.Form
	fb     *formBindings
	busy   bool
	width  int
	height int
}

// New creates an auth view showing mode.
func New(mode Mode, width, height int) Model {
	return Model{mode: mode, fb: &formBindings{}, width: width, height: height}
}

// Mode returns the form currently shown.
func (m Model) Mode() Mode { return m.mode }

// Start (re)builds the form for mode, keeping the typed email.
func (m *Model) Start(mode Mode) tea.Cmd {
	m.mode = mode
	m.busy = false
	m.fb.password = ""
	m.fb.confirm = ""
	if mode == ModeRegister {
		m.form = m.buildRegisterForm()
	} else {
		m.form = m.buildLoginForm()
	}
	return m.form.Init()
}

// SetBusy marks a submission in flight.
func (m *Model) SetBusy(busy bool) { m.busy = busy }

// Update handles messages for the auth view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.busy {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+n" {
		other := ModeRegister
		if m.mode == ModeRegister {
			other = ModeLogin
		}
		return m, func() tea.Msg { return SwitchMsg{To: other} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.busy = true
		return m, m.handleSubmit()
	case huh.StateAborted:
		return m, m.Start(m.mode)
	}
	return m, cmd
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb
	email := strings.TrimSpace(fb.email)
	if m.mode == ModeRegister {
		req := model.RegisterRequest{
			FirstName: strings.TrimSpace(fb.firstName),
			LastName:  strings.TrimSpace(fb.lastName),
			Email:     email,
			Password:  fb.password,
		}
		return func() tea.Msg { return RegisterMsg{Request: req} }
	}
	creds := model.Credentials{Email: email, Password: fb.password}
	return func() tea.Msg { return LoginMsg{Credentials: creds} }
}

// View renders the active form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title, other := "Sign in", "ctrl+n create an account"
	if m.mode == ModeRegister {
		title, other = "Create account", "ctrl+n back to sign in"
	}
	content := theme.TitleStyle.Render(title) + "\n" + m.form.View() +
		"\n" + theme.HelpStyle.Render(other)
	if m.busy {
		content += "\n" + theme.HelpStyle.Render("working...")
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		theme.PanelStyle.Padding(1, 2).Render(content))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			m.emailField(),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Password")),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

func (m *Model) buildRegisterForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("First name").
				Value(&m.fb.firstName).
				Validate(validateRequired("First name")),
			huh.NewInput().
				Title("Last name").
				Value(&m.fb.lastName).
				Validate(validateRequired("Last name")),
			m.emailField(),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validatePassword),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.confirm).
				Validate(func(s string) error {
					if s != m.fb.password {
						return fmt.Errorf("passwords do not match")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

func (m *Model) emailField() huh.Field {
	return huh.NewInput().
		Title("Email").
		Placeholder("you@example.com").
		Value(&m.fb.email).
		Validate(validateEmail)
}

func (m Model) formWidth() int {
	return min(max(m.width/2, 40), 80)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

func validatePassword(s string) error {
	if len(s) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}
