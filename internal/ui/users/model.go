// Package users renders the admin account table.
package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/dayboard/internal/api"
	"github.com/nhle/dayboard/internal/dateutil"
	"github.com/nhle/dayboard/internal/keys"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/theme"
	"github.com/nhle/dayboard/internal/ui"
)

// Client is the part of the user API the table needs.
type Client interface {
	List(ctx context.Context, filter api.UserFilter) ([]model.User, error)
	Update(ctx context.Context, id int64, req model.UserRequest) (model.User, error)
}

// LoadedMsg carries the accounts matching the current filter.
type LoadedMsg struct {
	Users []model.User
	Err   error
}

// filters is the status filter cycle; "" shows every account.
var filters = []model.UserStatus{"", model.UserStatusActive, model.UserStatusBlocked, model.UserStatusDeleted}

// Model is the admin user view.
type Model struct {
	client Client
	keys   *keys.KeyMap
	table  table.Model
	users  []model.User
	filter int
	err    error
	width  int
	height int
}

// New creates the admin user view.
func New(client Client, k *keys.KeyMap, width, height int) Model {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(theme.ColorWhite).
		Background(theme.ColorBlue).
		Bold(false)

	t := table.New(
		table.WithColumns(columns(width)),
		table.WithFocused(true),
		table.WithHeight(max(height-3, 3)),
		table.WithStyles(styles),
	)
	return Model{client: client, keys: k, table: t, width: width, height: height}
}

func columns(width int) []table.Column {
	name := max((width-56)/2, 14)
	return []table.Column{
		{Title: "Name", Width: name},
		{Title: "Email", Width: name + 4},
		{Title: "Status", Width: 9},
		{Title: "Roles", Width: 12},
		{Title: "Joined", Width: 12},
		{Title: "Last login", Width: 14},
	}
}

// Load returns a command that fetches the accounts for the current filter.
func (m Model) Load() tea.Cmd {
	client := m.client
	filter := api.UserFilter{Status: string(filters[m.filter])}
	return func() tea.Msg {
		ctx, cancel := ui.RequestContext()
		defer cancel()
		users, err := client.List(ctx, filter)
		return LoadedMsg{Users: users, Err: err}
	}
}

// Update handles messages for the admin user view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.err = msg.Err
		if msg.Err != nil {
			return m, func() tea.Msg { return ui.ResultMsg{Err: msg.Err} }
		}
		m.users = msg.Users
		m.table.SetRows(rows(m.users, time.Now()))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Refresh):
			return m, m.Load()
		case key.Matches(msg, m.keys.Filter):
			m.filter = (m.filter + 1) % len(filters)
			return m, m.Load()
		case key.Matches(msg, m.keys.Toggle):
			return m, m.edit(ToggleBlocked)
		case key.Matches(msg, m.keys.ToggleAdmin):
			return m, m.edit(ToggleAdmin)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// edit applies change to the selected account and reloads the table.
func (m Model) edit(change func(model.User) model.UserRequest) tea.Cmd {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.users) {
		return nil
	}
	u := m.users[i]
	req := change(u)
	client := m.client
	info := fmt.Sprintf("Updated %s", u.Email)
	return tea.Sequence(ui.Run(info, func(ctx context.Context) error {
		if _, err := client.Update(ctx, u.ID, req); err != nil {
			return fmt.Errorf("updating %s: %w", u.Email, err)
		}
		return nil
	}), m.Load())
}

// ToggleBlocked blocks an active account and reactivates any other.
func ToggleBlocked(u model.User) model.UserRequest {
	req := u.Request()
	if u.Status == model.UserStatusActive {
		req.Status = model.UserStatusBlocked
	} else {
		req.Status = model.UserStatusActive
	}
	return req
}

// ToggleAdmin grants or revokes the admin role. Every account keeps the
// user role.
func ToggleAdmin(u model.User) model.UserRequest {
	req := u.Request()
	roles := []string{model.RoleUser}
	if !u.HasRole(model.RoleAdmin) {
		roles = append(roles, model.RoleAdmin)
	}
	req.Roles = roles
	return req
}

func rows(users []model.User, now time.Time) []table.Row {
	out := make([]table.Row, len(users))
	for i, u := range users {
		roles := make([]string, 0, len(u.Roles))
		for _, r := range u.Roles {
			roles = append(roles, model.EnumLabel(strings.TrimPrefix(r, "ROLE_")))
		}
		joined := u.CreatedAt
		if t, ok := model.ParseTimestamp(u.CreatedAt, now.Location()); ok {
			joined = t.Format("Jan 2, 2006")
		}
		lastLogin := "never"
		if u.LastLoginAt != "" {
			lastLogin = dateutil.RelativeTimestamp(u.LastLoginAt, now)
		}
		out[i] = table.Row{u.FullName(), u.Email, u.Status.Label(), strings.Join(roles, ", "), joined, lastLogin}
	}
	return out
}

// View renders the table.
func (m Model) View() string {
	label := "all"
	if f := filters[m.filter]; f != "" {
		label = strings.ToLower(f.Label())
	}
	header := theme.HeaderStyle.Render(fmt.Sprintf("Users (%d)", len(m.users))) +
		" " + theme.HelpStyle.Render("status: "+label+" · f filter · x block/activate · a admin")

	if len(m.users) == 0 {
		text := "No users match this filter."
		if m.err != nil {
			text = "Could not load users.\nPress r to retry."
		}
		return header + "\n" + lipgloss.Place(m.width, max(m.height-1, 1), lipgloss.Center, lipgloss.Center,
			theme.HelpStyle.Render(text))
	}
	return header + "\n" + m.table.View()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetWidth(width)
	m.table.SetHeight(max(height-3, 3))
}
