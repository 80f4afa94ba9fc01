// Package detail renders a single task with its metadata and description.
package detail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/dayboard/internal/dateutil"
	"github.com/nhle/dayboard/internal/keys"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/theme"
	"github.com/nhle/dayboard/internal/ui"
)

// OpenMsg asks the app to show Task.
type OpenMsg struct {
	Task model.Task
}

// BackMsg signals the parent to navigate back to the board.
type BackMsg struct{}

// Deleter removes a task.
type Deleter interface {
	DeleteTask(ctx context.Context, id int64) error
}

// Model is the task detail view component.
type Model struct {
	task     *model.Task
	viewport viewport.Model
	deleter  Deleter
	keys     *keys.KeyMap
	now      func() time.Time
	width    int
	height   int
}

// New creates a new detail view model.
func New(d Deleter, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, max(height-2, 1))
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		deleter:  d,
		keys:     k,
		now:      time.Now,
		width:    width,
		height:   height,
	}
}

// SetTask updates the task being displayed and re-renders the content.
func (m *Model) SetTask(t model.Task) {
	m.task = &t
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Delete):
			if m.task == nil {
				return m, nil
			}
			id, title, d := m.task.ID, m.task.Title, m.deleter
			return m, tea.Sequence(
				ui.Run(fmt.Sprintf("Deleted %q", title), func(ctx context.Context) error {
					return d.DeleteTask(ctx, id)
				}),
				func() tea.Msg { return BackMsg{} },
			)
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.task == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No task selected")
	}
	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}

	task := m.task
	now := m.now()
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(task.Title))

	// Badges line: status + priority + type
	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.StatusStyle(task.Status).Render(task.Status.Icon()+" "+task.Status.Label()),
		"  ",
		theme.PriorityStyle(task.Priority).Render(task.Priority.Icon()+" "+task.Priority.Label()),
		"  ",
		theme.HelpStyle.Render(task.Type.Label()),
	)
	sections = append(sections, badgeLine, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(10)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	meta := func(label, value string) {
		if value != "" {
			sections = append(sections, metaStyle.Render(label)+valStyle.Render(value))
		}
	}

	meta("Starts", longDate(task.StartDate, now))
	if task.DueDate != "" {
		due := longDate(task.DueDate, now)
		if label := dateutil.DueLabel(task.DueDate, now); label != "" && task.Status != model.TaskStatusCompleted {
			style := theme.HelpStyle
			if dateutil.IsOverdue(task.DueDate, now) {
				style = theme.OverdueStyle
			}
			due += "  " + style.Render(label)
		}
		meta("Due", due)
	}
	meta("Created", dateutil.RelativeTimestamp(task.CreatedAt, now))
	meta("Updated", dateutil.RelativeTimestamp(task.UpdatedAt, now))

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	descHeaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	sections = append(sections, descHeaderStyle.Render("Description"))

	body := lipgloss.NewStyle().Width(max(m.width-2, 10)).Render(task.Description)
	if strings.TrimSpace(task.Description) == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func longDate(s string, now time.Time) string {
	if s == "" {
		return ""
	}
	t, ok := model.ParseTimestamp(s, now.Location())
	if !ok {
		return s
	}
	return t.Format("Mon, Jan 2 2006")
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 1)
	if m.task != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
