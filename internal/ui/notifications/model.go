// Package notifications renders the notification feed kept by the poller.
package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/dayboard/internal/dateutil"
	"github.com/nhle/dayboard/internal/keys"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/notify"
	"github.com/nhle/dayboard/internal/theme"
	"github.com/nhle/dayboard/internal/ui"
)

// Model is the notification feed view.
type Model struct {
	poller *notify.Poller
	keys   *keys.KeyMap
	items  []model.Notification
	unread int
	cursor int
	offset int
	err    error
	width  int
	height int
}

// New creates the notification view over poller.
func New(poller *notify.Poller, k *keys.KeyMap, width, height int) Model {
	m := Model{poller: poller, keys: k, width: width, height: height}
	m.sync()
	return m
}

func (m *Model) sync() {
	m.items = m.poller.Notifications()
	m.unread = m.poller.UnreadCount()
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
}

// Update handles messages for the notification view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notify.UpdateMsg:
		m.err = msg.Err
		m.sync()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Refresh):
		m.poller.Refresh()
	case key.Matches(msg, m.keys.Select):
		n, ok := m.selected()
		if !ok || n.IsRead {
			return m, nil
		}
		p := m.poller
		return m, ui.Run("", func(ctx context.Context) error {
			return p.MarkAsRead(ctx, n.ID)
		})
	case key.Matches(msg, m.keys.MarkAll):
		if m.unread == 0 {
			return m, nil
		}
		p := m.poller
		return m, ui.Run("All notifications marked as read", func(ctx context.Context) error {
			if err := p.MarkAllAsRead(ctx); err != nil {
				return fmt.Errorf("marking notifications as read: %w", err)
			}
			return nil
		})
	case key.Matches(msg, m.keys.Delete):
		if n, ok := m.selected(); ok {
			m.poller.Remove(n.ID)
		}
	case key.Matches(msg, m.keys.Clear):
		m.poller.Clear()
	}
	m.scroll()
	return m, nil
}

func (m Model) selected() (model.Notification, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return model.Notification{}, false
	}
	return m.items[m.cursor], true
}

// rowsVisible is how many two-line rows fit.
func (m Model) rowsVisible() int {
	return max((m.height-2)/2, 1)
}

func (m *Model) scroll() {
	rows := m.rowsVisible()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// View renders the feed.
func (m Model) View() string {
	header := theme.HeaderStyle.Render(fmt.Sprintf("Notifications (%d unread)", m.unread))
	if m.err != nil {
		header += " " + theme.StaleStyle.Render("last refresh failed")
	}

	if len(m.items) == 0 {
		body := lipgloss.Place(m.width, max(m.height-1, 1), lipgloss.Center, lipgloss.Center,
			theme.HelpStyle.Render("You're all caught up."))
		return header + "\n" + body
	}

	now := time.Now()
	end := min(m.offset+m.rowsVisible(), len(m.items))
	lines := []string{header}
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(i, m.items[i], now))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(i int, n model.Notification, now time.Time) string {
	icon := theme.NotificationStyle(n.Type).Render(n.Type.Icon())
	title := n.Title
	if !n.IsRead {
		title = lipgloss.NewStyle().Bold(true).Render("• " + title)
	}
	first := fmt.Sprintf("%s %s  %s", icon, title, theme.HelpStyle.Render(dateutil.RelativeTimestamp(n.SentAt, now)))
	second := "   " + n.Message
	if n.IsRead {
		second = theme.HelpStyle.Render(second)
	}

	row := first + "\n" + second
	if i == m.cursor {
		return theme.SelectedItemStyle.Render(row)
	}
	return theme.ListItemStyle.Render(row)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
