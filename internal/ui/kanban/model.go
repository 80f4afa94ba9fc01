// Package kanban renders the four-column task board.
package kanban

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/dayboard/internal/dateutil"
	"github.com/nhle/dayboard/internal/kanban"
	"github.com/nhle/dayboard/internal/keys"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/theme"
	"github.com/nhle/dayboard/internal/ui"
	"github.com/nhle/dayboard/internal/ui/detail"
	"github.com/nhle/dayboard/internal/ui/entryform"
)

// LoadedMsg carries a freshly fetched board.
type LoadedMsg struct {
	Board *kanban.Board
	Err   error
}

// movedMsg reports the outcome of persisting a cross-column move.
type movedMsg struct {
	task model.Task
	err  error
}

// Model is the kanban view.
type Model struct {
	svc    *kanban.Service
	keys   *keys.KeyMap
	board  *kanban.Board
	col    int
	row    [4]int
	saving int
	err    error
	width  int
	height int
}

// New creates the kanban view.
func New(svc *kanban.Service, k *keys.KeyMap, width, height int) Model {
	return Model{svc: svc, keys: k, width: width, height: height}
}

// Load returns a command that fetches the board.
func (m Model) Load() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := ui.RequestContext()
		defer cancel()
		b, err := svc.Load(ctx)
		return LoadedMsg{Board: b, Err: err}
	}
}

// Update handles messages for the kanban view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.err = msg.Err
		if msg.Err != nil {
			return m, func() tea.Msg { return ui.ResultMsg{Err: msg.Err} }
		}
		m.board = msg.Board
		m.clampRows()
		return m, nil

	case movedMsg:
		m.saving = max(m.saving-1, 0)
		if msg.err != nil {
			err := msg.err
			return m, tea.Batch(
				func() tea.Msg { return ui.ResultMsg{Err: err} },
				m.Load(),
			)
		}
		info := fmt.Sprintf("Moved %q to %s", msg.task.Title, msg.task.Status.Label())
		return m, func() tea.Msg { return ui.ResultMsg{Info: info} }

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m, m.Load()
	case key.Matches(msg, m.keys.New):
		return m, func() tea.Msg { return entryform.OpenMsg{Kind: entryform.KindTask} }
	}
	if m.board == nil {
		return m, nil
	}

	cols := m.board.Columns()
	switch {
	case key.Matches(msg, m.keys.Left):
		m.col = (m.col + len(cols) - 1) % len(cols)
	case key.Matches(msg, m.keys.Right):
		m.col = (m.col + 1) % len(cols)
	case key.Matches(msg, m.keys.Down):
		if n := m.board.Len(cols[m.col]); m.row[m.col] < n-1 {
			m.row[m.col]++
		}
	case key.Matches(msg, m.keys.Up):
		if m.row[m.col] > 0 {
			m.row[m.col]--
		}
	case key.Matches(msg, m.keys.MoveLeft):
		if m.col > 0 {
			return m.move(m.col-1, m.row[m.col-1])
		}
	case key.Matches(msg, m.keys.MoveRight):
		if m.col < len(cols)-1 {
			return m.move(m.col+1, m.row[m.col+1])
		}
	case key.Matches(msg, m.keys.MoveUp):
		return m.move(m.col, m.row[m.col]-1)
	case key.Matches(msg, m.keys.MoveDown):
		return m.move(m.col, m.row[m.col]+1)
	case key.Matches(msg, m.keys.Select):
		tasks := m.board.Column(cols[m.col])
		if i := m.row[m.col]; i < len(tasks) {
			t := tasks[i]
			return m, func() tea.Msg { return detail.OpenMsg{Task: t} }
		}
	}
	return m, nil
}

// move drops the selected card at (toCol, toRow). The board changes
// immediately; only a cross-column move reaches the server.
func (m Model) move(toCol, toRow int) (Model, tea.Cmd) {
	cols := m.board.Columns()
	from, to := cols[m.col], cols[toCol]
	fromRow := m.row[m.col]
	if m.board.Len(from) == 0 || toRow < 0 {
		return m, nil
	}

	task, crossed, err := m.board.Move(from, fromRow, to, toRow)
	if err != nil {
		return m, func() tea.Msg { return ui.ResultMsg{Err: err} }
	}
	m.col = toCol
	m.row[toCol] = min(toRow, m.board.Len(to)-1)
	m.clampRows()
	if !crossed {
		return m, nil
	}

	m.saving++
	svc := m.svc
	return m, func() tea.Msg {
		ctx, cancel := ui.RequestContext()
		defer cancel()
		return movedMsg{task: task, err: svc.Persist(ctx, task)}
	}
}

func (m *Model) clampRows() {
	if m.board == nil {
		return
	}
	for i, s := range m.board.Columns() {
		n := m.board.Len(s)
		m.row[i] = max(min(m.row[i], n-1), 0)
	}
}

// View renders the board.
func (m Model) View() string {
	if m.board == nil {
		text := "Loading board..."
		if m.err != nil {
			text = "Could not load the board.\nPress r to retry."
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.HelpStyle.Render(text))
	}

	cols := m.board.Columns()
	colWidth := max(m.width/len(cols), 20)
	rendered := make([]string, len(cols))
	for i, s := range cols {
		rendered[i] = m.renderColumn(i, s, colWidth)
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	if m.saving > 0 {
		board += "\n" + theme.HelpStyle.Render("saving...")
	}
	return board
}

func (m Model) renderColumn(i int, status model.TaskStatus, width int) string {
	tasks := m.board.Column(status)
	header := theme.StatusStyle(status).Render(fmt.Sprintf("%s %s (%d)", status.Icon(), status.Label(), len(tasks)))

	lines := []string{header}
	if len(tasks) == 0 {
		lines = append(lines, theme.HelpStyle.Render(status.EmptyMessage()))
	}
	now := time.Now()
	for j, t := range tasks {
		text := fmt.Sprintf("%s %s", theme.PriorityStyle(t.Priority).Render(t.Priority.Icon()), truncate(t.Title, width-8))
		if due := dateutil.DueLabel(t.DueDate, now); due != "" && status != model.TaskStatusCompleted {
			style := theme.HelpStyle
			if dateutil.IsOverdue(t.DueDate, now) {
				style = theme.OverdueStyle
			}
			text += "\n   " + style.Render(due)
		}
		if i == m.col && j == m.row[i] {
			lines = append(lines, theme.SelectedItemStyle.Render(text))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(text))
		}
	}

	style := theme.PanelStyle
	if i == m.col {
		style = theme.FocusedPanelStyle
	}
	return style.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 2 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
