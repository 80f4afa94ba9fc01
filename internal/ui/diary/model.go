// Package diary renders diary entries grouped by date with a reading pane.
package diary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/dayboard/internal/dashboard"
	"github.com/nhle/dayboard/internal/dateutil"
	"github.com/nhle/dayboard/internal/keys"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/theme"
	"github.com/nhle/dayboard/internal/ui"
	"github.com/nhle/dayboard/internal/ui/entryform"
)

// row is either a group header or an entry in the flattened list.
type row struct {
	label string
	entry *model.DiaryEntry
}

// Model is the diary view.
type Model struct {
	actions *dashboard.Actions
	keys    *keys.KeyMap
	now     func() time.Time

	rows   []row
	cursor int
	pane   viewport.Model
	width  int
	height int
}

// New creates the diary view showing entries.
func New(actions *dashboard.Actions, entries []model.DiaryEntry, k *keys.KeyMap, width, height int) Model {
	m := Model{
		actions: actions,
		keys:    k,
		now:     time.Now,
		pane:    viewport.New(paneWidth(width), max(height-2, 1)),
		width:   width,
		height:  height,
	}
	m.SetEntries(entries)
	return m
}

// SetEntries regroups the list, keeping the cursor on the same entry when
// it still exists.
func (m *Model) SetEntries(entries []model.DiaryEntry) {
	var keep int64 = -1
	if e := m.selected(); e != nil {
		keep = e.ID
	}

	entries = model.RecentDiary(entries, -1)
	groups := dateutil.GroupByDateLabel(entries, func(e model.DiaryEntry) string { return e.EntryDate }, m.now())

	m.rows = nil
	for _, g := range groups {
		m.rows = append(m.rows, row{label: g.Label})
		for i := range g.Entries {
			m.rows = append(m.rows, row{entry: &g.Entries[i]})
		}
	}

	m.cursor = m.firstEntry(0, 1)
	for i, r := range m.rows {
		if r.entry != nil && r.entry.ID == keep {
			m.cursor = i
			break
		}
	}
	m.refreshPane()
}

// Update handles messages for the diary view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Down):
			m.cursor = m.firstEntry(m.cursor+1, 1)
			m.refreshPane()
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.cursor = m.firstEntry(m.cursor-1, -1)
			m.refreshPane()
			return m, nil
		case key.Matches(msg, m.keys.New):
			return m, func() tea.Msg { return entryform.OpenMsg{Kind: entryform.KindDiary} }
		case key.Matches(msg, m.keys.Delete):
			e := m.selected()
			if e == nil {
				return m, nil
			}
			id, actions := e.ID, m.actions
			return m, ui.Run("Diary entry deleted", func(ctx context.Context) error {
				return actions.DeleteDiaryEntry(ctx, id)
			})
		}
	}

	var cmd tea.Cmd
	m.pane, cmd = m.pane.Update(msg)
	return m, cmd
}

// firstEntry walks from i in direction step to the nearest entry row. It
// returns the current cursor when there is none.
func (m Model) firstEntry(i, step int) int {
	for ; i >= 0 && i < len(m.rows); i += step {
		if m.rows[i].entry != nil {
			return i
		}
	}
	if m.cursor < len(m.rows) {
		return m.cursor
	}
	return 0
}

func (m Model) selected() *model.DiaryEntry {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].entry
}

func (m *Model) refreshPane() {
	e := m.selected()
	if e == nil {
		m.pane.SetContent(theme.HelpStyle.Render("No entry selected."))
		return
	}
	title := e.Title
	if title == "" {
		title = "Untitled"
	}
	date := e.EntryDate
	if t, ok := model.ParseTimestamp(e.EntryDate, m.now().Location()); ok {
		date = t.Format("Monday, January 2, 2006")
	}
	body := lipgloss.NewStyle().Width(m.pane.Width).Render(e.Content)
	m.pane.SetContent(theme.TitleStyle.Render(title) + "\n" + theme.HelpStyle.Render(date) + "\n\n" + body)
	m.pane.GotoTop()
}

// View renders the grouped list next to the reading pane.
func (m Model) View() string {
	if len(m.rows) == 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.HelpStyle.Render("No diary entries yet.\n\nPress n to write one."))
	}

	listWidth := m.width - paneWidth(m.width) - 4
	lines := make([]string, 0, len(m.rows))
	for i, r := range m.rows {
		if r.entry == nil {
			lines = append(lines, theme.TitleStyle.UnsetMarginBottom().Render(r.label))
			continue
		}
		title := r.entry.Title
		if title == "" {
			title = firstLine(r.entry.Content)
		}
		text := fmt.Sprintf("%s %s", theme.HelpStyle.Render(shortDate(r.entry.EntryDate, m.now())), title)
		if i == m.cursor {
			lines = append(lines, theme.SelectedItemStyle.Render(text))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(text))
		}
	}

	left := lipgloss.NewStyle().Width(max(listWidth, 20)).Height(m.height).Render(strings.Join(lines, "\n"))
	right := theme.PanelStyle.Render(m.pane.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func shortDate(s string, now time.Time) string {
	t, ok := model.ParseTimestamp(s, now.Location())
	if !ok {
		return s
	}
	return t.Format("Jan 02")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > 40 {
		return string(r[:39]) + "…"
	}
	return s
}

func paneWidth(width int) int {
	return max(width/2, 30)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.pane.Width = paneWidth(width)
	m.pane.Height = max(height-2, 1)
	m.refreshPane()
}
