// Package dashboard renders today's snapshot as a grid of widgets.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/dayboard/internal/dashboard"
	"github.com/nhle/dayboard/internal/dateutil"
	"github.com/nhle/dayboard/internal/focus"
	"github.com/nhle/dayboard/internal/guard"
	"github.com/nhle/dayboard/internal/keys"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/theme"
	"github.com/nhle/dayboard/internal/ui"
	"github.com/nhle/dayboard/internal/ui/entryform"
)

// diaryPreview is how many diary entries the widget shows.
const diaryPreview = 3

// Panel identifies a widget.
type Panel int

const (
	PanelTasks Panel = iota
	PanelHabits
	PanelGoals
	PanelEvents
	PanelDiary
	PanelTimer
	panelCount
)

var panelTitles = [panelCount]string{"Today's tasks", "Habits", "Goals", "Upcoming events", "Diary", "Focus"}

// SnapshotMsg carries a newly published snapshot.
type SnapshotMsg struct {
	Snapshot model.DashboardSnapshot
}

// LoadedMsg reports the end of a load.
type LoadedMsg struct {
	Err error
}

// timerTickMsg advances the focus timer.
type timerTickMsg time.Time

// WaitForSnapshot returns a command that delivers the next snapshot from ch.
func WaitForSnapshot(ch <-chan model.DashboardSnapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// Model is the dashboard view.
type Model struct {
	agg      *dashboard.Aggregator
	actions  *dashboard.Actions
	timer    *focus.Timer
	recorder *focus.Recorder
	keys     *keys.KeyMap
	now      func() time.Time

	snap    model.DashboardSnapshot
	loading bool
	focused Panel
	cursor  [panelCount]int
	ticking bool

	spinner spinner.Model
	bar     progress.Model
	width   int
	height  int
}

// New creates the dashboard view.
func New(agg *dashboard.Aggregator, actions *dashboard.Actions, recorder *focus.Recorder, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		agg:      agg,
		actions:  actions,
		timer:    focus.NewTimer(),
		recorder: recorder,
		keys:     k,
		now:      time.Now,
		snap:     agg.Snapshot(),
		loading:  agg.IsLoading(),
		spinner:  sp,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(16), progress.WithoutPercentage()),
		width:    width,
		height:   height,
	}
}

// Load returns a command that reloads the snapshot.
func (m Model) Load() tea.Cmd {
	agg := m.agg
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := ui.RequestContext()
		defer cancel()
		return LoadedMsg{Err: agg.Load(ctx)}
	})
}

// Snapshot returns the snapshot currently shown.
func (m Model) Snapshot() model.DashboardSnapshot { return m.snap }

// Timer exposes the focus timer.
func (m Model) Timer() *focus.Timer { return m.timer }

// Update handles messages for the dashboard view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.snap = msg.Snapshot
		m.loading = m.agg.IsLoading()
		m.clampCursors()
		return m, nil

	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			return m, func() tea.Msg { return ui.ResultMsg{Err: msg.Err} }
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case timerTickMsg:
		return m, m.onTimerTick(time.Time(msg))

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		m.focused = (m.focused + 1) % panelCount
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.Load()
	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggleSelected()
	case key.Matches(msg, m.keys.Increase):
		return m, m.bumpGoal(10)
	case key.Matches(msg, m.keys.Decrease):
		return m, m.bumpGoal(-10)
	case key.Matches(msg, m.keys.New):
		return m, m.newEntry()
	case key.Matches(msg, m.keys.Select):
		return m, m.openSelected()
	case key.Matches(msg, m.keys.TimerStart):
		return m, m.toggleTimer()
	case key.Matches(msg, m.keys.TimerReset):
		fs, rec := m.timer.Reset(m.now())
		return m, m.record(fs, rec)
	case key.Matches(msg, m.keys.TimerSkip):
		fs, rec := m.timer.Skip(m.now())
		return m, m.record(fs, rec)
	case key.Matches(msg, m.keys.TimerMode):
		fs, rec := m.timer.SetMode(nextMode(m.timer.Mode()), m.now())
		return m, m.record(fs, rec)
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	n := m.panelLen(m.focused)
	if n == 0 {
		return
	}
	m.cursor[m.focused] = (m.cursor[m.focused] + delta + n) % n
}

func (m *Model) clampCursors() {
	for p := Panel(0); p < panelCount; p++ {
		n := m.panelLen(p)
		if m.cursor[p] >= n {
			m.cursor[p] = max(n-1, 0)
		}
	}
}

func (m Model) panelLen(p Panel) int {
	switch p {
	case PanelTasks:
		return len(m.snap.Tasks)
	case PanelHabits:
		return len(m.snap.Habits)
	case PanelGoals:
		return len(m.snap.Goals)
	case PanelEvents:
		return len(m.snap.Events)
	case PanelDiary:
		return len(model.RecentDiary(m.snap.Diary, diaryPreview))
	}
	return 0
}

func (m Model) toggleSelected() tea.Cmd {
	i := m.cursor[m.focused]
	switch m.focused {
	case PanelHabits:
		if i >= len(m.snap.Habits) {
			return nil
		}
		h := m.snap.Habits[i]
		actions := m.actions
		return ui.Run("", func(ctx context.Context) error {
			return actions.ToggleHabit(ctx, h.ID)
		})
	case PanelTasks:
		if i >= len(m.snap.Tasks) {
			return nil
		}
		t := m.snap.Tasks[i]
		done := t.Status != model.TaskStatusCompleted
		actions := m.actions
		return ui.Run("Task updated", func(ctx context.Context) error {
			return actions.SetTaskCompleted(ctx, t.ID, done)
		})
	}
	return nil
}

func (m Model) bumpGoal(delta int) tea.Cmd {
	i := m.cursor[PanelGoals]
	if m.focused != PanelGoals || i >= len(m.snap.Goals) {
		return nil
	}
	g := m.snap.Goals[i]
	actions := m.actions
	return ui.Run("", func(ctx context.Context) error {
		return actions.SetGoalProgress(ctx, g.ID, g.Progress+delta)
	})
}

func (m Model) newEntry() tea.Cmd {
	var kind entryform.Kind
	switch m.focused {
	case PanelTasks:
		kind = entryform.KindTask
	case PanelHabits:
		kind = entryform.KindHabit
	case PanelGoals:
		kind = entryform.KindGoal
	case PanelEvents:
		kind = entryform.KindEvent
	case PanelDiary:
		kind = entryform.KindDiary
	default:
		return nil
	}
	return func() tea.Msg { return entryform.OpenMsg{Kind: kind} }
}

func (m Model) openSelected() tea.Cmd {
	switch m.focused {
	case PanelTasks:
		return ui.Navigate(guard.RouteTasks)
	case PanelHabits:
		return ui.Navigate(guard.RouteHabits)
	case PanelGoals:
		return ui.Navigate(guard.RouteGoals)
	case PanelEvents:
		return ui.Navigate(guard.RouteEvents)
	case PanelDiary:
		return ui.Navigate(guard.RouteDiary)
	}
	return nil
}

func (m *Model) toggleTimer() tea.Cmd {
	now := m.now()
	if m.timer.Running() {
		m.timer.Pause(now)
		return nil
	}
	m.timer.Start(now)
	return m.scheduleTick()
}

func (m *Model) scheduleTick() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return timerTickMsg(t) })
}

func (m *Model) onTimerTick(now time.Time) tea.Cmd {
	m.ticking = false
	if !m.timer.Running() {
		return nil
	}
	if fs, done := m.timer.Tick(now); done {
		return m.record(fs, true)
	}
	return m.scheduleTick()
}

func (m Model) record(fs model.FocusSession, ok bool) tea.Cmd {
	if !ok || m.recorder == nil {
		return nil
	}
	rec := m.recorder
	info := fmt.Sprintf("%s session saved", fs.TimerMode.Label())
	return ui.Run(info, func(ctx context.Context) error {
		return rec.Save(ctx, fs)
	})
}

func nextMode(cur model.TimerMode) model.TimerMode {
	modes := model.TimerModes()
	for i, mode := range modes {
		if mode == cur {
			return modes[(i+1)%len(modes)]
		}
	}
	return model.TimerModeWork
}

// View renders the widget grid.
func (m Model) View() string {
	if m.loading && len(m.snap.Tasks) == 0 && m.snap.User == nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading your day...")
	}

	colWidth := max((m.width-2)/3, 24)
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.panel(PanelTasks, colWidth, m.renderTasks()),
		m.panel(PanelEvents, colWidth, m.renderEvents()),
	)
	middle := lipgloss.JoinVertical(lipgloss.Left,
		m.panel(PanelHabits, colWidth, m.renderHabits()),
		m.panel(PanelGoals, colWidth, m.renderGoals()),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.panel(PanelTimer, colWidth, m.renderTimer()),
		m.panel(PanelDiary, colWidth, m.renderDiary()),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderGreeting(),
		lipgloss.JoinHorizontal(lipgloss.Top, left, middle, right),
	)
}

func (m Model) panel(p Panel, width int, body string) string {
	style := theme.PanelStyle
	if p == m.focused {
		style = theme.FocusedPanelStyle
	}
	title := lipgloss.NewStyle().Bold(true).Render(panelTitles[p])
	return style.Width(width - 2).Render(title + "\n" + body)
}

func (m Model) renderGreeting() string {
	name := "there"
	if m.snap.User != nil && m.snap.User.FirstName != "" {
		name = m.snap.User.FirstName
	}
	stats := model.CountTasks(m.snap.Tasks)
	goals := model.CountGoals(m.snap.Goals)
	line := fmt.Sprintf("Hello, %s · %s · tasks %d/%d done · goals %d/%d reached",
		name, m.now().Format("Monday, January 2"),
		stats.Completed, stats.Total, goals.Completed, goals.Total)
	if m.snap.Stale {
		line += " " + theme.StaleStyle.Render("(offline copy from "+m.snap.FetchedAt.Local().Format("15:04")+")")
	}
	if m.loading {
		line += " " + m.spinner.View()
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(line)
}

func (m Model) row(p Panel, i int, text string) string {
	if p == m.focused && i == m.cursor[p] {
		return theme.SelectedItemStyle.Render(text)
	}
	return theme.ListItemStyle.Render(text)
}

func empty(text string) string {
	return theme.HelpStyle.Render(text)
}

func (m Model) renderTasks() string {
	if len(m.snap.Tasks) == 0 {
		return empty("Nothing due today")
	}
	now := m.now()
	lines := make([]string, 0, len(m.snap.Tasks))
	for i, t := range m.snap.Tasks {
		title := t.Title
		if t.Status == model.TaskStatusCompleted {
			title = theme.DimmedStyle.Render(title)
		}
		text := fmt.Sprintf("%s %s %s", t.Status.Icon(), theme.PriorityStyle(t.Priority).Render(t.Priority.Icon()), title)
		if due := dateutil.DueLabel(t.DueDate, now); due != "" {
			style := theme.HelpStyle
			if dateutil.IsOverdue(t.DueDate, now) && t.Status != model.TaskStatusCompleted {
				style = theme.OverdueStyle
			}
			text += " " + style.Render(due)
		}
		lines = append(lines, m.row(PanelTasks, i, text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHabits() string {
	if len(m.snap.Habits) == 0 {
		return empty("No active habits")
	}
	lines := make([]string, 0, len(m.snap.Habits))
	for i, h := range m.snap.Habits {
		box := "[ ]"
		if h.CompletedToday {
			box = "[x]"
		}
		if m.actions != nil && m.actions.HabitBusy(h.ID) {
			box = "[…]"
		}
		text := fmt.Sprintf("%s %s", box, h.Name)
		if h.CurrentStreak > 0 {
			text += theme.HelpStyle.Render(fmt.Sprintf(" %d-day streak", h.CurrentStreak))
		}
		lines = append(lines, m.row(PanelHabits, i, text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderGoals() string {
	if len(m.snap.Goals) == 0 {
		return empty("No goals yet")
	}
	lines := make([]string, 0, len(m.snap.Goals))
	for i, g := range m.snap.Goals {
		text := fmt.Sprintf("%s %s %3d%%", g.Title, m.bar.ViewAs(float64(g.Progress)/100), g.Progress)
		lines = append(lines, m.row(PanelGoals, i, text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEvents() string {
	if len(m.snap.Events) == 0 {
		return empty("No upcoming events")
	}
	now := m.now()
	lines := make([]string, 0, len(m.snap.Events))
	for i, e := range m.snap.Events {
		text := fmt.Sprintf("%s %s", theme.HelpStyle.Render(dateutil.EventLabel(e.StartDateTime, now)), e.Title)
		if e.Location != "" {
			text += theme.HelpStyle.Render(" @ " + e.Location)
		}
		lines = append(lines, m.row(PanelEvents, i, text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDiary() string {
	entries := model.RecentDiary(m.snap.Diary, diaryPreview)
	if len(entries) == 0 {
		return empty("Write your first entry with n")
	}
	now := m.now()
	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		title := e.Title
		if title == "" {
			title = truncate(e.Content, 30)
		}
		label := dateutil.RelativeTimestamp(e.EntryDate, now)
		if t, ok := model.ParseTimestamp(e.EntryDate, now.Location()); ok {
			label = dateutil.DateLabel(t, now)
		}
		lines = append(lines, m.row(PanelDiary, i, fmt.Sprintf("%s %s", theme.HelpStyle.Render(label), title)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTimer() string {
	state := "paused"
	switch {
	case m.timer.Running():
		state = "running"
	case !m.timer.Started():
		state = "ready"
	}
	clock := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorMagenta).Render(m.timer.Clock())
	return fmt.Sprintf("%s  %s (%s)\n%s", clock, m.timer.Mode().Label(), state,
		theme.HelpStyle.Render(fmt.Sprintf("%d sessions · space start/pause · s skip · m mode", m.timer.Completed())))
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
