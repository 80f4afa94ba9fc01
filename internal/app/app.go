package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/dayboard/internal/api"
	"github.com/nhle/dayboard/internal/config"
	"github.com/nhle/dayboard/internal/dashboard"
	"github.com/nhle/dayboard/internal/focus"
	"github.com/nhle/dayboard/internal/guard"
	"github.com/nhle/dayboard/internal/kanban"
	"github.com/nhle/dayboard/internal/keys"
	"github.com/nhle/dayboard/internal/notify"
	"github.com/nhle/dayboard/internal/session"
	"github.com/nhle/dayboard/internal/ui"
	"github.com/nhle/dayboard/internal/ui/auth"
	"github.com/nhle/dayboard/internal/ui/collection"
	"github.com/nhle/dayboard/internal/ui/command"
	dashview "github.com/nhle/dayboard/internal/ui/dashboard"
	"github.com/nhle/dayboard/internal/ui/detail"
	"github.com/nhle/dayboard/internal/ui/diary"
	"github.com/nhle/dayboard/internal/ui/entryform"
	helpview "github.com/nhle/dayboard/internal/ui/help"
	kanbanview "github.com/nhle/dayboard/internal/ui/kanban"
	"github.com/nhle/dayboard/internal/ui/notifications"
	"github.com/nhle/dayboard/internal/ui/settings"
	"github.com/nhle/dayboard/internal/ui/users"
)

// toastDuration is how long a toast replaces the key hints.
const toastDuration = 4 * time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewRegister
	ViewDashboard
	ViewTasks
	ViewHabits
	ViewGoals
	ViewEvents
	ViewDiary
	ViewNotifications
	ViewUsers
	ViewDetail
	ViewForm
	ViewSettings
	ViewHelp
	ViewCommand
)

var routeViews = map[string]ViewState{
	guard.RouteLogin:         ViewLogin,
	guard.RouteRegister:      ViewRegister,
	guard.RouteDashboard:     ViewDashboard,
	guard.RouteTasks:         ViewTasks,
	guard.RouteHabits:        ViewHabits,
	guard.RouteGoals:         ViewGoals,
	guard.RouteEvents:        ViewEvents,
	guard.RouteDiary:         ViewDiary,
	guard.RouteNotifications: ViewNotifications,
	guard.RouteUsers:         ViewUsers,
}

// Deps are the services the UI drives.
type Deps struct {
	Session   *session.Store
	Services  *api.Services
	Router    *guard.Router
	Dashboard *dashboard.Aggregator
	Actions   *dashboard.Actions
	Poller    *notify.Poller
	Kanban    *kanban.Service
	Recorder  *focus.Recorder
	Log       *zap.Logger

	Config     *config.AppConfig
	ConfigPath string
}

type toast struct {
	text string
	err  bool
	seq  int
}

type clearToastMsg struct {
	seq int
}

// Model is the root Bubble Tea model. It owns view routing, the session
// lifecycle and the layout.
type Model struct {
	deps         Deps
	keys         *keys.KeyMap
	currentView  ViewState
	previousView ViewState
	route        string
	pending      string
	layout       ui.Layout
	ready        bool

	auth          auth.Model
	dash          dashview.Model
	board         kanbanview.Model
	detail        detail.Model
	habits        collection.Model
	goals         collection.Model
	events        collection.Model
	diary         diary.Model
	notifications notifications.Model
	users         users.Model
	form          entryform.Model
	settings      settings.Model
	helpView      helpview.Model
	commandView   command.Model

	sessionCh    <-chan bool
	unsubscribe  []func()
	active       bool
	pollWaiting  bool
	unread       int
	toast        toast
	snapshotWait tea.Cmd
}

// New creates the root model and subscribes to session and dashboard
// changes.
func New(deps Deps) Model {
	k := keys.DefaultKeyMap()
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Config == nil {
		deps.Config = config.Default()
	}

	sessionCh, unsubSession := deps.Session.Subscribe()
	snapCh, unsubSnap := deps.Dashboard.Subscribe()

	m := Model{
		deps:          deps,
		keys:          k,
		currentView:   ViewLogin,
		auth:          auth.New(auth.ModeLogin, 80, 24),
		dash:          dashview.New(deps.Dashboard, deps.Actions, deps.Recorder, k, 80, 24),
		board:         kanbanview.New(deps.Kanban, k, 80, 24),
		detail:        detail.New(deps.Actions, k, 80, 24),
		diary:         diary.New(deps.Actions, nil, k, 80, 24),
		notifications: notifications.New(deps.Poller, k, 80, 24),
		users:         users.New(deps.Services.Users, k, 80, 24),
		form:          entryform.New(80, 24),
		settings:      settings.New(deps.Config, deps.ConfigPath, probeBackend(deps.Log), k, 80, 24),
		helpView:      helpview.New(k, 80, 24),
		commandView:   command.New(80, 24),
		sessionCh:     sessionCh,
		unsubscribe:   []func(){unsubSession, unsubSnap},
		snapshotWait:  dashview.WaitForSnapshot(snapCh),
	}
	m.habits = collection.New(habitsCollection(deps), k, 80, 24)
	m.goals = collection.New(goalsCollection(deps), k, 80, 24)
	m.events = collection.New(eventsCollection(deps), k, 80, 24)
	return m
}

// Close drops the subscriptions taken by New.
func (m Model) Close() {
	for _, fn := range m.unsubscribe {
		fn()
	}
}

// Init waits for the first session state and snapshot.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("dayboard"),
		waitForSession(m.sessionCh),
		m.snapshotWait,
	)
}

// Update handles messages and dispatches to the views.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.auth.SetSize(w, h)
		m.dash.SetSize(w, h)
		m.board.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.habits.SetSize(w, h)
		m.goals.SetSize(w, h)
		m.events.SetSize(w, h)
		m.diary.SetSize(w, h)
		m.notifications.SetSize(w, h)
		m.users.SetSize(w, h)
		m.form.SetSize(w, h)
		m.settings.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to the active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case sessionMsg:
		return m, tea.Batch(m.onSession(msg.loggedIn), waitForSession(m.sessionCh))

	case authDoneMsg:
		return m, m.onAuthDone(msg)

	case auth.LoginMsg:
		return m, m.login(msg.Credentials)

	case auth.RegisterMsg:
		return m, m.register(msg.Request)

	case auth.SwitchMsg:
		if msg.To == auth.ModeRegister {
			return m, m.navigate(guard.RouteRegister)
		}
		return m, m.navigate(guard.RouteLogin)

	case dashview.SnapshotMsg:
		m.diary.SetEntries(msg.Snapshot.Diary)
		var cmd tea.Cmd
		m.dash, cmd = m.dash.Update(msg)
		return m, tea.Batch(cmd, m.snapshotWait)

	case notify.UpdateMsg:
		m.unread = msg.Unread
		var cmd tea.Cmd
		m.notifications, cmd = m.notifications.Update(msg)
		return m, tea.Batch(cmd, m.deps.Poller.WaitForNextUpdate())

	case ui.ResultMsg:
		return m, m.onResult(msg)

	case ui.NavigateMsg:
		return m, m.navigate(msg.Route)

	case clearToastMsg:
		if msg.seq == m.toast.seq {
			m.toast.text = ""
		}
		return m, nil

	case detail.OpenMsg:
		m.detail.SetTask(msg.Task)
		m.currentView = ViewDetail
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewTasks
		return m, m.board.Load()

	case entryform.OpenMsg:
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m, m.form.Start(msg.Kind)

	case entryform.SubmitMsg:
		m.currentView = m.previousView
		return m, m.submit(msg)

	case entryform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case settings.SavedMsg:
		m.deps.Config = msg.Config
		m.deps.Log.Info("settings saved", zap.String("path", m.deps.ConfigPath))
		return m, nil

	case settings.DoneMsg:
		m.currentView = m.previousView
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		if mdl, cmd, handled := m.handleGlobalKeys(msg); handled {
			return mdl, cmd
		}
		return m.updateActiveView(msg)
	}

	return m.broadcast(msg)
}

// handleGlobalKeys processes keys that work regardless of the active view.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit, true
	}
	if key.Matches(msg, m.keys.Settings) {
		switch m.currentView {
		case ViewForm, ViewSettings, ViewCommand:
		default:
			return m, m.openSettings(), true
		}
	}
	if m.typing() {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false

	case key.Matches(msg, m.keys.Logout):
		if !m.active {
			return m, nil, false
		}
		return m, m.logout("Signed out"), true
	}

	if !m.active {
		return m, nil, false
	}
	for route, binding := range m.routeKeys() {
		if key.Matches(msg, binding) {
			return m, m.navigate(route), true
		}
	}
	return m, nil, false
}

// typing reports whether the active view owns the keyboard.
func (m Model) typing() bool {
	switch m.currentView {
	case ViewLogin, ViewRegister, ViewForm, ViewSettings, ViewCommand:
		return true
	case ViewHabits:
		return m.habits.Filtering()
	case ViewGoals:
		return m.goals.Filtering()
	case ViewEvents:
		return m.events.Filtering()
	}
	return false
}

func (m Model) routeKeys() map[string]key.Binding {
	return map[string]key.Binding{
		guard.RouteDashboard:     m.keys.GoDashboard,
		guard.RouteTasks:         m.keys.GoTasks,
		guard.RouteHabits:        m.keys.GoHabits,
		guard.RouteGoals:         m.keys.GoGoals,
		guard.RouteEvents:        m.keys.GoEvents,
		guard.RouteDiary:         m.keys.GoDiary,
		guard.RouteNotifications: m.keys.GoNotifications,
		guard.RouteUsers:         m.keys.GoUsers,
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin, ViewRegister:
		m.auth, cmd = m.auth.Update(msg)
	case ViewDashboard:
		m.dash, cmd = m.dash.Update(msg)
	case ViewTasks:
		m.board, cmd = m.board.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHabits:
		m.habits, cmd = m.habits.Update(msg)
	case ViewGoals:
		m.goals, cmd = m.goals.Update(msg)
	case ViewEvents:
		m.events, cmd = m.events.Update(msg)
	case ViewDiary:
		m.diary, cmd = m.diary.Update(msg)
	case ViewNotifications:
		m.notifications, cmd = m.notifications.Update(msg)
	case ViewUsers:
		m.users, cmd = m.users.Update(msg)
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewSettings:
		m.settings, cmd = m.settings.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// broadcast delivers a non-key message to every data view, so load
// results and timer ticks land even when their view is in the background,
// and to the active view when it is an overlay.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 9)
	var cmd tea.Cmd

	m.dash, cmd = m.dash.Update(msg)
	cmds = append(cmds, cmd)
	m.board, cmd = m.board.Update(msg)
	cmds = append(cmds, cmd)
	m.habits, cmd = m.habits.Update(msg)
	cmds = append(cmds, cmd)
	m.goals, cmd = m.goals.Update(msg)
	cmds = append(cmds, cmd)
	m.events, cmd = m.events.Update(msg)
	cmds = append(cmds, cmd)
	m.diary, cmd = m.diary.Update(msg)
	cmds = append(cmds, cmd)
	m.users, cmd = m.users.Update(msg)
	cmds = append(cmds, cmd)

	switch m.currentView {
	case ViewLogin, ViewRegister, ViewForm, ViewSettings, ViewHelp, ViewCommand:
		mdl, cmd := m.updateActiveView(msg)
		m = mdl.(Model)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// showToast replaces the key hints with text for a few seconds.
func (m *Model) showToast(text string, isErr bool) tea.Cmd {
	m.toast = toast{text: text, err: isErr, seq: m.toast.seq + 1}
	seq := m.toast.seq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return clearToastMsg{seq: seq} })
}

// onResult shows the outcome of a user action. An unauthorized response
// ends the session.
func (m *Model) onResult(msg ui.ResultMsg) tea.Cmd {
	if msg.Err != nil {
		if api.IsUnauthorized(msg.Err) && m.active {
			m.deps.Log.Info("request rejected, signing out", zap.Error(msg.Err))
			return m.logout("Your session has ended, please sign in again")
		}
		m.deps.Log.Debug("action failed", zap.Error(msg.Err))
		return m.showToast(msg.Err.Error(), true)
	}
	if msg.Info != "" {
		return m.showToast(msg.Info, false)
	}
	return nil
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "dayboard"
	if m.unread > 0 {
		title = fmt.Sprintf("dayboard [%d new]", m.unread)
	}
	header := m.layout.RenderHeader(title, m.status())

	statusBar := m.layout.RenderStatusBar(m.keyHints())
	if m.toast.text != "" {
		statusBar = m.layout.RenderToast(m.toast.text, m.toast.err)
	}

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin, ViewRegister:
		return m.auth.View()
	case ViewDashboard:
		return m.dash.View()
	case ViewTasks:
		return m.board.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHabits:
		return m.habits.View()
	case ViewGoals:
		return m.goals.View()
	case ViewEvents:
		return m.events.View()
	case ViewDiary:
		return m.diary.View()
	case ViewNotifications:
		return m.notifications.View()
	case ViewUsers:
		return m.users.View()
	case ViewForm:
		return m.form.View()
	case ViewSettings:
		return m.settings.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// status describes who is signed in and how fresh the data is.
func (m Model) status() string {
	if !m.active {
		return "signed out"
	}
	snap := m.dash.Snapshot()
	name := "signed in"
	if snap.User != nil {
		name = snap.User.FullName()
	}
	if snap.Stale {
		name += " · offline"
	}
	return name
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewLogin, ViewRegister:
		return "enter submit | ctrl+n switch form | ctrl+s settings | ctrl+c quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewForm, ViewSettings:
		return "enter next | esc cancel"
	case ViewDashboard:
		return "tab panel | x toggle | +/- progress | n new | space timer | r refresh | ? help"
	case ViewTasks:
		return "h/l column | H/L move | J/K reorder | enter open | n new | r refresh | ? help"
	case ViewDetail:
		return "j/k scroll | d delete | esc back"
	case ViewHabits, ViewGoals, ViewEvents:
		return "n new | d delete | / filter | r refresh | ? help"
	case ViewDiary:
		return "j/k entry | n new | d delete | ? help"
	case ViewNotifications:
		return "enter mark read | A mark all | d remove | C clear | r refresh"
	case ViewUsers:
		return "f filter | x block/activate | a admin | r refresh"
	default:
		return "q quit | ? help | : command"
	}
}
