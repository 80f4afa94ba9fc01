package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/dayboard/internal/guard"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/session"
	"github.com/nhle/dayboard/internal/ui"
	"github.com/nhle/dayboard/internal/ui/auth"
)

// sessionMsg carries a change of the signed-in flag.
type sessionMsg struct {
	loggedIn bool
}

// authDoneMsg reports the end of a login or registration request.
type authDoneMsg struct {
	mode auth.Mode
	err  error
}

func waitForSession(ch <-chan bool) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return sessionMsg{loggedIn: v}
	}
}

// onSession starts or stops the signed-in services when the session flips.
func (m *Model) onSession(loggedIn bool) tea.Cmd {
	switch {
	case loggedIn && !m.active:
		return m.signIn()
	case !loggedIn && m.active:
		ctx, cancel := ui.RequestContext()
		defer cancel()
		m.deps.Dashboard.Forget(ctx)
		return tea.Batch(m.signOut(), m.showToast("Your session has expired, please sign in again", true))
	case !loggedIn && m.currentView != ViewLogin && m.currentView != ViewRegister:
		return m.navigate(guard.RouteLogin)
	}
	return nil
}

// signIn restores the cached dashboard, refreshes it, starts notification
// polling and opens the page the user was sent away from, if any.
func (m *Model) signIn() tea.Cmd {
	m.active = true
	m.deps.Log.Info("signed in")

	agg := m.deps.Dashboard
	restore := func() tea.Msg {
		ctx, cancel := ui.RequestContext()
		defer cancel()
		agg.Restore(ctx)
		return nil
	}
	cmds := []tea.Cmd{tea.Sequence(restore, m.dash.Load())}

	// The poller's result channel outlives Start/Stop; keep one reader on it.
	if cmd := m.deps.Poller.Start(); cmd != nil && !m.pollWaiting {
		m.pollWaiting = true
		cmds = append(cmds, cmd)
	}

	target := m.pending
	m.pending = ""
	if target == "" {
		target = guard.RouteDashboard
	}
	cmds = append(cmds, m.navigate(target))
	return tea.Batch(cmds...)
}

// signOut stops the signed-in services and shows the login page.
func (m *Model) signOut() tea.Cmd {
	m.active = false
	m.deps.Poller.Stop()
	m.deps.Poller.Clear()
	m.unread = 0
	m.deps.Log.Info("signed out")
	return m.navigate(guard.RouteLogin)
}

// logout ends the session on request. The cached snapshot is dropped
// before the token so the cache key is still known.
func (m *Model) logout(reason string) tea.Cmd {
	ctx, cancel := ui.RequestContext()
	defer cancel()
	m.deps.Dashboard.Forget(ctx)
	m.deps.Session.Logout()
	return tea.Batch(m.signOut(), m.showToast(reason, false))
}

func (m Model) login(creds model.Credentials) tea.Cmd {
	sess := m.deps.Session
	return func() tea.Msg {
		ctx, cancel := ui.RequestContext()
		defer cancel()
		_, err := sess.Login(ctx, creds.Email, creds.Password)
		return authDoneMsg{mode: auth.ModeLogin, err: err}
	}
}

func (m Model) register(req model.RegisterRequest) tea.Cmd {
	sess := m.deps.Session
	return func() tea.Msg {
		ctx, cancel := ui.RequestContext()
		defer cancel()
		_, err := sess.Register(ctx, req)
		return authDoneMsg{mode: auth.ModeRegister, err: err}
	}
}

// onAuthDone reports a failed login or registration and reopens the form.
// Success needs no handling here: the session publishes the change.
func (m *Model) onAuthDone(msg authDoneMsg) tea.Cmd {
	if msg.err == nil {
		return nil
	}
	m.deps.Log.Info("authentication failed", zap.Error(msg.err))
	return tea.Batch(m.auth.Start(msg.mode), m.showToast(authErrorText(msg.mode, msg.err), true))
}

func authErrorText(mode auth.Mode, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The server did not respond, please try again"
	case mode == auth.ModeLogin && errors.Is(err, session.ErrInvalidCredentials):
		return "Invalid email or password"
	case mode == auth.ModeRegister:
		return "Registration failed: " + err.Error()
	default:
		return "Login failed: " + err.Error()
	}
}
