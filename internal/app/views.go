package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/dayboard/internal/api"
	"github.com/nhle/dayboard/internal/guard"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/ui"
	"github.com/nhle/dayboard/internal/ui/auth"
	"github.com/nhle/dayboard/internal/ui/collection"
	"github.com/nhle/dayboard/internal/ui/entryform"
	"github.com/nhle/dayboard/internal/ui/settings"
)

// probeTimeout bounds the settings connection check.
const probeTimeout = 5 * time.Second

// navigate opens route after the guards have had their say. A protected
// route that bounces to the login page is remembered and opened after
// sign-in.
func (m *Model) navigate(route string) tea.Cmd {
	resolved, err := m.deps.Router.Resolve(route)
	if err != nil {
		m.deps.Log.Error("resolving route", zap.String("route", route), zap.Error(err))
		return m.showToast(err.Error(), true)
	}

	var cmds []tea.Cmd
	switch {
	case resolved == guard.RouteLogin && m.deps.Router.Known(route) &&
		route != guard.RouteLogin && route != guard.RouteRegister:
		m.pending = route
	case route == guard.RouteUsers && resolved != guard.RouteUsers:
		cmds = append(cmds, m.showToast("The user list is for administrators", true))
	}

	view, ok := routeViews[resolved]
	if !ok {
		view = ViewDashboard
	}
	m.deps.Log.Debug("navigate", zap.String("route", route), zap.String("resolved", resolved))
	m.route = resolved
	m.currentView = view
	cmds = append(cmds, m.enter(view))
	return tea.Batch(cmds...)
}

// enter returns the command that fills view when it is opened.
func (m *Model) enter(view ViewState) tea.Cmd {
	switch view {
	case ViewLogin:
		return m.auth.Start(auth.ModeLogin)
	case ViewRegister:
		return m.auth.Start(auth.ModeRegister)
	case ViewTasks:
		return m.board.Load()
	case ViewHabits:
		return m.habits.Load()
	case ViewGoals:
		return m.goals.Load()
	case ViewEvents:
		return m.events.Load()
	case ViewUsers:
		return m.users.Load()
	case ViewNotifications:
		m.deps.Poller.Refresh()
	}
	return nil
}

// refresh reloads whatever the active view shows.
func (m *Model) refresh() tea.Cmd {
	switch m.currentView {
	case ViewDashboard, ViewDiary:
		return m.dash.Load()
	case ViewLogin, ViewRegister:
		return nil
	}
	return m.enter(m.currentView)
}

// submit sends a completed entry form and reloads the view it came from.
func (m *Model) submit(msg entryform.SubmitMsg) tea.Cmd {
	a := m.deps.Actions
	var run tea.Cmd
	switch msg.Kind {
	case entryform.KindTask:
		req := msg.Task
		run = ui.Run(fmt.Sprintf("Task %q created", req.Title), func(ctx context.Context) error {
			_, err := a.CreateTask(ctx, req)
			return err
		})
	case entryform.KindGoal:
		req := msg.Goal
		run = ui.Run(fmt.Sprintf("Goal %q created", req.Title), func(ctx context.Context) error {
			_, err := a.CreateGoal(ctx, req)
			return err
		})
	case entryform.KindHabit:
		h := msg.Habit
		run = ui.Run(fmt.Sprintf("Habit %q created", h.Name), func(ctx context.Context) error {
			_, err := a.CreateHabit(ctx, h)
			return err
		})
	case entryform.KindEvent:
		req := msg.Event
		run = ui.Run(fmt.Sprintf("Event %q created", req.Title), func(ctx context.Context) error {
			_, err := a.CreateEvent(ctx, req)
			return err
		})
	case entryform.KindDiary:
		req := msg.Diary
		run = ui.Run("Diary entry saved", func(ctx context.Context) error {
			_, err := a.CreateDiaryEntry(ctx, req)
			return err
		})
	default:
		return nil
	}
	return tea.Sequence(run, m.enter(m.currentView))
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	cmd = strings.ToLower(strings.TrimSpace(cmd))
	switch cmd {
	case "refresh":
		return m.refresh()
	case "logout":
		if !m.active {
			return nil
		}
		return m.logout("Signed out")
	case "quit", "q":
		return tea.Quit
	case "users":
		return m.navigate(guard.RouteUsers)
	case "settings":
		return m.openSettings()
	case "dashboard", "tasks", "habits", "goals", "events", "diary", "notifications":
		return m.navigate("/" + cmd)
	case "":
		return nil
	default:
		return m.showToast(fmt.Sprintf("Unknown command %q", cmd), true)
	}
}

// openSettings shows the settings form over the current view.
func (m *Model) openSettings() tea.Cmd {
	if m.currentView != ViewSettings {
		m.previousView = m.currentView
	}
	m.currentView = ViewSettings
	return m.settings.Start()
}

// probeBackend checks a candidate base URL with a throwaway client.
func probeBackend(log *zap.Logger) settings.Prober {
	return func(ctx context.Context, baseURL string) error {
		return api.NewClient(api.Options{BaseURL: baseURL, Timeout: probeTimeout, Logger: log}).Ping(ctx)
	}
}

func habitsCollection(deps Deps) collection.Config {
	habits, actions := deps.Services.Habits, deps.Actions
	return collection.Config{
		Name:  "Habits",
		Empty: "No habits yet. Press n to start one.",
		Form:  entryform.KindHabit,
		Load: func(ctx context.Context) ([]model.ListItem, error) {
			list, err := habits.List(ctx)
			if err != nil {
				return nil, fmt.Errorf("loading habits: %w", err)
			}
			return listItems(list), nil
		},
		Delete: actions.DeleteHabit,
	}
}

func goalsCollection(deps Deps) collection.Config {
	goals, actions := deps.Services.Goals, deps.Actions
	return collection.Config{
		Name:  "Goals",
		Empty: "No goals yet. Press n to set one.",
		Form:  entryform.KindGoal,
		Load: func(ctx context.Context) ([]model.ListItem, error) {
			list, err := goals.List(ctx)
			if err != nil {
				return nil, fmt.Errorf("loading goals: %w", err)
			}
			return listItems(model.SortGoalsRecent(list)), nil
		},
		Delete: actions.DeleteGoal,
		Adjust: func(ctx context.Context, item model.ListItem, delta int) error {
			g, ok := item.(model.Goal)
			if !ok {
				return nil
			}
			return actions.SaveGoalProgress(ctx, g, g.Progress+delta)
		},
	}
}

func eventsCollection(deps Deps) collection.Config {
	events, actions := deps.Services.Events, deps.Actions
	return collection.Config{
		Name:  "Events",
		Empty: "Nothing scheduled. Press n to add an event.",
		Form:  entryform.KindEvent,
		Load: func(ctx context.Context) ([]model.ListItem, error) {
			list, err := events.List(ctx)
			if err != nil {
				return nil, fmt.Errorf("loading events: %w", err)
			}
			slices.SortStableFunc(list, func(a, b model.Event) int {
				return strings.Compare(a.StartDateTime, b.StartDateTime)
			})
			return listItems(list), nil
		},
		Delete: actions.DeleteEvent,
	}
}

func listItems[T model.ListItem](in []T) []model.ListItem {
	out := make([]model.ListItem, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
