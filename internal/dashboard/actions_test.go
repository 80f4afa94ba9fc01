package dashboard_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/dayboard/internal/dashboard"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/tests/testutil"
)

func habitByID(t *testing.T, agg *dashboard.Aggregator, id int64) model.DashboardHabit {
	t.Helper()
	for _, h := range agg.Habits() {
		if h.ID == id {
			return h
		}
	}
	t.Fatalf("habit %d not found", id)
	return model.DashboardHabit{}
}

func TestToggleHabit(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(seed)
	agg, svc := newAggregator(t, b)
	ctx := context.Background()
	require.NoError(t, agg.Load(ctx))
	actions := dashboard.NewActions(agg, svc, nil)

	require.NoError(t, actions.ToggleHabit(ctx, 10))
	h := habitByID(t, agg, 10)
	assert.True(t, h.CompletedToday)
	assert.Equal(t, 1, h.CurrentStreak)

	require.NoError(t, actions.ToggleHabit(ctx, 10))
	h = habitByID(t, agg, 10)
	assert.False(t, h.CompletedToday)
	assert.Equal(t, 0, h.CurrentStreak)

	// Un-completing at zero keeps the streak at zero.
	agg.Patch(dashboard.SetHabitCompleted(10, true))
	require.NoError(t, actions.ToggleHabit(ctx, 10))
	assert.Equal(t, 0, habitByID(t, agg, 10).CurrentStreak)

	logs := b.State().HabitLogs
	require.Len(t, logs, 3)
	assert.True(t, logs[0].Completed)
	assert.False(t, logs[1].Completed)
	assert.Equal(t, int64(10), logs[0].HabitID)
	assert.NotEmpty(t, logs[0].CompletionTime)
	assert.False(t, actions.HabitBusy(10))
}

func TestToggleHabitRollsBackOnFailure(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(seed)
	agg, svc := newAggregator(t, b)
	ctx := context.Background()
	require.NoError(t, agg.Load(ctx))
	actions := dashboard.NewActions(agg, svc, nil)

	b.Fail(http.MethodPost, "/habit-logs", http.StatusInternalServerError)
	err := actions.ToggleHabit(ctx, 11)
	require.Error(t, err)

	h := habitByID(t, agg, 11)
	assert.False(t, h.CompletedToday)
	assert.Zero(t, h.CurrentStreak)
}

func TestToggleUnknownHabit(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(seed)
	agg, svc := newAggregator(t, b)
	require.NoError(t, agg.Load(context.Background()))

	err := dashboard.NewActions(agg, svc, nil).ToggleHabit(context.Background(), 999)
	assert.ErrorIs(t, err, dashboard.ErrNotFound)
	assert.Zero(t, b.Hits(http.MethodPost, "/habit-logs"))
}

func TestSetTaskCompletedReloads(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(seed)
	agg, svc := newAggregator(t, b)
	ctx := context.Background()
	require.NoError(t, agg.Load(ctx))

	require.NoError(t, dashboard.NewActions(agg, svc, nil).SetTaskCompleted(ctx, 1, true))

	assert.Equal(t, 1, b.Hits(http.MethodPut, "/tasks/1"))
	assert.Equal(t, 2, b.Hits(http.MethodGet, "/summary/today"))
	require.Len(t, b.State().Tasks, 1)
	assert.Equal(t, model.TaskStatusCompleted, b.State().Tasks[0].Status)
}

func TestSetTaskCompletedFailure(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(seed)
	agg, svc := newAggregator(t, b)
	ctx := context.Background()
	require.NoError(t, agg.Load(ctx))
	before := agg.Snapshot()

	b.Fail(http.MethodPut, "/tasks/1", http.StatusBadRequest)
	err := dashboard.NewActions(agg, svc, nil).SetTaskCompleted(ctx, 1, true)
	require.Error(t, err)
	assert.Equal(t, before, agg.Snapshot())
	assert.Equal(t, 1, b.Hits(http.MethodGet, "/summary/today"))
}

func TestSetGoalProgress(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(seed)
	agg, svc := newAggregator(t, b)
	ctx := context.Background()
	require.NoError(t, agg.Load(ctx))
	actions := dashboard.NewActions(agg, svc, nil)

	require.NoError(t, actions.SetGoalProgress(ctx, 20, 30))
	assert.Zero(t, b.Hits(http.MethodPut, "/goals/20"))

	require.NoError(t, actions.SetGoalProgress(ctx, 20, 150))
	assert.Equal(t, 1, b.Hits(http.MethodPut, "/goals/20"))
	assert.Equal(t, 100, agg.Goals()[0].Progress)
	assert.Equal(t, 1, model.CountGoals(agg.Goals()).Completed)
}

func TestCreateAndDeleteDiaryEntry(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(seed)
	agg, svc := newAggregator(t, b)
	ctx := context.Background()
	require.NoError(t, agg.Load(ctx))
	actions := dashboard.NewActions(agg, svc, nil)

	_, err := actions.CreateDiaryEntry(ctx, model.DiaryEntryRequest{})
	require.Error(t, err)
	assert.Zero(t, b.Hits(http.MethodPost, "/diary"))

	e, err := actions.CreateDiaryEntry(ctx, model.DiaryEntryRequest{Title: "Tuesday", Content: "rain"})
	require.NoError(t, err)
	diary := agg.Diary()
	require.Len(t, diary, 2)
	assert.Equal(t, e.ID, diary[0].ID)
	assert.NotEmpty(t, diary[0].EntryDate)

	require.NoError(t, actions.DeleteDiaryEntry(ctx, e.ID))
	diary = agg.Diary()
	require.Len(t, diary, 1)
	assert.Equal(t, int64(40), diary[0].ID)
}

func TestCreatePrependsItems(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(seed)
	agg, svc := newAggregator(t, b)
	ctx := context.Background()
	require.NoError(t, agg.Load(ctx))
	actions := dashboard.NewActions(agg, svc, nil)

	task, err := actions.CreateTask(ctx, model.TaskRequest{
		Title:    "Call mom",
		Type:     model.TaskTypePersonal,
		Status:   model.TaskStatusPending,
		Priority: model.TaskPriorityMedium,
	})
	require.NoError(t, err)
	assert.Equal(t, task.ID, agg.Tasks()[0].ID)

	progress := 0
	goal, err := actions.CreateGoal(ctx, model.GoalRequest{Title: "Learn Go", Progress: &progress})
	require.NoError(t, err)
	assert.Equal(t, goal.ID, agg.Goals()[0].ID)

	habit, err := actions.CreateHabit(ctx, model.Habit{Name: "Walk", Active: true})
	require.NoError(t, err)
	first := agg.Habits()[0]
	assert.Equal(t, habit.ID, first.ID)
	assert.False(t, first.CompletedToday)

	_, err = actions.CreateTask(ctx, model.TaskRequest{Title: "  "})
	assert.Error(t, err)
}

func TestCreateEventAndDeletes(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(seed)
	b.Seed(func(d *testutil.Data) {
		d.Habits = append([]model.Habit(nil), d.Summary.ActiveHabits...)
		d.Events = append([]model.Event(nil), d.Summary.UpcomingEvents...)
	})
	agg, svc := newAggregator(t, b)
	ctx := context.Background()
	require.NoError(t, agg.Load(ctx))
	actions := dashboard.NewActions(agg, svc, nil)

	ev, err := actions.CreateEvent(ctx, model.EventRequest{
		Title:         "Standup",
		StartDateTime: "2024-03-04T09:00:00",
		EndDateTime:   "2024-03-04T09:15:00",
	})
	require.NoError(t, err)
	require.Len(t, agg.Events(), 2)
	assert.Equal(t, ev.ID, agg.Events()[0].ID)

	require.NoError(t, actions.DeleteEvent(ctx, 30))
	require.Len(t, agg.Events(), 1)
	assert.Equal(t, ev.ID, agg.Events()[0].ID)

	require.NoError(t, actions.DeleteTask(ctx, 1))
	assert.Empty(t, agg.Tasks())
	assert.Empty(t, b.State().Tasks)

	require.NoError(t, actions.DeleteGoal(ctx, 20))
	assert.Empty(t, agg.Goals())

	require.NoError(t, actions.DeleteHabit(ctx, 10))
	require.Len(t, agg.Habits(), 1)
	assert.Equal(t, int64(11), agg.Habits()[0].ID)

	b.Fail(http.MethodDelete, "/habits/11", http.StatusInternalServerError)
	assert.Error(t, actions.DeleteHabit(ctx, 11))
	assert.Len(t, agg.Habits(), 1)

	_, err = actions.CreateEvent(ctx, model.EventRequest{})
	assert.Error(t, err)
}

func TestSaveGoalProgressOutsideDashboard(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Seed(seed)
	b.Seed(func(d *testutil.Data) {
		d.Goals = append(d.Goals, model.Goal{ID: 21, Title: "Read 12 books", Progress: 50})
	})
	agg, svc := newAggregator(t, b)
	ctx := context.Background()
	require.NoError(t, agg.Load(ctx))
	actions := dashboard.NewActions(agg, svc, nil)

	require.NoError(t, actions.SaveGoalProgress(ctx, model.Goal{ID: 21, Title: "Read 12 books", Progress: 50}, 60))
	assert.Equal(t, 1, b.Hits(http.MethodPut, "/goals/21"))
	assert.Equal(t, 60, b.State().Goals[1].Progress)
	require.Len(t, agg.Goals(), 1)
	assert.Equal(t, 30, agg.Goals()[0].Progress)
}
