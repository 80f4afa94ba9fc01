package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/dayboard/internal/api"
	"github.com/nhle/dayboard/internal/model"
)

var (
	// ErrNotFound is returned when an action targets an item that is not in
	// the published snapshot.
	ErrNotFound = errors.New("item not in dashboard")

	// ErrBusy is returned when an action on the same habit is already in
	// flight.
	ErrBusy = errors.New("update already in progress")
)

// Actions are the write operations behind dashboard widgets. Every state
// change goes through Aggregator.Patch or a reload.
type Actions struct {
	agg *Aggregator
	svc *api.Services
	log *zap.Logger
	now func() time.Time

	mu      sync.Mutex
	pending map[int64]bool
}

// NewActions creates the widget actions for agg backed by svc.
func NewActions(agg *Aggregator, svc *api.Services, log *zap.Logger) *Actions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Actions{
		agg:     agg,
		svc:     svc,
		log:     log.Named("actions"),
		now:     time.Now,
		pending: make(map[int64]bool),
	}
}

// HabitBusy reports whether a toggle for habit id is in flight.
func (a *Actions) HabitBusy(id int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending[id]
}

// ToggleHabit flips today's completion for habit id optimistically, logs it
// on the server, and on success moves the streak one step. On failure the
// flip is rolled back.
func (a *Actions) ToggleHabit(ctx context.Context, id int64) error {
	var current *model.DashboardHabit
	for _, h := range a.agg.Habits() {
		if h.ID == id {
			current = &h
			break
		}
	}
	if current == nil {
		return fmt.Errorf("habit %d: %w", id, ErrNotFound)
	}

	a.mu.Lock()
	if a.pending[id] {
		a.mu.Unlock()
		return ErrBusy
	}
	a.pending[id] = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		delete(a.pending, id)
		a.mu.Unlock()
	}()

	completed := !current.CompletedToday
	a.agg.Patch(SetHabitCompleted(id, completed))

	err := a.svc.Habits.Log(ctx, model.HabitLogRequest{
		HabitID:        id,
		CompletionTime: a.now().UTC().Format(time.RFC3339),
		Completed:      completed,
	})
	if err != nil {
		a.log.Error("logging habit", zap.Int64("habit_id", id), zap.Error(err))
		a.agg.Patch(SetHabitCompleted(id, !completed))
		return fmt.Errorf("logging habit %d: %w", id, err)
	}

	a.agg.Patch(BumpHabitStreak(id, completed))
	return nil
}

// SetTaskCompleted marks task id COMPLETED (or back to PENDING) and reloads
// the dashboard.
func (a *Actions) SetTaskCompleted(ctx context.Context, id int64, completed bool) error {
	var task *model.Task
	for _, t := range a.agg.Tasks() {
		if t.ID == id {
			task = &t
			break
		}
	}
	if task == nil {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}

	req := task.Request()
	req.Status = model.TaskStatusPending
	if completed {
		req.Status = model.TaskStatusCompleted
	}

	updated, err := a.svc.Tasks.Update(ctx, id, req)
	if err != nil {
		a.log.Error("updating task status", zap.Int64("task_id", id), zap.Error(err))
		return fmt.Errorf("updating task %d: %w", id, err)
	}

	a.agg.Patch(ReplaceTask(updated))
	return a.agg.Load(ctx)
}

// SetGoalProgress stores a new progress value for goal id. Unchanged values
// do not hit the server.
func (a *Actions) SetGoalProgress(ctx context.Context, id int64, progress int) error {
	progress = clampProgress(progress)

	var goal *model.Goal
	for _, g := range a.agg.Goals() {
		if g.ID == id {
			goal = &g
			break
		}
	}
	if goal == nil {
		return fmt.Errorf("goal %d: %w", id, ErrNotFound)
	}
	return a.SaveGoalProgress(ctx, *goal, progress)
}

// SaveGoalProgress stores progress for g, which need not be on the
// dashboard, and patches the dashboard copy when there is one.
func (a *Actions) SaveGoalProgress(ctx context.Context, g model.Goal, progress int) error {
	progress = clampProgress(progress)
	if g.Progress == progress {
		return nil
	}

	updated, err := a.svc.Goals.Update(ctx, g.ID, g.Request(progress))
	if err != nil {
		a.log.Error("updating goal progress", zap.Int64("goal_id", g.ID), zap.Error(err))
		return fmt.Errorf("updating goal %d: %w", g.ID, err)
	}

	a.agg.Patch(SetGoalProgress(g.ID, updated.Progress, updated.UpdatedAt))
	return nil
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// CreateTask creates a task and shows it first.
func (a *Actions) CreateTask(ctx context.Context, req model.TaskRequest) (model.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.Task{}, errors.New("task title is required")
	}
	t, err := a.svc.Tasks.Create(ctx, req)
	if err != nil {
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}
	a.agg.Patch(PrependTask(t))
	return t, nil
}

// CreateGoal creates a goal and shows it first.
func (a *Actions) CreateGoal(ctx context.Context, req model.GoalRequest) (model.Goal, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.Goal{}, errors.New("goal title is required")
	}
	g, err := a.svc.Goals.Create(ctx, req)
	if err != nil {
		return model.Goal{}, fmt.Errorf("creating goal: %w", err)
	}
	a.agg.Patch(PrependGoal(g))
	return g, nil
}

// CreateHabit creates a habit and shows it first.
func (a *Actions) CreateHabit(ctx context.Context, h model.Habit) (model.Habit, error) {
	if strings.TrimSpace(h.Name) == "" {
		return model.Habit{}, errors.New("habit name is required")
	}
	created, err := a.svc.Habits.Create(ctx, h)
	if err != nil {
		return model.Habit{}, fmt.Errorf("creating habit: %w", err)
	}
	a.agg.Patch(PrependHabit(created))
	return created, nil
}

// CreateDiaryEntry creates a diary entry and shows it first.
func (a *Actions) CreateDiaryEntry(ctx context.Context, req model.DiaryEntryRequest) (model.DiaryEntry, error) {
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Content) == "" {
		return model.DiaryEntry{}, errors.New("diary entry needs a title or content")
	}
	if req.EntryDate == "" {
		req.EntryDate = a.now().Format(model.DateLayout)
	}
	e, err := a.svc.Diary.Create(ctx, req)
	if err != nil {
		return model.DiaryEntry{}, fmt.Errorf("creating diary entry: %w", err)
	}
	a.agg.Patch(PrependDiary(e))
	return e, nil
}

// DeleteDiaryEntry deletes a diary entry and drops it from the dashboard.
func (a *Actions) DeleteDiaryEntry(ctx context.Context, id int64) error {
	if err := a.svc.Diary.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting diary entry %d: %w", id, err)
	}
	a.agg.Patch(RemoveDiary(id))
	return nil
}

// CreateEvent creates an event and shows it first.
func (a *Actions) CreateEvent(ctx context.Context, req model.EventRequest) (model.Event, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.Event{}, errors.New("event title is required")
	}
	e, err := a.svc.Events.Create(ctx, req)
	if err != nil {
		return model.Event{}, fmt.Errorf("creating event: %w", err)
	}
	a.agg.Patch(PrependEvent(e))
	return e, nil
}

// DeleteTask deletes a task and drops it from the dashboard.
func (a *Actions) DeleteTask(ctx context.Context, id int64) error {
	if err := a.svc.Tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	a.agg.Patch(RemoveTask(id))
	return nil
}

// DeleteGoal deletes a goal and drops it from the dashboard.
func (a *Actions) DeleteGoal(ctx context.Context, id int64) error {
	if err := a.svc.Goals.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting goal %d: %w", id, err)
	}
	a.agg.Patch(RemoveGoal(id))
	return nil
}

// DeleteHabit deletes a habit and drops it from the dashboard.
func (a *Actions) DeleteHabit(ctx context.Context, id int64) error {
	if err := a.svc.Habits.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting habit %d: %w", id, err)
	}
	a.agg.Patch(RemoveHabit(id))
	return nil
}

// DeleteEvent deletes an event and drops it from the dashboard.
func (a *Actions) DeleteEvent(ctx context.Context, id int64) error {
	if err := a.svc.Events.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting event %d: %w", id, err)
	}
	a.agg.Patch(RemoveEvent(id))
	return nil
}
