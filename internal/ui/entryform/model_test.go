package entryform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/dayboard/internal/model"
)

func fixedForm() Model {
	m := New(80, 24)
	m.now = func() time.Time { return time.Date(2024, time.March, 6, 9, 0, 0, 0, time.Local) }
	return m
}

func TestStartDefaults(t *testing.T) {
	m := fixedForm()

	m.Start(KindTask)
	assert.Equal(t, "2024-03-06", m.fb.date)
	assert.Equal(t, model.TaskPriorityMedium, m.fb.priority)

	m.fb.title = "leftover"
	m.Start(KindHabit)
	assert.Empty(t, m.fb.title)
	assert.Len(t, m.fb.activeDays, 7)

	m.Start(KindGoal)
	assert.Empty(t, m.fb.date)
}

func TestSubmitTask(t *testing.T) {
	m := fixedForm()
	m.Start(KindTask)
	m.fb.title = "  Write report "
	m.fb.priority = model.TaskPriorityUrgent

	out := m.submit()
	require.Equal(t, KindTask, out.Kind)
	assert.Equal(t, "Write report", out.Task.Title)
	assert.Equal(t, model.TaskStatusPending, out.Task.Status)
	assert.Equal(t, model.TaskPriorityUrgent, out.Task.Priority)
	assert.Equal(t, model.TaskTypeWork, out.Task.Type)
	assert.Equal(t, "2024-03-06", out.Task.DueDate)
}

func TestSubmitGoalStartsAtZero(t *testing.T) {
	m := fixedForm()
	m.Start(KindGoal)
	m.fb.title = "Run 10k"
	m.fb.date = "2024-12-31"

	out := m.submit()
	require.NotNil(t, out.Goal.Progress)
	assert.Zero(t, *out.Goal.Progress)
	assert.Equal(t, "2024-12-31", out.Goal.TargetDate)
}

func TestSubmitEvent(t *testing.T) {
	m := fixedForm()
	m.Start(KindEvent)
	m.fb.title = "Dentist"
	m.fb.start = "2024-03-07 10:00"
	m.fb.end = "2024-03-07 10:30"

	out := m.submit()
	assert.Equal(t, "2024-03-07T10:00:00", out.Event.StartDateTime)
	assert.Equal(t, "2024-03-07T10:30:00", out.Event.EndDateTime)
}

func TestSubmitHabitIsActive(t *testing.T) {
	m := fixedForm()
	m.Start(KindHabit)
	m.fb.title = "Stretch"
	m.fb.activeDays = []string{"MONDAY"}

	out := m.submit()
	assert.True(t, out.Habit.Active)
	assert.Equal(t, []string{"MONDAY"}, out.Habit.ActiveDays)
	assert.NotNil(t, out.Habit.ReminderTimes)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateOptionalDate(""))
	assert.Error(t, validateOptionalDate("06/03/2024"))
	assert.Error(t, validateDate(" "))
	assert.NoError(t, validateDateTime("2024-03-07 10:00"))
	assert.Error(t, validateDateTime("2024-03-07"))
	assert.Error(t, validateEventRange("2024-03-07 10:00", "2024-03-07 09:00"))
	assert.NoError(t, validateEventRange("2024-03-07 10:00", "2024-03-07 11:00"))
	assert.EqualError(t, validateRequired("Title")(""), "title is required")
}
