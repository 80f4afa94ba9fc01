package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumLabel(t *testing.T) {
	assert.Equal(t, "In Progress", EnumLabel("IN_PROGRESS"))
	assert.Equal(t, "Pending", EnumLabel("PENDING"))
	assert.Equal(t, "", EnumLabel(""))
}

func TestParseTimestamp(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)

	got, ok := ParseTimestamp("2024-03-05T09:30:00", loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 30, 0, 0, loc), got)

	got, ok = ParseTimestamp(" 2024-03-05 ", loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, loc), got)

	got, ok = ParseTimestamp("2024-03-05T09:30:00Z", loc)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)))

	_, ok = ParseTimestamp("", loc)
	assert.False(t, ok)
	_, ok = ParseTimestamp("yesterday", loc)
	assert.False(t, ok)
}

func TestRecentDiary(t *testing.T) {
	entries := []DiaryEntry{
		{ID: 1, Title: "old", EntryDate: "2024-01-01"},
		{ID: 2, EntryDate: "2024-03-01"},
		{ID: 3, Content: "newest", EntryDate: "2024-02-10"},
		{ID: 4, Title: "middle", EntryDate: "2024-01-15"},
	}

	got := RecentDiary(entries, 2)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(4), got[1].ID)

	assert.Len(t, RecentDiary(entries, -1), 3)
}

func TestSortGoalsRecent(t *testing.T) {
	goals := []Goal{
		{ID: 1, CreatedAt: "2024-01-01T00:00:00"},
		{ID: 2, CreatedAt: "2024-01-01T00:00:00", UpdatedAt: "2024-02-01T00:00:00"},
		{ID: 3, CreatedAt: "2024-01-20T00:00:00"},
	}

	got := SortGoalsRecent(goals)
	assert.Equal(t, []int64{2, 3, 1}, []int64{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, int64(1), goals[0].ID, "input is left untouched")

	stats := CountGoals([]Goal{{Progress: 100}, {Progress: 40}})
	assert.Equal(t, GoalStats{Total: 2, Completed: 1}, stats)
}

func TestCountTasks(t *testing.T) {
	stats := CountTasks([]Task{
		{Status: TaskStatusCompleted},
		{Status: TaskStatusInProgress},
		{Status: TaskStatusPending},
		{Status: TaskStatusPending},
		{Status: TaskStatusCancelled},
	})
	assert.Equal(t, TaskStats{Total: 5, Completed: 1, InProgress: 1, Pending: 2, Cancelled: 1}, stats)
}

func TestSnapshotClone(t *testing.T) {
	order := 3
	snap := DashboardSnapshot{
		Tasks:  []Task{{ID: 1, KanbanOrder: &order}},
		Habits: Decorate([]Habit{{ID: 7, ActiveDays: []string{"MONDAY"}}}),
		User:   &User{FirstName: "Ada", Roles: []string{"USER"}},
	}

	c := snap.Clone()
	*c.Tasks[0].KanbanOrder = 9
	c.Habits[0].ActiveDays[0] = "FRIDAY"
	c.Habits[0].CompletedToday = true
	c.User.Roles[0] = "ADMIN"

	assert.Equal(t, 3, *snap.Tasks[0].KanbanOrder)
	assert.Equal(t, "MONDAY", snap.Habits[0].ActiveDays[0])
	assert.False(t, snap.Habits[0].CompletedToday)
	assert.Equal(t, "USER", snap.User.Roles[0])
	assert.Nil(t, DashboardSnapshot{}.Clone().Tasks)
}

func TestUser(t *testing.T) {
	u := User{FirstName: "Ada", LastName: " ", Roles: []string{"USER", "ADMIN"}}
	assert.Equal(t, "Ada", u.FullName())
	assert.True(t, u.HasRole("ADMIN"))
	assert.False(t, u.HasRole("OWNER"))

	req := u.Request()
	req.Roles[0] = "X"
	assert.Equal(t, "USER", u.Roles[0])
}

func TestEnumsDecodeEmptyAsUnset(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"type":"","status":"","priority":""}`), &task))
	assert.Empty(t, task.Type)
	assert.Empty(t, task.Status)
	assert.Empty(t, task.Priority)

	var user User
	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"status":""}`), &user))
	assert.Empty(t, user.Status)

	var n Notification
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"type":""}`), &n))
	assert.Empty(t, n.Type)

	var fs FocusSession
	require.NoError(t, json.Unmarshal([]byte(`{"timerMode":""}`), &fs))
	assert.Empty(t, fs.TimerMode)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"ARCHIVED"}`), &task))
	assert.Error(t, json.Unmarshal([]byte(`{"status":"GONE"}`), &user))
}
