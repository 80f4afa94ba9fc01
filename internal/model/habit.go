package model

// Habit is a recurring activity tracked on specific weekdays.
type Habit struct {
	ID            int64    `json:"id,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	ActiveDays    []string `json:"activeDays"`
	ReminderTimes []string `json:"reminderTimes"`
	Active        bool     `json:"active"`
	Icon          string   `json:"icon,omitempty"`
}

// DashboardHabit decorates a habit with client-local progress for today.
// Neither field is fetched from the server.
type DashboardHabit struct {
	Habit
	CompletedToday bool `json:"completedToday"`
	CurrentStreak  int  `json:"currentStreak"`
}

// Decorate wraps habits with a neutral completion baseline.
func Decorate(habits []Habit) []DashboardHabit {
	out := make([]DashboardHabit, len(habits))
	for i, h := range habits {
		out[i] = DashboardHabit{Habit: h}
	}
	return out
}

// HabitLogRequest records a completion (or un-completion) of a habit.
type HabitLogRequest struct {
	HabitID        int64  `json:"habitId"`
	CompletionTime string `json:"completionTime"`
	Completed      bool   `json:"completed"`
}
