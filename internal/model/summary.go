package model

// DailySummary is today's server-side digest used by the dashboard.
type DailySummary struct {
	TodayTasks         []Task         `json:"todayTasks"`
	ActiveHabits       []Habit        `json:"activeHabits"`
	ActiveGoals        []Goal         `json:"activeGoals"`
	TodayFocusSessions []FocusSession `json:"todayFocusSessions"`
	UpcomingEvents     []Event        `json:"upcomingEvents"`
}
