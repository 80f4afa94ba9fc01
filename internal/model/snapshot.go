package model

import "time"

// DashboardSnapshot is everything the dashboard shows, published as a unit.
type DashboardSnapshot struct {
	Tasks  []Task           `json:"tasks"`
	Goals  []Goal           `json:"goals"`
	Habits []DashboardHabit `json:"habits"`
	Events []Event          `json:"events"`
	Diary  []DiaryEntry     `json:"diary"`
	User   *User            `json:"user,omitempty"`

	FetchedAt time.Time `json:"fetchedAt"`

	// Stale marks a snapshot restored from the local cache rather than
	// fetched in this run.
	Stale bool `json:"-"`
}

// Clone returns a deep copy of s.
func (s DashboardSnapshot) Clone() DashboardSnapshot {
	out := s
	out.Tasks = cloneSlice(s.Tasks)
	for i := range out.Tasks {
		if o := out.Tasks[i].KanbanOrder; o != nil {
			v := *o
			out.Tasks[i].KanbanOrder = &v
		}
	}
	out.Goals = cloneSlice(s.Goals)
	out.Habits = cloneSlice(s.Habits)
	for i := range out.Habits {
		out.Habits[i].ActiveDays = cloneSlice(out.Habits[i].ActiveDays)
		out.Habits[i].ReminderTimes = cloneSlice(out.Habits[i].ReminderTimes)
	}
	out.Events = cloneSlice(s.Events)
	out.Diary = cloneSlice(s.Diary)
	if s.User != nil {
		u := *s.User
		u.Roles = cloneSlice(u.Roles)
		out.User = &u
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
