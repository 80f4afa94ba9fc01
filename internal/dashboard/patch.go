package dashboard

import "github.com/nhle/dayboard/internal/model"

// PatchFunc mutates a private copy of the snapshot inside Aggregator.Patch.
type PatchFunc = func(s *model.DashboardSnapshot)

// PrependTask puts t at the top of the task list.
func PrependTask(t model.Task) PatchFunc {
	return func(s *model.DashboardSnapshot) {
		s.Tasks = append([]model.Task{t}, s.Tasks...)
	}
}

// ReplaceTask swaps the task with t.ID for t.
func ReplaceTask(t model.Task) PatchFunc {
	return func(s *model.DashboardSnapshot) {
		for i := range s.Tasks {
			if s.Tasks[i].ID == t.ID {
				s.Tasks[i] = t
				return
			}
		}
	}
}

// RemoveTask drops the task with id.
func RemoveTask(id int64) PatchFunc {
	return func(s *model.DashboardSnapshot) {
		s.Tasks = without(s.Tasks, func(t model.Task) bool { return t.ID == id })
	}
}

// PrependGoal puts g at the top of the goal list.
func PrependGoal(g model.Goal) PatchFunc {
	return func(s *model.DashboardSnapshot) {
		s.Goals = append([]model.Goal{g}, s.Goals...)
	}
}

// SetGoalProgress updates progress and updatedAt of the goal with id.
func SetGoalProgress(id int64, progress int, updatedAt string) PatchFunc {
	return func(s *model.DashboardSnapshot) {
		for i := range s.Goals {
			if s.Goals[i].ID == id {
				s.Goals[i].Progress = progress
				s.Goals[i].UpdatedAt = updatedAt
				return
			}
		}
	}
}

// RemoveGoal drops the goal with id.
func RemoveGoal(id int64) PatchFunc {
	return func(s *model.DashboardSnapshot) {
		s.Goals = without(s.Goals, func(g model.Goal) bool { return g.ID == id })
	}
}

// PrependHabit puts h at the top of the habit list with a neutral
// completion baseline.
func PrependHabit(h model.Habit) PatchFunc {
	return func(s *model.DashboardSnapshot) {
		s.Habits = append([]model.DashboardHabit{{Habit: h}}, s.Habits...)
	}
}

// SetHabitCompleted sets the completedToday flag of the habit with id.
func SetHabitCompleted(id int64, completed bool) PatchFunc {
	return func(s *model.DashboardSnapshot) {
		for i := range s.Habits {
			if s.Habits[i].ID == id {
				s.Habits[i].CompletedToday = completed
				return
			}
		}
	}
}

// RemoveHabit drops the habit with id.
func RemoveHabit(id int64) PatchFunc {
	return func(s *model.DashboardSnapshot) {
		s.Habits = without(s.Habits, func(h model.DashboardHabit) bool { return h.ID == id })
	}
}

// BumpHabitStreak moves the streak of the habit with id one step up when
// completed, else one step down, never below zero.
func BumpHabitStreak(id int64, completed bool) PatchFunc {
	return func(s *model.DashboardSnapshot) {
		for i := range s.Habits {
			if s.Habits[i].ID != id {
				continue
			}
			if completed {
				s.Habits[i].CurrentStreak++
			} else if s.Habits[i].CurrentStreak > 0 {
				s.Habits[i].CurrentStreak--
			}
			return
		}
	}
}

// PrependEvent puts e at the top of the event list.
func PrependEvent(e model.Event) PatchFunc {
	return func(s *model.DashboardSnapshot) {
		s.Events = append([]model.Event{e}, s.Events...)
	}
}

// RemoveEvent drops the event with id.
func RemoveEvent(id int64) PatchFunc {
	return func(s *model.DashboardSnapshot) {
		s.Events = without(s.Events, func(e model.Event) bool { return e.ID == id })
	}
}

// PrependDiary puts e at the top of the diary list.
func PrependDiary(e model.DiaryEntry) PatchFunc {
	return func(s *model.DashboardSnapshot) {
		s.Diary = append([]model.DiaryEntry{e}, s.Diary...)
	}
}

// RemoveDiary drops the diary entry with id.
func RemoveDiary(id int64) PatchFunc {
	return func(s *model.DashboardSnapshot) {
		s.Diary = without(s.Diary, func(e model.DiaryEntry) bool { return e.ID == id })
	}
}

func without[T any](in []T, match func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if !match(v) {
			out = append(out, v)
		}
	}
	return out
}
