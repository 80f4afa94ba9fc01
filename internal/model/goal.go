package model

import (
	"sort"
)

// Goal is a long-running objective with a completion percentage.
type Goal struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Progress    int    `json:"progress"`
	TargetDate  string `json:"targetDate"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// GoalRequest is the body for creating or updating a goal.
type GoalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Progress    *int   `json:"progress,omitempty"`
	TargetDate  string `json:"targetDate"`
}

// Completed reports whether the goal has reached 100%.
func (g Goal) Completed() bool { return g.Progress >= 100 }

// Request converts the goal into an update body carrying progress.
func (g Goal) Request(progress int) GoalRequest {
	return GoalRequest{
		Title:       g.Title,
		Description: g.Description,
		Progress:    &progress,
		TargetDate:  g.TargetDate,
	}
}

// lastTouched is the sort key for recently changed goals.
func (g Goal) lastTouched() string {
	if g.UpdatedAt != "" {
		return g.UpdatedAt
	}
	return g.CreatedAt
}

// SortGoalsRecent returns a copy of goals ordered by most recently updated
// (falling back to creation time) first.
func SortGoalsRecent(goals []Goal) []Goal {
	out := make([]Goal, len(goals))
	copy(out, goals)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].lastTouched() > out[j].lastTouched()
	})
	return out
}

// GoalStats summarises a goal list.
type GoalStats struct {
	Total     int
	Completed int
}

// CountGoals tallies total and completed goals.
func CountGoals(goals []Goal) GoalStats {
	stats := GoalStats{Total: len(goals)}
	for _, g := range goals {
		if g.Completed() {
			stats.Completed++
		}
	}
	return stats
}
