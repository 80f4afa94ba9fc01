package model

// ListItem is the common interface for rows in the collection views.
// Goal, Habit, Event and DiaryEntry implement it.
type ListItem interface {
	GetID() int64
	GetTitle() string
	GetDescription() string
	IsCompleted() bool
}

func (g Goal) GetID() int64           { return g.ID }
func (g Goal) GetTitle() string       { return g.Title }
func (g Goal) GetDescription() string { return g.Description }
func (g Goal) IsCompleted() bool      { return g.Completed() }

func (h Habit) GetID() int64           { return h.ID }
func (h Habit) GetTitle() string       { return h.Name }
func (h Habit) GetDescription() string { return h.Description }
func (h Habit) IsCompleted() bool      { return !h.Active }

func (e Event) GetID() int64           { return e.ID }
func (e Event) GetTitle() string       { return e.Title }
func (e Event) GetDescription() string { return e.Description }
func (e Event) IsCompleted() bool      { return false }

func (e DiaryEntry) GetID() int64           { return e.ID }
func (e DiaryEntry) GetTitle() string       { return e.Title }
func (e DiaryEntry) GetDescription() string { return e.Content }
func (e DiaryEntry) IsCompleted() bool      { return false }
