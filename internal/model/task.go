package model

import "fmt"

// TaskType classifies what a task is about.
type TaskType string

const (
	TaskTypeWork     TaskType = "WORK"
	TaskTypeStudy    TaskType = "STUDY"
	TaskTypePersonal TaskType = "PERSONAL"
	TaskTypeOther    TaskType = "OTHER"
)

// TaskTypes returns every declared task type in display order.
func TaskTypes() []TaskType {
	return []TaskType{TaskTypeWork, TaskTypeStudy, TaskTypePersonal, TaskTypeOther}
}

// Label returns the human-readable name of the task type.
func (t TaskType) Label() string {
	switch t {
	case TaskTypeWork:
		return "Work"
	case TaskTypeStudy:
		return "Study"
	case TaskTypePersonal:
		return "Personal"
	case TaskTypeOther:
		return "Other"
	}
	return ""
}

// Valid reports whether t is one of the declared task types.
func (t TaskType) Valid() bool { return t.Label() != "" }

// UnmarshalText rejects task types the client does not know about. An empty
// value decodes as unset.
func (t *TaskType) UnmarshalText(b []byte) error {
	v := TaskType(b)
	if v == "" {
		*t = ""
		return nil
	}
	if !v.Valid() {
		return fmt.Errorf("unknown task type %q", string(b))
	}
	*t = v
	return nil
}

// TaskStatus is the lifecycle state of a task. The kanban board has one
// column per status.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// TaskStatuses returns every declared status in kanban column order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{
		TaskStatusPending,
		TaskStatusInProgress,
		TaskStatusCompleted,
		TaskStatusCancelled,
	}
}

// Label returns the human-readable name of the status.
func (s TaskStatus) Label() string {
	switch s {
	case TaskStatusPending:
		return "Pending"
	case TaskStatusInProgress:
		return "In Progress"
	case TaskStatusCompleted:
		return "Completed"
	case TaskStatusCancelled:
		return "Cancelled"
	}
	return ""
}

// Icon returns the glyph shown next to a task with this status.
func (s TaskStatus) Icon() string {
	switch s {
	case TaskStatusPending:
		return "○"
	case TaskStatusInProgress:
		return "◐"
	case TaskStatusCompleted:
		return "●"
	case TaskStatusCancelled:
		return "✕"
	}
	return ""
}

// EmptyMessage is shown in a kanban column that has no tasks.
func (s TaskStatus) EmptyMessage() string {
	switch s {
	case TaskStatusPending:
		return "No pending tasks"
	case TaskStatusInProgress:
		return "No tasks in progress"
	case TaskStatusCompleted:
		return "No completed tasks"
	case TaskStatusCancelled:
		return "No cancelled tasks"
	}
	return ""
}

// Valid reports whether s is one of the declared statuses.
func (s TaskStatus) Valid() bool { return s.Label() != "" }

// UnmarshalText rejects statuses the client does not know about. An empty
// value decodes as unset.
func (s *TaskStatus) UnmarshalText(b []byte) error {
	v := TaskStatus(b)
	if v == "" {
		*s = ""
		return nil
	}
	if !v.Valid() {
		return fmt.Errorf("unknown task status %q", string(b))
	}
	*s = v
	return nil
}

// TaskPriority orders tasks by urgency.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
	TaskPriorityUrgent TaskPriority = "URGENT"
)

// TaskPriorities returns every declared priority from lowest to highest.
func TaskPriorities() []TaskPriority {
	return []TaskPriority{
		TaskPriorityLow,
		TaskPriorityMedium,
		TaskPriorityHigh,
		TaskPriorityUrgent,
	}
}

// Label returns the human-readable name of the priority.
func (p TaskPriority) Label() string {
	switch p {
	case TaskPriorityLow:
		return "Low"
	case TaskPriorityMedium:
		return "Medium"
	case TaskPriorityHigh:
		return "High"
	case TaskPriorityUrgent:
		return "Urgent"
	}
	return ""
}

// Icon returns the glyph shown next to a task with this priority.
func (p TaskPriority) Icon() string {
	switch p {
	case TaskPriorityLow:
		return "↓"
	case TaskPriorityMedium:
		return "="
	case TaskPriorityHigh:
		return "↑"
	case TaskPriorityUrgent:
		return "!"
	}
	return ""
}

// Valid reports whether p is one of the declared priorities.
func (p TaskPriority) Valid() bool { return p.Label() != "" }

// UnmarshalText rejects priorities the client does not know about. An empty
// value decodes as unset.
func (p *TaskPriority) UnmarshalText(b []byte) error {
	v := TaskPriority(b)
	if v == "" {
		*p = ""
		return nil
	}
	if !v.Valid() {
		return fmt.Errorf("unknown task priority %q", string(b))
	}
	*p = v
	return nil
}

// Task is a server-owned work item.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Type        TaskType     `json:"type"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	StartDate   string       `json:"startDate,omitempty"`
	DueDate     string       `json:"dueDate,omitempty"`
	KanbanOrder *int         `json:"kanbanOrder,omitempty"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

// TaskRequest is the body for creating or updating a task.
type TaskRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Type        TaskType     `json:"type"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	StartDate   string       `json:"startDate,omitempty"`
	DueDate     string       `json:"dueDate,omitempty"`
	KanbanOrder *int         `json:"kanbanOrder,omitempty"`
}

// Request converts the task back into an update body.
func (t Task) Request() TaskRequest {
	return TaskRequest{
		Title:       t.Title,
		Description: t.Description,
		Type:        t.Type,
		Status:      t.Status,
		Priority:    t.Priority,
		StartDate:   t.StartDate,
		DueDate:     t.DueDate,
		KanbanOrder: t.KanbanOrder,
	}
}

// TaskStats counts tasks per status.
type TaskStats struct {
	Total      int
	Completed  int
	InProgress int
	Pending    int
	Cancelled  int
}

// CountTasks tallies tasks by status.
func CountTasks(tasks []Task) TaskStats {
	stats := TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case TaskStatusCompleted:
			stats.Completed++
		case TaskStatusInProgress:
			stats.InProgress++
		case TaskStatusPending:
			stats.Pending++
		case TaskStatusCancelled:
			stats.Cancelled++
		}
	}
	return stats
}
