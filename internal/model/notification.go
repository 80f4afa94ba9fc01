package model

import "fmt"

// NotificationType identifies why the server raised a notification.
type NotificationType string

const (
	NotificationTaskDueSoon            NotificationType = "TASK_DUE_SOON"
	NotificationHabitMissed            NotificationType = "HABIT_MISSED"
	NotificationGoalNearDeadline       NotificationType = "GOAL_NEAR_DEADLINE"
	NotificationFocusReminder          NotificationType = "FOCUS_REMINDER"
	NotificationUpcomingEvent          NotificationType = "UPCOMING_EVENT"
	NotificationPhysicalActivityMissed NotificationType = "PHYSICAL_ACTIVITY_MISSED"
	NotificationTaskDue                NotificationType = "TASK_DUE"
	NotificationEventUpcoming          NotificationType = "EVENT_UPCOMING"
)

// NotificationTypes returns every declared notification type.
func NotificationTypes() []NotificationType {
	return []NotificationType{
		NotificationTaskDueSoon,
		NotificationHabitMissed,
		NotificationGoalNearDeadline,
		NotificationFocusReminder,
		NotificationUpcomingEvent,
		NotificationPhysicalActivityMissed,
		NotificationTaskDue,
		NotificationEventUpcoming,
	}
}

// Icon returns the glyph rendered next to a notification of this type.
func (t NotificationType) Icon() string {
	switch t {
	case NotificationTaskDueSoon, NotificationTaskDue:
		return "⏰"
	case NotificationHabitMissed:
		return "↻"
	case NotificationGoalNearDeadline:
		return "⚑"
	case NotificationFocusReminder:
		return "◎"
	case NotificationUpcomingEvent, NotificationEventUpcoming:
		return "▣"
	case NotificationPhysicalActivityMissed:
		return "♥"
	}
	return ""
}

// Valid reports whether t is one of the declared types.
func (t NotificationType) Valid() bool { return t.Icon() != "" }

// UnmarshalText rejects notification types the client does not know about. An empty
// value decodes as unset.
func (t *NotificationType) UnmarshalText(b []byte) error {
	v := NotificationType(b)
	if v == "" {
		*t = ""
		return nil
	}
	if !v.Valid() {
		return fmt.Errorf("unknown notification type %q", string(b))
	}
	*t = v
	return nil
}

// Notification is a server-generated alert for the current user.
type Notification struct {
	ID      int64            `json:"id"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
	SentAt  string           `json:"sentAt"`
	IsRead  bool             `json:"isRead"`
}

// CountUnread returns how many notifications have not been read.
func CountUnread(list []Notification) int {
	n := 0
	for _, item := range list {
		if !item.IsRead {
			n++
		}
	}
	return n
}
