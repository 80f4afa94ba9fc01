package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/dayboard/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the top bar and view titles.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// ToastStyle renders an error toast in the status bar.
var ToastStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FFFFFF")).
	Background(ColorRed).
	Padding(0, 1)

// InfoToastStyle renders a non-error toast.
var InfoToastStyle = ToastStyle.Background(ColorGreen)

// PanelStyle wraps a dashboard widget or form.
var PanelStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// FocusedPanelStyle highlights the widget that receives keys.
var FocusedPanelStyle = PanelStyle.BorderForeground(ColorBlue)

// TitleStyle heads a panel.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	MarginBottom(1)

// SelectedItemStyle highlights the row under the cursor.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// ListItemStyle is the base style for unselected rows.
var ListItemStyle = lipgloss.NewStyle().PaddingLeft(2)

// HelpStyle is used for keyboard hints and secondary text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle renders completed or read items.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// OverdueStyle highlights due dates in the past.
var OverdueStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// StaleStyle marks data restored from the local cache.
var StaleStyle = lipgloss.NewStyle().
	Foreground(ColorYellow).
	Italic(true)

// StatusStyle returns a color-coded style for a task status.
func StatusStyle(status model.TaskStatus) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.TaskStatusPending:
		return base.Foreground(ColorBlue)
	case model.TaskStatusInProgress:
		return base.Foreground(ColorYellow)
	case model.TaskStatusCompleted:
		return base.Foreground(ColorGreen)
	case model.TaskStatusCancelled:
		return base.Foreground(ColorGray)
	}
	return base.Foreground(ColorGray)
}

// PriorityStyle returns a color-coded style for a task priority.
func PriorityStyle(priority model.TaskPriority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch priority {
	case model.TaskPriorityUrgent:
		return base.Foreground(ColorRed)
	case model.TaskPriorityHigh:
		return base.Foreground(ColorOrange)
	case model.TaskPriorityMedium:
		return base.Foreground(ColorYellow)
	case model.TaskPriorityLow:
		return base.Foreground(ColorBlue)
	}
	return base.Foreground(ColorGray)
}

// UserStatusStyle returns a color-coded style for an account status.
func UserStatusStyle(status model.UserStatus) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch status {
	case model.UserStatusActive:
		return base.Foreground(ColorGreen)
	case model.UserStatusBlocked:
		return base.Foreground(ColorOrange)
	case model.UserStatusDeleted:
		return base.Foreground(ColorRed)
	}
	return base.Foreground(ColorGray)
}

// NotificationStyle colors a notification by type.
func NotificationStyle(t model.NotificationType) lipgloss.Style {
	base := lipgloss.NewStyle()

	switch t {
	case model.NotificationTaskDueSoon, model.NotificationTaskDue, model.NotificationGoalNearDeadline:
		return base.Foreground(ColorOrange)
	case model.NotificationHabitMissed, model.NotificationPhysicalActivityMissed:
		return base.Foreground(ColorRed)
	case model.NotificationFocusReminder:
		return base.Foreground(ColorMagenta)
	case model.NotificationUpcomingEvent, model.NotificationEventUpcoming:
		return base.Foreground(ColorBlue)
	}
	return base.Foreground(ColorGray)
}
