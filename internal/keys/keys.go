package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down  key.Binding
	Up    key.Binding
	Left  key.Binding
	Right key.Binding
	Next  key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Views
	GoDashboard     key.Binding
	GoTasks         key.Binding
	GoHabits        key.Binding
	GoGoals         key.Binding
	GoEvents        key.Binding
	GoDiary         key.Binding
	GoNotifications key.Binding
	GoUsers         key.Binding

	// Item actions
	New       key.Binding
	Delete    key.Binding
	Toggle    key.Binding
	Increase  key.Binding
	Decrease  key.Binding
	MoveLeft  key.Binding
	MoveRight key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding

	// Notifications
	MarkAll key.Binding
	Clear   key.Binding

	// Admin user list
	Filter      key.Binding
	ToggleAdmin key.Binding

	// Focus timer
	TimerStart key.Binding
	TimerReset key.Binding
	TimerSkip  key.Binding
	TimerMode  key.Binding

	Settings key.Binding
	Logout   key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "right"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next panel"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		GoDashboard: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		GoTasks: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "kanban"),
		),
		GoHabits: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "habits"),
		),
		GoGoals: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "goals"),
		),
		GoEvents: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "events"),
		),
		GoDiary: key.NewBinding(
			key.WithKeys("6"),
			key.WithHelp("6", "diary"),
		),
		GoNotifications: key.NewBinding(
			key.WithKeys("7"),
			key.WithHelp("7", "notifications"),
		),
		GoUsers: key.NewBinding(
			key.WithKeys("8"),
			key.WithHelp("8", "users (admin)"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle done"),
		),
		Increase: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "progress +10"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "progress -10"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("H", "shift+left"),
			key.WithHelp("H", "move to left column"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys("L", "shift+right"),
			key.WithHelp("L", "move to right column"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move down"),
		),
		MarkAll: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "mark all read"),
		),
		Clear: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear all"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle status filter"),
		),
		ToggleAdmin: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle admin role"),
		),
		TimerStart: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "start/pause timer"),
		),
		TimerReset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset timer"),
		),
		TimerSkip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip phase"),
		),
		TimerMode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "timer mode"),
		),
		Settings: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "settings"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "log out"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Command,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Next, k.Select, k.Back, k.Quit},
		{k.GoDashboard, k.GoTasks, k.GoHabits, k.GoGoals, k.GoEvents, k.GoDiary, k.GoNotifications, k.GoUsers},
		{k.New, k.Delete, k.Toggle, k.Increase, k.Decrease, k.MoveLeft, k.MoveRight, k.MoveUp, k.MoveDown},
		{k.MarkAll, k.Clear, k.Filter, k.ToggleAdmin, k.TimerStart, k.TimerReset, k.TimerSkip, k.TimerMode},
		{k.Command, k.Help, k.Refresh, k.Settings, k.Logout},
	}
}
