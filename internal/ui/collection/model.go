// Package collection renders a server-backed list of goals, habits, events
// or diary entries with create, delete and fuzzy filtering.
package collection

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/dayboard/internal/keys"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/theme"
	"github.com/nhle/dayboard/internal/ui"
	"github.com/nhle/dayboard/internal/ui/entryform"
)

// Config describes one collection.
type Config struct {
	// Name identifies the collection in messages; it doubles as the title.
	Name  string
	Empty string
	Form  entryform.Kind

	Load   func(ctx context.Context) ([]model.ListItem, error)
	Delete func(ctx context.Context, id int64) error

	// Adjust, when set, handles +/- on the selected item.
	Adjust func(ctx context.Context, item model.ListItem, delta int) error
}

// LoadedMsg carries the items of the collection called Name.
type LoadedMsg struct {
	Name  string
	Items []model.ListItem
	Err   error
}

// Model is a collection view.
type Model struct {
	cfg    Config
	list   list.Model
	keys   *keys.KeyMap
	loaded bool
	err    error
	width  int
	height int
}

// New creates a collection view.
func New(cfg Config, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, Delegate{now: time.Now}, width, max(height-2, 1))
	l.Title = cfg.Name
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.Styles.Title = theme.HeaderStyle

	return Model{cfg: cfg, list: l, keys: k, width: width, height: height}
}

// Name returns the collection name.
func (m Model) Name() string { return m.cfg.Name }

// Filtering reports whether the filter prompt has focus.
func (m Model) Filtering() bool { return m.list.FilterState() == list.Filtering }

// Load returns a command that fetches the items.
func (m Model) Load() tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		ctx, cancel := ui.RequestContext()
		defer cancel()
		items, err := cfg.Load(ctx)
		return LoadedMsg{Name: cfg.Name, Items: items, Err: err}
	}
}

// Update handles messages for the collection view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Name != m.cfg.Name {
			return m, nil
		}
		m.loaded = true
		m.err = msg.Err
		if msg.Err != nil {
			return m, func() tea.Msg { return ui.ResultMsg{Err: msg.Err} }
		}
		items := make([]list.Item, len(msg.Items))
		for i, it := range msg.Items {
			items[i] = Item{ListItem: it}
		}
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		if cmd, ok := m.handleKeys(msg); ok {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m.Load(), true

	case key.Matches(msg, m.keys.New):
		kind := m.cfg.Form
		return func() tea.Msg { return entryform.OpenMsg{Kind: kind} }, true

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.selected()
		if !ok || m.cfg.Delete == nil {
			return nil, true
		}
		del := m.cfg.Delete
		info := fmt.Sprintf("Deleted %q", item.GetTitle())
		return tea.Sequence(ui.Run(info, func(ctx context.Context) error {
			return del(ctx, item.GetID())
		}), m.Load()), true

	case key.Matches(msg, m.keys.Increase), key.Matches(msg, m.keys.Decrease):
		item, ok := m.selected()
		if !ok || m.cfg.Adjust == nil {
			return nil, true
		}
		delta := 10
		if key.Matches(msg, m.keys.Decrease) {
			delta = -10
		}
		adjust := m.cfg.Adjust
		return tea.Sequence(ui.Run("", func(ctx context.Context) error {
			return adjust(ctx, item.ListItem, delta)
		}), m.Load()), true
	}
	return nil, false
}

func (m Model) selected() (Item, bool) {
	it, ok := m.list.SelectedItem().(Item)
	return it, ok
}

// View renders the collection.
func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		text := "Loading..."
		switch {
		case m.err != nil:
			text = "Could not load " + m.cfg.Name + ".\nPress r to retry."
		case m.loaded:
			text = m.cfg.Empty + "\n\nPress n to add one."
		}
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render(text)
	}
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(height-2, 1))
}
