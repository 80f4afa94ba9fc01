package collection

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/dayboard/internal/dateutil"
	"github.com/nhle/dayboard/internal/model"
	"github.com/nhle/dayboard/internal/theme"
)

// Item wraps a model.ListItem so it can be used in a bubbles/list.
type Item struct {
	model.ListItem
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.GetTitle() }

// Delegate implements list.ItemDelegate with one line per row.
type Delegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a single row.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}

	prefix := "○"
	if it.IsCompleted() {
		prefix = "✓"
	}
	line := fmt.Sprintf("%s %s", prefix, it.GetTitle())
	if detail := Detail(it.ListItem, d.now()); detail != "" {
		line += "  " + theme.HelpStyle.Render(detail)
	}

	if it.IsCompleted() {
		line = theme.DimmedStyle.Render(line)
	}
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}
	fmt.Fprint(w, line)
}

// Detail returns the secondary text shown after an item's title.
func Detail(li model.ListItem, now time.Time) string {
	switch v := li.(type) {
	case model.Goal:
		parts := []string{fmt.Sprintf("%d%%", v.Progress)}
		if due := dateutil.DueLabel(v.TargetDate, now); due != "" {
			parts = append(parts, due)
		}
		return strings.Join(parts, " · ")
	case model.Habit:
		if len(v.ActiveDays) == 0 || len(v.ActiveDays) == 7 {
			return "every day"
		}
		days := make([]string, len(v.ActiveDays))
		for i, day := range v.ActiveDays {
			label := model.EnumLabel(day)
			days[i] = label[:min(3, len(label))]
		}
		return strings.Join(days, " ")
	case model.Event:
		out := dateutil.EventLabel(v.StartDateTime, now)
		if t, ok := model.ParseTimestamp(v.StartDateTime, now.Location()); ok {
			out += " " + t.Format("15:04")
		}
		if v.Location != "" {
			out += " @ " + v.Location
		}
		return out
	case model.DiaryEntry:
		return dateutil.RelativeTimestamp(v.EntryDate, now)
	}
	return ""
}
