// Package dateutil formats server dates for display: calendar-relative
// group labels, relative times and due-date phrases.
package dateutil

import (
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/nhle/dayboard/internal/model"
)

// Group is a run of items sharing one date label.
type Group[T any] struct {
	Label   string
	Entries []T
}

// GroupByDateLabel buckets items under Today, Yesterday, This week, the month
// name (same year) or "Month Year", judged against now. Items whose date is
// empty or unparseable are skipped. Groups are ordered newest first by their
// first entry; entries keep their input order.
func GroupByDateLabel[T any](items []T, date func(T) string, now time.Time) []Group[T] {
	var (
		groups []Group[T]
		first  []time.Time
		index  = make(map[string]int)
	)
	for _, item := range items {
		t, ok := model.ParseTimestamp(date(item), now.Location())
		if !ok {
			continue
		}
		label := DateLabel(t, now)
		i, seen := index[label]
		if !seen {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group[T]{Label: label})
			first = append(first, t)
		}
		groups[i].Entries = append(groups[i].Entries, item)
	}

	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return first[order[a]].After(first[order[b]])
	})

	out := make([]Group[T], 0, len(groups))
	for _, i := range order {
		out = append(out, groups[i])
	}
	return out
}

// DateLabel returns the group label for t relative to now. Weeks start on
// Sunday.
func DateLabel(t, now time.Time) string {
	t = t.In(now.Location())
	days := dayDiff(t, now)
	switch {
	case days == 0:
		return "Today"
	case days == -1:
		return "Yesterday"
	case sameWeek(t, now):
		return "This week"
	case t.Year() == now.Year():
		return t.Format("January")
	default:
		return t.Format("January 2006")
	}
}

// relativeMagnitudes is the short-form table behind RelativeTime. Anything a
// week or more away is shown as a date instead.
var relativeMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "just now", DivBy: 1},
	{D: time.Hour, Format: "%d min %s", DivBy: time.Minute},
	{D: humanize.Day, Format: "%dh %s", DivBy: time.Hour},
	{D: humanize.Week, Format: "%dd %s", DivBy: humanize.Day},
}

// RelativeTime phrases how long ago t was: "just now", "N min ago", "Nh ago",
// "Nd ago", or the date once a week has passed. Future times read
// "N min from now" and so on.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	if d >= humanize.Week || d <= -humanize.Week {
		return t.In(now.Location()).Format("Jan 2, 2006")
	}
	return humanize.CustomRelTime(t, now, "ago", "from now", relativeMagnitudes)
}

// RelativeTimestamp is RelativeTime for a raw server timestamp. Unparseable
// input is returned as is.
func RelativeTimestamp(s string, now time.Time) string {
	t, ok := model.ParseTimestamp(s, now.Location())
	if !ok {
		return s
	}
	return RelativeTime(t, now)
}

// DueLabel phrases a due date against today: "Overdue by N day(s)",
// "Today" or "In N day(s)". Empty or unparseable dates yield "".
func DueLabel(due string, now time.Time) string {
	t, ok := model.ParseTimestamp(due, now.Location())
	if !ok {
		return ""
	}
	days := dayDiff(t, now)
	switch {
	case days < 0:
		return "Overdue by " + english.Plural(-days, "day", "days")
	case days == 0:
		return "Today"
	default:
		return "In " + english.Plural(days, "day", "days")
	}
}

// IsOverdue reports whether due falls on a day before today.
func IsOverdue(due string, now time.Time) bool {
	t, ok := model.ParseTimestamp(due, now.Location())
	return ok && dayDiff(t, now) < 0
}

// EventLabel phrases an event start: "Today", "Tomorrow", "Past",
// "In N days" within a week, else a short date.
func EventLabel(start string, now time.Time) string {
	t, ok := model.ParseTimestamp(start, now.Location())
	if !ok {
		return ""
	}
	days := dayDiff(t, now)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days < 0:
		return "Past"
	case days <= 7:
		return fmt.Sprintf("In %d days", days)
	default:
		return t.Format("Mon, Jan 2")
	}
}

// dayDiff counts calendar days from now to t in now's location.
func dayDiff(t, now time.Time) int {
	return int(civilDay(t.In(now.Location())) - civilDay(now))
}

func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func sameWeek(t, now time.Time) bool {
	start := civilDay(now) - int64(now.Weekday())
	day := civilDay(t.In(now.Location()))
	return day >= start && day < start+7
}
