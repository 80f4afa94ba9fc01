package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/dayboard/internal/model"
)

// Wednesday.
var now = time.Date(2024, time.March, 6, 12, 0, 0, 0, time.UTC)

func TestDateLabel(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2024-03-06T08:00:00", "Today"},
		{"2024-03-05", "Yesterday"},
		{"2024-03-03", "This week"},
		{"2024-03-09", "This week"},
		{"2024-03-02", "March"},
		{"2024-01-15", "January"},
		{"2023-12-31", "December 2023"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, ok := model.ParseTimestamp(tt.date, time.UTC)
			require.True(t, ok)
			assert.Equal(t, tt.want, DateLabel(d, now))
		})
	}
}

func TestGroupByDateLabel(t *testing.T) {
	entries := []model.DiaryEntry{
		{ID: 1, EntryDate: "2024-01-10"},
		{ID: 2, EntryDate: "2024-03-06"},
		{ID: 3, EntryDate: ""},
		{ID: 4, EntryDate: "2024-01-20"},
		{ID: 5, EntryDate: "2024-03-05"},
		{ID: 6, EntryDate: "2023-07-01"},
		{ID: 7, EntryDate: "not a date"},
	}

	groups := GroupByDateLabel(entries, func(e model.DiaryEntry) string { return e.EntryDate }, now)

	labels := make([]string, 0, len(groups))
	for _, g := range groups {
		labels = append(labels, g.Label)
	}
	assert.Equal(t, []string{"Today", "Yesterday", "January", "July 2023"}, labels)

	require.Len(t, groups[2].Entries, 2)
	assert.Equal(t, int64(1), groups[2].Entries[0].ID)
	assert.Equal(t, int64(4), groups[2].Entries[1].ID)

	assert.Empty(t, GroupByDateLabel(nil, func(e model.DiaryEntry) string { return e.EntryDate }, now))
}

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{5 * time.Minute, "5 min ago"},
		{59 * time.Minute, "59 min ago"},
		{3 * time.Hour, "3h ago"},
		{49 * time.Hour, "2d ago"},
		{8 * 24 * time.Hour, "Feb 27, 2024"},
		{-10 * time.Minute, "10 min from now"},
		{-8 * 24 * time.Hour, "Mar 14, 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(now.Add(-tt.ago), now))
		})
	}

	assert.Equal(t, "5 min ago", RelativeTimestamp("2024-03-06T11:55:00", now))
	assert.Equal(t, "garbage", RelativeTimestamp("garbage", now))
}

func TestDueLabel(t *testing.T) {
	tests := []struct {
		due  string
		want string
	}{
		{"2024-03-05", "Overdue by 1 day"},
		{"2024-03-01", "Overdue by 5 days"},
		{"2024-03-06", "Today"},
		{"2024-03-06T23:59:00", "Today"},
		{"2024-03-07", "In 1 day"},
		{"2024-03-16", "In 10 days"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.due, func(t *testing.T) {
			assert.Equal(t, tt.want, DueLabel(tt.due, now))
		})
	}

	assert.True(t, IsOverdue("2024-03-05", now))
	assert.False(t, IsOverdue("2024-03-06", now))
	assert.False(t, IsOverdue("", now))
}

func TestEventLabel(t *testing.T) {
	assert.Equal(t, "Today", EventLabel("2024-03-06T18:00:00", now))
	assert.Equal(t, "Tomorrow", EventLabel("2024-03-07T09:00:00", now))
	assert.Equal(t, "Past", EventLabel("2024-03-01T09:00:00", now))
	assert.Equal(t, "In 7 days", EventLabel("2024-03-13T09:00:00", now))
	assert.Equal(t, "Sat, Mar 16", EventLabel("2024-03-16T09:00:00", now))
	assert.Empty(t, EventLabel("", now))
}
