package model

import (
	"sort"
	"time"
)

// DiaryEntry is a dated journal entry.
type DiaryEntry struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	EntryDate string `json:"entryDate"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// DiaryEntryRequest is the body for creating or updating a diary entry.
type DiaryEntryRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	EntryDate string `json:"entryDate"`
}

// RecentDiary returns up to n non-empty entries, newest entry date first.
func RecentDiary(entries []DiaryEntry, n int) []DiaryEntry {
	out := make([]DiaryEntry, 0, len(entries))
	for _, e := range entries {
		if e.Title != "" || e.Content != "" {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := ParseTimestamp(out[i].EntryDate, time.UTC)
		tj, _ := ParseTimestamp(out[j].EntryDate, time.UTC)
		return ti.After(tj)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
