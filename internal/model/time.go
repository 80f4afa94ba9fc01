package model

import (
	"strings"
	"time"
)

// Date layouts exchanged with the backend.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// timestampLayouts are tried in order when parsing server timestamps. The
// backend emits zone-less local date-times for most fields.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

// ParseTimestamp parses a server date or date-time string. Zone-less values
// are interpreted in loc. It reports false for empty or unparseable input.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// EnumLabel turns an upper snake case constant such as "IN_PROGRESS" into
// "In Progress".
func EnumLabel(value string) string {
	words := strings.Split(strings.ToLower(value), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
