package domain

import (
	"strings"
	"time"
)

// dateLayouts are the formats accepted for job and container dates. Values come
// from the frontend date pickers and from imported sheets, so both ISO and
// day-first forms show up.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"02-01-2006",
	"02/01/2006",
}

var invalidDateLiterals = map[string]struct{}{
	"null":         {},
	"undefined":    {},
	"invalid date": {},
}

// ParseDate parses a job date string. The second return value is false for
// blank, placeholder or unparseable values.
func ParseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	if _, ok := invalidDateLiterals[strings.ToLower(trimmed)]; ok {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsValidDate reports whether value holds a usable date.
func IsValidDate(value string) bool {
	_, ok := ParseDate(value)
	return ok
}

// NormalizeDate rewrites a valid date to YYYY-MM-DD (or YYYY-MM-DDTHH:MM when it
// carries a time of day). Invalid values are returned trimmed but otherwise untouched.
func NormalizeDate(value string) string {
	t, ok := ParseDate(value)
	if !ok {
		return strings.TrimSpace(value)
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02T15:04")
}
