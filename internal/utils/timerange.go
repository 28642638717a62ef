package utils

import (
	"fmt"
	"strings"
	"time"
)

// Named time ranges accepted by project listing.
const (
	TimeRangeCurrentYear = "currentYear"
	TimeRangeLastMonth   = "lastMonth"
	TimeRangeThisMonth   = "thisMonth"
	TimeRangeLastWeek    = "lastWeek"
	TimeRangeThisWeek    = "thisWeek"
)

// DateRange bounds a date column. From is inclusive. To is exclusive unless
// ToInclusive is set.
type DateRange struct {
	From        *time.Time
	To          *time.Time
	ToInclusive bool
}

// IsZero reports whether the range applies no bound at all.
func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

// TimeRangeWindow resolves a named range relative to now, in now's location.
// Weeks start on Sunday. The returned window is [start, end).
func TimeRangeWindow(name string, now time.Time) (DateRange, bool) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	sunday := today.AddDate(0, 0, -int(now.Weekday()))

	var start, end time.Time
	switch name {
	case TimeRangeCurrentYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(1, 0, 0)
	case TimeRangeLastMonth:
		start = firstOfMonth.AddDate(0, -1, 0)
		end = firstOfMonth
	case TimeRangeThisMonth:
		start = firstOfMonth
		end = firstOfMonth.AddDate(0, 1, 0)
	case TimeRangeLastWeek:
		start = sunday.AddDate(0, 0, -7)
		end = sunday
	case TimeRangeThisWeek:
		start = sunday
		end = sunday.AddDate(0, 0, 7)
	default:
		return DateRange{}, false
	}

	return DateRange{From: &start, To: &end}, true
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate accepts an RFC 3339 timestamp or a plain calendar date. Plain
// dates without a zone are read as UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}
