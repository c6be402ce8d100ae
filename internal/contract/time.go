package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/gitlake/schema"
)

// DateFormat names an output format for NormalizeDate.
type DateFormat string

// Supported NormalizeDate output formats.
const (
	MonthKeyFormat DateFormat = "YYYY-MM"
	CtimeFormat    DateFormat = "ctime"
)

// ctimeLayout matches strings like "Fri Sep 29 00:00:00 2023".
const ctimeLayout = "Mon Jan 02 15:04:05 2006"

// relativeTimeRe captures "N [units] ago", e.g. "2 years ago" or "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// ParseRelativeTime converts strings like "2 years ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid relative time value: %w", err)
	}

	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.AddDate(0, 0, -7*value), nil
	case "day":
		return now.AddDate(0, 0, -value), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	default: // minute
		return now.Add(time.Duration(-value) * time.Minute), nil
	}
}

// MonthOf returns the YYYY-MM label of a unix timestamp in loc.
// A nil loc means the process local zone.
func MonthOf(ts int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(ts, 0).In(loc).Format(schema.MonthLayout)
}

// NormalizeDate converts "YYYY-M", "YYYY-MM" or ctime strings into the
// requested format. Values that cannot be parsed are returned unchanged.
func NormalizeDate(value string, format DateFormat) string {
	year, month, day, ok := parseLooseDate(value)
	if !ok {
		return value
	}

	switch format {
	case MonthKeyFormat:
		return fmt.Sprintf("%d-%02d", year, month)
	case CtimeFormat:
		if day == 0 {
			day = 1
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(ctimeLayout)
	default:
		return value
	}
}

// NormalizeMonthKey zero-pads month keys such as "2023-9" into "2023-09".
func NormalizeMonthKey(key string) string {
	return NormalizeDate(key, MonthKeyFormat)
}

// parseLooseDate returns year, month and day (0 when absent) of value.
func parseLooseDate(value string) (year, month, day int, ok bool) {
	if parts := strings.Split(value, "-"); len(parts) == 2 {
		y, yErr := strconv.Atoi(strings.TrimSpace(parts[0]))
		m, mErr := strconv.Atoi(strings.TrimSpace(parts[1]))
		if yErr == nil && mErr == nil && m >= 1 && m <= 12 {
			return y, m, 0, true
		}
	}

	t, err := time.Parse(time.ANSIC, strings.TrimSpace(value))
	if err != nil {
		return 0, 0, 0, false
	}
	return t.Year(), int(t.Month()), t.Day(), true
}
