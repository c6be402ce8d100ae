package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

// TestParseRelativeTimeUnit covers various valid and invalid cases.
func TestParseRelativeTimeUnit(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{
			name:     "valid plural months (mixed case)",
			input:    "3 MoNtHs AgO",
			expected: fixedNow.AddDate(0, -3, 0),
		},
		{
			name:     "valid singular week (capitalized)",
			input:    "1 Week Ago",
			expected: fixedNow.Add(-7 * 24 * time.Hour),
		},
		{
			name:     "valid 10 days (upper case)",
			input:    "10 DAYS AGO",
			expected: fixedNow.Add(-10 * 24 * time.Hour),
		},
		{
			name:     "valid minutes",
			input:    "90 minutes ago",
			expected: fixedNow.Add(-90 * time.Minute),
		},
		{name: "invalid missing ago", input: "2 years", expectError: true},
		{name: "invalid bad unit (decades)", input: "4 decades ago", expectError: true},
		{name: "invalid non-numeric value", input: "one year ago", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, fixedNow)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format DateFormat
		want   string
	}{
		{"single digit month", "2023-9", MonthKeyFormat, "2023-09"},
		{"already padded", "2023-09", MonthKeyFormat, "2023-09"},
		{"ctime to month", "Fri Sep 29 00:00:00 2023", MonthKeyFormat, "2023-09"},
		{"month to ctime", "2023-9", CtimeFormat, "Fri Sep 01 00:00:00 2023"},
		{"ctime round trip", "Fri Sep 29 00:00:00 2023", CtimeFormat, "Fri Sep 29 00:00:00 2023"},
		{"month out of range", "2023-13", MonthKeyFormat, "2023-13"},
		{"garbage", "not a date", MonthKeyFormat, "not a date"},
		{"full iso date", "2023-09-01", MonthKeyFormat, "2023-09-01"},
		{"empty", "", MonthKeyFormat, ""},
		{"unknown format", "2023-9", DateFormat("weekly"), "2023-9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.input, tt.format))
		})
	}
}

func TestNormalizeMonthKey(t *testing.T) {
	assert.Equal(t, "2024-01", NormalizeMonthKey("2024-1"))
	assert.Equal(t, "bogus", NormalizeMonthKey("bogus"))
}

func TestMonthOf(t *testing.T) {
	ts := time.Date(2023, time.September, 30, 23, 30, 0, 0, time.UTC).Unix()
	assert.Equal(t, "2023-09", MonthOf(ts, time.UTC))
	assert.Equal(t, "2023-10", MonthOf(ts, time.FixedZone("UTC+2", 2*3600)))
}

// FuzzNormalizeDate checks that normalization never panics and that
// unparseable values come back untouched.
func FuzzNormalizeDate(f *testing.F) {
	for _, seed := range []string{"2023-9", "2023-09", "Fri Sep 29 00:00:00 2023", "", "x-y", "-"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, input string) {
		out := NormalizeDate(input, MonthKeyFormat)
		if _, _, _, ok := parseLooseDate(input); !ok {
			assert.Equal(t, input, out)
		}
	})
}

// FuzzParseRelativeTime fuzzes the ParseRelativeTime function with random inputs.
func FuzzParseRelativeTime(f *testing.F) {
	for _, seed := range []string{"1 year ago", "2 months ago", "3 weeks ago", "0 years ago"} {
		f.Add(seed)
	}
	f.Fuzz(func(_ *testing.T, input string) {
		_, _ = ParseRelativeTime(input, time.Now())
	})
}
