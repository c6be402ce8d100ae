package core

import (
	"sort"
	"strings"
	"time"

	"github.com/huangsam/gitlake/core/algo"
	"github.com/huangsam/gitlake/internal/contract"
	"github.com/huangsam/gitlake/schema"
)

// IsFix reports whether a commit message contains a fix keyword.
// A nil message is never a fix. Matching folds ASCII case only, like SQL LOWER.
func IsFix(message *string) bool {
	if message == nil {
		return false
	}
	lower := asciiLower(*message)
	for _, kw := range schema.FixKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ChangeFailureRates returns, per local calendar month, the percentage of
// commits classified as fixes. Months without commits are not emitted.
func ChangeFailureRates(commits []schema.CommitRecord, loc *time.Location) []schema.ChangeFailureStat {
	type tally struct{ fix, total int }
	byMonth := make(map[string]*tally)
	for _, c := range commits {
		month := contract.MonthOf(c.CommittedAt, loc)
		t, ok := byMonth[month]
		if !ok {
			t = &tally{}
			byMonth[month] = t
		}
		t.total++
		if IsFix(c.Message) {
			t.fix++
		}
	}

	stats := make([]schema.ChangeFailureStat, 0, len(byMonth))
	for month, t := range byMonth {
		stats = append(stats, schema.ChangeFailureStat{
			Month:        month,
			Rate:         algo.RoundTo(100.0*float64(t.fix)/float64(t.total), 1),
			FixCommits:   t.fix,
			TotalCommits: t.total,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Month < stats[j].Month })
	return stats
}

// ActiveAuthors returns the number of distinct author emails per local month.
func ActiveAuthors(commits []schema.CommitRecord, loc *time.Location) []schema.ActiveAuthorStat {
	byMonth := make(map[string]map[string]struct{})
	for _, c := range commits {
		month := contract.MonthOf(c.CommittedAt, loc)
		if byMonth[month] == nil {
			byMonth[month] = make(map[string]struct{})
		}
		byMonth[month][c.AuthorEmail] = struct{}{}
	}

	stats := make([]schema.ActiveAuthorStat, 0, len(byMonth))
	for month, authors := range byMonth {
		stats = append(stats, schema.ActiveAuthorStat{Month: month, Authors: len(authors)})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Month < stats[j].Month })
	return stats
}

// asciiLower lowercases A-Z and leaves every other rune alone.
func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
