// Package schema has the models and constants shared by every part of gitlake.
package schema

// CommitRecord is one commit as delivered by the commit source.
// Records are immutable once read and keep source-log order.
type CommitRecord struct {
	ID          string  `json:"id"`           // Commit hash
	AuthorEmail string  `json:"author_email"` // Author identity used for partitioning
	CommittedAt int64   `json:"committed_at"` // Unix seconds
	Message     *string `json:"message"`      // Nil when the message is unknown
}

// Delta is the gap between two consecutive commits by the same author.
type Delta struct {
	CommittedAt  int64   `json:"committed_date" db:"committed_date"` // Timestamp of the newer commit
	CycleMinutes float64 `json:"cycle_minutes" db:"cycle_minutes"`   // Rounded to 2 decimals
	CommitID     string  `json:"-" db:"sha"`                         // Newer commit, only used for ordering ties
}

// BucketStat holds the statistics of one group of deltas.
type BucketStat struct {
	IntervalStart string  `json:"interval_start" db:"interval_start"` // YYYY-MM of the first delta, or of the month
	Sum           float64 `json:"sum" db:"sum_minutes"`
	Average       float64 `json:"average" db:"average"`
	P75           int64   `json:"p75" db:"p75"`
	Stdev         int64   `json:"std" db:"stdev"`
	Count         int     `json:"count" db:"n_deltas"`
}

// ChangeFailureStat is the share of fix commits in one calendar month.
type ChangeFailureStat struct {
	Month        string  `json:"month" db:"month"`
	Rate         float64 `json:"rate" db:"rate"` // Percentage with 1 decimal
	FixCommits   int     `json:"fix_commits" db:"fix_commits"`
	TotalCommits int     `json:"total_commits" db:"total_commits"`
}

// ActiveAuthorStat is the number of distinct author emails in one calendar month.
type ActiveAuthorStat struct {
	Month   string `json:"month" db:"month"`
	Authors int    `json:"authors" db:"authors"`
}

// MessageOrEmpty returns the commit message or an empty string.
func (c CommitRecord) MessageOrEmpty() string {
	if c.Message == nil {
		return ""
	}
	return *c.Message
}
