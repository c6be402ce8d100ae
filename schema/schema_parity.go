package schema

// Metric names used in parity reports.
const (
	MetricDeltas        = "deltas"
	MetricFixedBucket   = "fixed_bucket"
	MetricByMonth       = "by_month"
	MetricChangeFailure = "change_failure"
	MetricActiveAuthors = "active_authors"
)

// Mismatch is one value that differs between the two engines beyond its tolerance.
type Mismatch struct {
	Metric     string  `json:"metric"`
	Key        string  `json:"key"`   // Row label or index
	Field      string  `json:"field"` // Column name
	Memory     float64 `json:"memory"`
	Relational float64 `json:"relational"`
	Allowed    float64 `json:"allowed"`
	Detail     string  `json:"detail,omitempty"`
}

// MetricParity summarizes the comparison of one metric.
type MetricParity struct {
	Metric         string     `json:"metric"`
	MemoryRows     int        `json:"memory_rows"`
	RelationalRows int        `json:"relational_rows"`
	Relaxed        bool       `json:"relaxed"` // Tolerance widened for a documented divergence
	Mismatches     []Mismatch `json:"mismatches"`
}

// OK reports whether the metric matched within tolerance.
func (m MetricParity) OK() bool {
	return len(m.Mismatches) == 0
}

// ParityReport is the outcome of running both engines on the same commits.
type ParityReport struct {
	RepoID              string         `json:"repo_id"`
	Commits             int            `json:"commits"`
	BucketSize          int            `json:"bucket_size"`
	DuplicateTimestamps bool           `json:"duplicate_timestamps"`
	Metrics             []MetricParity `json:"metrics"`
}

// OK reports whether every metric matched.
func (r ParityReport) OK() bool {
	for _, m := range r.Metrics {
		if !m.OK() {
			return false
		}
	}
	return true
}

// ComparisonResult bundles both engines' outputs with the parity report.
type ComparisonResult struct {
	Report     ParityReport  `json:"report"`
	Memory     EngineOutputs `json:"memory"`
	Relational EngineOutputs `json:"relational"`
}

// EngineOutputs holds every metric one engine produced.
type EngineOutputs struct {
	Deltas        []Delta             `json:"deltas"`
	FixedBucket   []BucketStat        `json:"fixed_bucket"`
	ByMonth       []BucketStat        `json:"by_month"`
	ChangeFailure []ChangeFailureStat `json:"change_failure"`
	ActiveAuthors []ActiveAuthorStat  `json:"active_authors"`
}
