package schema

// CycleResult is the output of one cycle-time run.
type CycleResult struct {
	RepoID     string       `json:"repo_id"`
	Engine     Engine       `json:"engine"`
	Mode       BucketMode   `json:"mode"`
	BucketSize int          `json:"bucket_size,omitempty"`
	Deltas     []Delta      `json:"deltas,omitempty"`
	Buckets    []BucketStat `json:"buckets,omitempty"`
}

// FailureResult is the output of one change-failure run.
type FailureResult struct {
	RepoID string              `json:"repo_id"`
	Engine Engine              `json:"engine"`
	Months []ChangeFailureStat `json:"months"`
}

// AuthorsResult is the output of one active-authors run.
type AuthorsResult struct {
	RepoID string             `json:"repo_id"`
	Engine Engine             `json:"engine"`
	Months []ActiveAuthorStat `json:"months"`
}
