package schema

// LakeStatus represents the status of the commit lake.
type LakeStatus struct {
	Backend    string           `json:"backend"`
	Connected  bool             `json:"connected"`
	TotalRows  int64            `json:"total_rows"`
	RepoCounts map[string]int64 `json:"repo_counts"`
}

// LakeCommitRecord represents a row of the commits table.
type LakeCommitRecord struct {
	ID          string  `db:"sha"`
	AuthorEmail string  `db:"author_email"`
	CommittedAt int64   `db:"committed_date"`
	RepoID      string  `db:"_raw_data_params"`
	Message     *string `db:"message"`
}
