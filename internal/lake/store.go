package lake

import (
	"context"
	"fmt"

	"github.com/huangsam/gitlake/schema"
	"github.com/sirupsen/logrus"
)

// Load replaces every row tagged with repoID by commits in one transaction.
// Loading the same commits twice leaves the same rows. Duplicate ids within
// one load keep the last occurrence.
func (s *Store) Load(ctx context.Context, commits []schema.CommitRecord, repoID string) error {
	if s.db == nil {
		return ErrClosed
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin lake transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.prepare(`DELETE FROM commits WHERE _raw_data_params = ?`), repoID); err != nil {
		return fmt.Errorf("failed to clear rows for %s: %w", repoID, err)
	}

	stmt, err := tx.PreparexContext(ctx, s.prepare(s.dialect.upsert))
	if err != nil {
		return fmt.Errorf("failed to prepare commit insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range commits {
		if _, err := stmt.ExecContext(ctx, c.ID, c.AuthorEmail, c.CommittedAt, repoID, c.Message); err != nil {
			return fmt.Errorf("failed to insert commit %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit lake transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"repo_id": repoID, "rows": len(commits)}).Debug("loaded commits into lake")
	return nil
}

// QueryDeltas returns the deltas of repoID ordered by (committed_date, sha).
func (s *Store) QueryDeltas(ctx context.Context, repoID string) ([]schema.Delta, error) {
	deltas := []schema.Delta{}
	if err := s.selectRows(ctx, &deltas, queryDeltas, repoID); err != nil {
		return nil, fmt.Errorf("failed to query deltas: %w", err)
	}
	return deltas, nil
}

// QueryFixedBucket returns statistics over consecutive chunks of bucketSize deltas.
func (s *Store) QueryFixedBucket(ctx context.Context, repoID string, bucketSize int) ([]schema.BucketStat, error) {
	if bucketSize <= 0 {
		return nil, fmt.Errorf("%w: %d", schema.ErrInvalidBucketSize, bucketSize)
	}
	stats := []schema.BucketStat{}
	if err := s.selectRows(ctx, &stats, queryFixedBucket, repoID, bucketSize); err != nil {
		return nil, fmt.Errorf("failed to query fixed buckets: %w", err)
	}
	return stats, nil
}

// QueryByMonth returns statistics per calendar month in the session zone.
func (s *Store) QueryByMonth(ctx context.Context, repoID string) ([]schema.BucketStat, error) {
	stats := []schema.BucketStat{}
	if err := s.selectRows(ctx, &stats, queryByMonth, repoID); err != nil {
		return nil, fmt.Errorf("failed to query monthly buckets: %w", err)
	}
	return stats, nil
}

// QueryChangeFailure returns the monthly share of fix commits.
func (s *Store) QueryChangeFailure(ctx context.Context, repoID string) ([]schema.ChangeFailureStat, error) {
	stats := []schema.ChangeFailureStat{}
	if err := s.selectRows(ctx, &stats, queryChangeFailure, repoID); err != nil {
		return nil, fmt.Errorf("failed to query change failure: %w", err)
	}
	return stats, nil
}

// QueryActiveAuthors returns distinct authors per month.
func (s *Store) QueryActiveAuthors(ctx context.Context, repoID string) ([]schema.ActiveAuthorStat, error) {
	stats := []schema.ActiveAuthorStat{}
	if err := s.selectRows(ctx, &stats, queryActiveAuthors, repoID); err != nil {
		return nil, fmt.Errorf("failed to query active authors: %w", err)
	}
	return stats, nil
}

// Export returns raw rows for repoID, or every row when repoID is empty.
func (s *Store) Export(ctx context.Context, repoID string) ([]schema.LakeCommitRecord, error) {
	query := `SELECT sha, author_email, committed_date, _raw_data_params, message FROM commits`
	var args []any
	if repoID != "" {
		query += ` WHERE _raw_data_params = ?`
		args = append(args, repoID)
	}
	query += ` ORDER BY _raw_data_params, committed_date, sha`

	rows := []schema.LakeCommitRecord{}
	if err := s.selectRows(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to export lake rows: %w", err)
	}
	return rows, nil
}

// Clear deletes rows tagged with repoID, or every row when repoID is empty.
func (s *Store) Clear(ctx context.Context, repoID string) error {
	if s.db == nil {
		return ErrClosed
	}
	var err error
	if repoID == "" {
		_, err = s.db.ExecContext(ctx, `DELETE FROM commits`)
	} else {
		_, err = s.db.ExecContext(ctx, s.prepare(`DELETE FROM commits WHERE _raw_data_params = ?`), repoID)
	}
	if err != nil {
		return fmt.Errorf("failed to clear lake: %w", err)
	}
	return nil
}

// CountRows returns the number of rows tagged with repoID.
func (s *Store) CountRows(ctx context.Context, repoID string) (int64, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	var n int64
	if err := s.db.GetContext(ctx, &n, s.prepare(`SELECT COUNT(*) FROM commits WHERE _raw_data_params = ?`), repoID); err != nil {
		return 0, fmt.Errorf("failed to count rows for %s: %w", repoID, err)
	}
	return n, nil
}

// GetStatus returns row counts overall and per repository tag.
func (s *Store) GetStatus(ctx context.Context) (schema.LakeStatus, error) {
	status := schema.LakeStatus{
		Backend:    string(s.dialect.backend),
		Connected:  s.db != nil,
		RepoCounts: make(map[string]int64),
	}
	if s.db == nil {
		return status, nil
	}

	if err := s.db.GetContext(ctx, &status.TotalRows, `SELECT COUNT(*) FROM commits`); err != nil {
		return status, fmt.Errorf("failed to count lake rows: %w", err)
	}

	var counts []struct {
		RepoID string `db:"repo_id"`
		Rows   int64  `db:"row_count"`
	}
	query := `SELECT _raw_data_params AS repo_id, COUNT(*) AS row_count FROM commits GROUP BY _raw_data_params`
	if err := s.db.SelectContext(ctx, &counts, query); err != nil {
		return status, fmt.Errorf("failed to count rows per repository: %w", err)
	}
	for _, c := range counts {
		status.RepoCounts[c.RepoID] = c.Rows
	}
	return status, nil
}
