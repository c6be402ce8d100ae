// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/gitlake/schema"
)

// GitClient defines the Git operations needed to build commit records.
// This allows the loaders to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns its output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetRemoteURL returns the URL of the origin remote, or an error when unset.
	GetRemoteURL(ctx context.Context, repoPath string) (string, error)

	// GetCommitLog returns hash, author email and commit time for every commit
	// in log order, one record per commit.
	GetCommitLog(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error)

	// GetCommitMessages returns hash and full message for every commit in the window.
	GetCommitMessages(ctx context.Context, repoPath string, startTime, endTime time.Time) ([]byte, error)

	// GetCommitMessage returns the full message of a single commit.
	GetCommitMessage(ctx context.Context, repoPath string, sha string) (string, error)
}

// Calculator computes every commit metric from the same commit records.
// The in-memory and relational engines both implement it so their outputs
// can be compared on identical input.
type Calculator interface {
	// Deltas returns per-author gaps between consecutive commits.
	Deltas(ctx context.Context, commits []schema.CommitRecord) ([]schema.Delta, error)

	// FixedBucketStats groups time-ordered deltas into chunks of bucketSize.
	FixedBucketStats(ctx context.Context, commits []schema.CommitRecord, bucketSize int) ([]schema.BucketStat, error)

	// ByMonthStats groups time-ordered deltas by local calendar month.
	ByMonthStats(ctx context.Context, commits []schema.CommitRecord) ([]schema.BucketStat, error)

	// ChangeFailureRates returns the monthly share of fix commits.
	ChangeFailureRates(ctx context.Context, commits []schema.CommitRecord) ([]schema.ChangeFailureStat, error)

	// ActiveAuthors returns the number of distinct authors per month.
	ActiveAuthors(ctx context.Context, commits []schema.CommitRecord) ([]schema.ActiveAuthorStat, error)
}

// LakeStore defines the relational store holding commit rows tagged by repository.
type LakeStore interface {
	// Load replaces every row tagged with repoID by the given commits.
	Load(ctx context.Context, commits []schema.CommitRecord, repoID string) error

	QueryDeltas(ctx context.Context, repoID string) ([]schema.Delta, error)
	QueryFixedBucket(ctx context.Context, repoID string, bucketSize int) ([]schema.BucketStat, error)
	QueryByMonth(ctx context.Context, repoID string) ([]schema.BucketStat, error)
	QueryChangeFailure(ctx context.Context, repoID string) ([]schema.ChangeFailureStat, error)
	QueryActiveAuthors(ctx context.Context, repoID string) ([]schema.ActiveAuthorStat, error)

	// Export returns the raw rows tagged with repoID, or every row when repoID is empty.
	Export(ctx context.Context, repoID string) ([]schema.LakeCommitRecord, error)

	// Clear deletes rows tagged with repoID, or every row when repoID is empty.
	Clear(ctx context.Context, repoID string) error

	// CountRows returns the number of rows tagged with repoID.
	CountRows(ctx context.Context, repoID string) (int64, error)

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.LakeStatus, error)

	// Close closes the underlying connection.
	Close() error
}
