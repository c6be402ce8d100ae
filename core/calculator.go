package core

import (
	"context"
	"time"

	"github.com/huangsam/gitlake/internal/contract"
	"github.com/huangsam/gitlake/schema"
)

// MemoryCalculator computes every metric directly from commit records.
type MemoryCalculator struct {
	loc *time.Location
}

var _ contract.Calculator = &MemoryCalculator{} // Compile-time check

// NewMemoryCalculator returns a calculator that buckets months in loc.
// A nil loc means the process local zone, matching SQLite's localtime.
func NewMemoryCalculator(loc *time.Location) *MemoryCalculator {
	if loc == nil {
		loc = time.Local
	}
	return &MemoryCalculator{loc: loc}
}

// Deltas implements the Calculator interface.
func (m *MemoryCalculator) Deltas(_ context.Context, commits []schema.CommitRecord) ([]schema.Delta, error) {
	return ComputeDeltas(commits), nil
}

// FixedBucketStats implements the Calculator interface.
func (m *MemoryCalculator) FixedBucketStats(_ context.Context, commits []schema.CommitRecord, bucketSize int) ([]schema.BucketStat, error) {
	return FixedBucketStats(ComputeDeltas(commits), bucketSize, m.loc)
}

// ByMonthStats implements the Calculator interface.
func (m *MemoryCalculator) ByMonthStats(_ context.Context, commits []schema.CommitRecord) ([]schema.BucketStat, error) {
	return MonthBucketStats(ComputeDeltas(commits), m.loc), nil
}

// ChangeFailureRates implements the Calculator interface.
func (m *MemoryCalculator) ChangeFailureRates(_ context.Context, commits []schema.CommitRecord) ([]schema.ChangeFailureStat, error) {
	return ChangeFailureRates(commits, m.loc), nil
}

// ActiveAuthors implements the Calculator interface.
func (m *MemoryCalculator) ActiveAuthors(_ context.Context, commits []schema.CommitRecord) ([]schema.ActiveAuthorStat, error) {
	return ActiveAuthors(commits, m.loc), nil
}
