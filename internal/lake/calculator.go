package lake

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/huangsam/gitlake/internal/contract"
	"github.com/huangsam/gitlake/schema"
	"github.com/sirupsen/logrus"
)

// Calculator computes every metric by loading commits into a Store and
// querying them back under one repository tag.
type Calculator struct {
	store      contract.LakeStore
	repoID     string
	logger     logrus.FieldLogger
	loadedHash string
	loadedRows int64
}

var _ contract.Calculator = &Calculator{} // Compile-time check

// NewCalculator returns a relational calculator writing under repoID.
func NewCalculator(store contract.LakeStore, repoID string, logger logrus.FieldLogger) *Calculator {
	return &Calculator{store: store, repoID: repoID, logger: logger}
}

// ensureLoaded loads commits unless the same input was the last one loaded
// and the tag still holds the row count that load left behind. The count
// catches a clear or a smaller reload of the tag by another process. A
// concurrent rewrite that keeps the count is not detected, so a shared
// persistent lake needs distinct tags per writer.
func (c *Calculator) ensureLoaded(ctx context.Context, commits []schema.CommitRecord) error {
	hash := fingerprint(commits)
	if hash == c.loadedHash {
		rows, err := c.store.CountRows(ctx, c.repoID)
		if err != nil {
			return err
		}
		if rows == c.loadedRows {
			return nil
		}
		c.logger.WithFields(logrus.Fields{
			"repo_id":  c.repoID,
			"expected": c.loadedRows,
			"found":    rows,
		}).Warn("lake tag changed since last load, reloading")
	}
	if err := c.store.Load(ctx, commits, c.repoID); err != nil {
		return err
	}
	rows, err := c.store.CountRows(ctx, c.repoID)
	if err != nil {
		return err
	}
	c.loadedHash = hash
	c.loadedRows = rows
	c.logger.WithField("repo_id", c.repoID).Debug("lake reloaded for new input")
	return nil
}

// Deltas implements the Calculator interface.
func (c *Calculator) Deltas(ctx context.Context, commits []schema.CommitRecord) ([]schema.Delta, error) {
	if err := c.ensureLoaded(ctx, commits); err != nil {
		return nil, err
	}
	return c.store.QueryDeltas(ctx, c.repoID)
}

// FixedBucketStats implements the Calculator interface.
func (c *Calculator) FixedBucketStats(ctx context.Context, commits []schema.CommitRecord, bucketSize int) ([]schema.BucketStat, error) {
	if bucketSize <= 0 {
		return nil, fmt.Errorf("%w: %d", schema.ErrInvalidBucketSize, bucketSize)
	}
	if err := c.ensureLoaded(ctx, commits); err != nil {
		return nil, err
	}
	return c.store.QueryFixedBucket(ctx, c.repoID, bucketSize)
}

// ByMonthStats implements the Calculator interface.
func (c *Calculator) ByMonthStats(ctx context.Context, commits []schema.CommitRecord) ([]schema.BucketStat, error) {
	if err := c.ensureLoaded(ctx, commits); err != nil {
		return nil, err
	}
	return c.store.QueryByMonth(ctx, c.repoID)
}

// ChangeFailureRates implements the Calculator interface.
func (c *Calculator) ChangeFailureRates(ctx context.Context, commits []schema.CommitRecord) ([]schema.ChangeFailureStat, error) {
	if err := c.ensureLoaded(ctx, commits); err != nil {
		return nil, err
	}
	return c.store.QueryChangeFailure(ctx, c.repoID)
}

// ActiveAuthors implements the Calculator interface.
func (c *Calculator) ActiveAuthors(ctx context.Context, commits []schema.CommitRecord) ([]schema.ActiveAuthorStat, error) {
	if err := c.ensureLoaded(ctx, commits); err != nil {
		return nil, err
	}
	return c.store.QueryActiveAuthors(ctx, c.repoID)
}

// fingerprint hashes every field of every commit in order.
func fingerprint(commits []schema.CommitRecord) string {
	h := sha256.New()
	var buf [8]byte
	for _, c := range commits {
		_, _ = fmt.Fprintf(h, "%d:%s%d:%s", len(c.ID), c.ID, len(c.AuthorEmail), c.AuthorEmail)
		binary.BigEndian.PutUint64(buf[:], uint64(c.CommittedAt))
		_, _ = h.Write(buf[:])
		if c.Message == nil {
			_, _ = h.Write([]byte{0})
		} else {
			_, _ = fmt.Fprintf(h, "\x01%d:%s", len(*c.Message), *c.Message)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
