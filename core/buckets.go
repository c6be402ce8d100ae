package core

import (
	"fmt"
	"time"

	"github.com/huangsam/gitlake/core/algo"
	"github.com/huangsam/gitlake/internal/contract"
	"github.com/huangsam/gitlake/schema"
)

// minBucketLen is the smallest group with a defined percentile and stdev.
const minBucketLen = 2

// FixedBucketStats splits time-ordered deltas into consecutive chunks of size
// and computes statistics per chunk. A trailing chunk shorter than two deltas
// is dropped; a longer one is kept as a short bucket.
func FixedBucketStats(deltas []schema.Delta, size int, loc *time.Location) ([]schema.BucketStat, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", schema.ErrInvalidBucketSize, size)
	}

	stats := []schema.BucketStat{}
	for start := 0; start < len(deltas); start += size {
		end := min(start+size, len(deltas))
		chunk := deltas[start:end]
		if len(chunk) < minBucketLen {
			continue
		}
		label := contract.MonthOf(chunk[0].CommittedAt, loc)
		stats = append(stats, bucketStat(label, chunk))
	}
	return stats, nil
}

// MonthBucketStats groups time-ordered deltas into runs sharing a local
// calendar month and computes statistics per month with at least two deltas.
func MonthBucketStats(deltas []schema.Delta, loc *time.Location) []schema.BucketStat {
	stats := []schema.BucketStat{}
	start := 0
	for start < len(deltas) {
		label := contract.MonthOf(deltas[start].CommittedAt, loc)
		end := start + 1
		for end < len(deltas) && contract.MonthOf(deltas[end].CommittedAt, loc) == label {
			end++
		}
		if end-start >= minBucketLen {
			stats = append(stats, bucketStat(label, deltas[start:end]))
		}
		start = end
	}
	return stats
}

// bucketStat computes sum, average, p75 and sample stdev for one group.
func bucketStat(label string, chunk []schema.Delta) schema.BucketStat {
	values := make([]float64, len(chunk))
	for i, d := range chunk {
		values[i] = d.CycleMinutes
	}
	n := float64(len(values))
	sum := algo.KahanSum(values)
	return schema.BucketStat{
		IntervalStart: label,
		Sum:           sum,
		Average:       algo.RoundTo(sum/n, 2),
		P75:           algo.RoundInt(algo.Percentile(values, algo.P75Fraction)),
		Stdev:         algo.RoundInt(algo.SampleStdev(values)),
		Count:         len(values),
	}
}
