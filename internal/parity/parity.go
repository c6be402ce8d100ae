// Package parity cross-checks the in-memory and relational engines.
//
// Both engines are expected to agree exactly except where a divergence is
// known: ordering ties between commits with equal timestamps, and deltas that
// land in a neighbouring month when the engines convert time zones
// differently. Those cases get a bounded tolerance band and are reported as
// relaxed. Anything outside the band is a mismatch, reported and never
// returned as an error.
package parity

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/huangsam/gitlake/internal/contract"
	"github.com/huangsam/gitlake/schema"
	"github.com/sirupsen/logrus"
)

// Tolerance is the largest absolute difference accepted per value.
type Tolerance struct {
	DeltaMinutes float64
	Sum          float64
	Average      float64
	Rate         float64
	P75          int64
	Stdev        int64
}

// DefaultTolerance covers floating-point noise only.
func DefaultTolerance() Tolerance {
	return Tolerance{
		DeltaMinutes: 0.01,
		Sum:          1e-6,
		Average:      1e-9,
		Rate:         0.01,
		P75:          0,
		Stdev:        0,
	}
}

// MonthShiftBand widens tol so one delta moving between buckets still passes.
// Moving one element changes a sum by at most its value, and an average, a
// percentile or a standard deviation by at most the largest value present.
func MonthShiftBand(tol Tolerance, deltas []schema.Delta) Tolerance {
	var largest float64
	for _, d := range deltas {
		largest = math.Max(largest, math.Abs(d.CycleMinutes))
	}
	band := tol
	band.Sum = math.Max(tol.Sum, largest)
	band.Average = math.Max(tol.Average, largest)
	band.P75 = max(tol.P75, int64(math.Ceil(largest)))
	band.Stdev = max(tol.Stdev, int64(math.Ceil(largest)))
	return band
}

// HasDuplicateTimestamps reports whether any two commits share a timestamp.
func HasDuplicateTimestamps(commits []schema.CommitRecord) bool {
	seen := make(map[int64]struct{}, len(commits))
	for _, c := range commits {
		if _, ok := seen[c.CommittedAt]; ok {
			return true
		}
		seen[c.CommittedAt] = struct{}{}
	}
	return false
}

// CompareDeltas matches two delta sets after sorting by timestamp and minutes.
// When ties are present only the count and the minute multiset must agree.
func CompareDeltas(memory, relational []schema.Delta, tol Tolerance, ties bool) schema.MetricParity {
	result := schema.MetricParity{
		Metric:         schema.MetricDeltas,
		MemoryRows:     len(memory),
		RelationalRows: len(relational),
		Relaxed:        ties,
		Mismatches:     []schema.Mismatch{},
	}
	if len(memory) != len(relational) {
		result.Mismatches = append(result.Mismatches, rowCountMismatch(schema.MetricDeltas, len(memory), len(relational)))
		return result
	}

	if ties {
		mem, rel := sortedMinutes(memory), sortedMinutes(relational)
		for i := range mem {
			if !within(mem[i], rel[i], tol.DeltaMinutes) {
				result.Mismatches = append(result.Mismatches, schema.Mismatch{
					Metric: schema.MetricDeltas, Key: fmt.Sprintf("#%d", i), Field: "cycle_minutes",
					Memory: mem[i], Relational: rel[i], Allowed: tol.DeltaMinutes,
				})
			}
		}
		return result
	}

	mem, rel := sortedDeltas(memory), sortedDeltas(relational)
	for i := range mem {
		key := fmt.Sprintf("#%d", i)
		if mem[i].CommittedAt != rel[i].CommittedAt {
			result.Mismatches = append(result.Mismatches, schema.Mismatch{
				Metric: schema.MetricDeltas, Key: key, Field: "committed_date",
				Memory: float64(mem[i].CommittedAt), Relational: float64(rel[i].CommittedAt),
			})
			continue
		}
		if !within(mem[i].CycleMinutes, rel[i].CycleMinutes, tol.DeltaMinutes) {
			result.Mismatches = append(result.Mismatches, schema.Mismatch{
				Metric: schema.MetricDeltas, Key: key, Field: "cycle_minutes",
				Memory: mem[i].CycleMinutes, Relational: rel[i].CycleMinutes, Allowed: tol.DeltaMinutes,
			})
		}
	}
	return result
}

// CompareBuckets matches bucket rows position by position.
// A relaxed comparison also lets the count move by one element.
func CompareBuckets(metric string, memory, relational []schema.BucketStat, tol Tolerance, relaxed bool) schema.MetricParity {
	result := schema.MetricParity{
		Metric:         metric,
		MemoryRows:     len(memory),
		RelationalRows: len(relational),
		Relaxed:        relaxed,
		Mismatches:     []schema.Mismatch{},
	}
	if len(memory) != len(relational) {
		result.Mismatches = append(result.Mismatches, rowCountMismatch(metric, len(memory), len(relational)))
		return result
	}

	countTol := 0.0
	if relaxed {
		countTol = 1
	}
	for i := range memory {
		m, r := memory[i], relational[i]
		key := fmt.Sprintf("#%d %s", i, m.IntervalStart)
		if contract.NormalizeMonthKey(m.IntervalStart) != contract.NormalizeMonthKey(r.IntervalStart) {
			result.Mismatches = append(result.Mismatches, schema.Mismatch{
				Metric: metric, Key: key, Field: "interval_start",
				Detail: fmt.Sprintf("%s != %s", m.IntervalStart, r.IntervalStart),
			})
			continue
		}
		checks := []struct {
			field    string
			mem, rel float64
			allowed  float64
		}{
			{"sum", m.Sum, r.Sum, tol.Sum},
			{"average", m.Average, r.Average, tol.Average},
			{"p75", float64(m.P75), float64(r.P75), float64(tol.P75)},
			{"std", float64(m.Stdev), float64(r.Stdev), float64(tol.Stdev)},
			{"count", float64(m.Count), float64(r.Count), countTol},
		}
		for _, c := range checks {
			if !within(c.mem, c.rel, c.allowed) {
				result.Mismatches = append(result.Mismatches, schema.Mismatch{
					Metric: metric, Key: key, Field: c.field,
					Memory: c.mem, Relational: c.rel, Allowed: c.allowed,
				})
			}
		}
	}
	return result
}

// CompareChangeFailure matches monthly rates by normalized month key.
func CompareChangeFailure(memory, relational []schema.ChangeFailureStat, tol Tolerance) schema.MetricParity {
	result := schema.MetricParity{
		Metric:         schema.MetricChangeFailure,
		MemoryRows:     len(memory),
		RelationalRows: len(relational),
		Mismatches:     []schema.Mismatch{},
	}

	rel := make(map[string]schema.ChangeFailureStat, len(relational))
	for _, r := range relational {
		rel[contract.NormalizeMonthKey(r.Month)] = r
	}
	for _, m := range memory {
		key := contract.NormalizeMonthKey(m.Month)
		r, ok := rel[key]
		if !ok {
			result.Mismatches = append(result.Mismatches, missingMonth(schema.MetricChangeFailure, key, "relational"))
			continue
		}
		delete(rel, key)
		if !within(m.Rate, r.Rate, tol.Rate) {
			result.Mismatches = append(result.Mismatches, schema.Mismatch{
				Metric: schema.MetricChangeFailure, Key: key, Field: "rate",
				Memory: m.Rate, Relational: r.Rate, Allowed: tol.Rate,
			})
		}
	}
	for _, key := range sortedKeys(rel) {
		result.Mismatches = append(result.Mismatches, missingMonth(schema.MetricChangeFailure, key, "memory"))
	}
	return result
}

// CompareActiveAuthors matches monthly author counts exactly.
func CompareActiveAuthors(memory, relational []schema.ActiveAuthorStat) schema.MetricParity {
	result := schema.MetricParity{
		Metric:         schema.MetricActiveAuthors,
		MemoryRows:     len(memory),
		RelationalRows: len(relational),
		Mismatches:     []schema.Mismatch{},
	}

	rel := make(map[string]schema.ActiveAuthorStat, len(relational))
	for _, r := range relational {
		rel[contract.NormalizeMonthKey(r.Month)] = r
	}
	for _, m := range memory {
		key := contract.NormalizeMonthKey(m.Month)
		r, ok := rel[key]
		if !ok {
			result.Mismatches = append(result.Mismatches, missingMonth(schema.MetricActiveAuthors, key, "relational"))
			continue
		}
		delete(rel, key)
		if m.Authors != r.Authors {
			result.Mismatches = append(result.Mismatches, schema.Mismatch{
				Metric: schema.MetricActiveAuthors, Key: key, Field: "authors",
				Memory: float64(m.Authors), Relational: float64(r.Authors),
			})
		}
	}
	for _, key := range sortedKeys(rel) {
		result.Mismatches = append(result.Mismatches, missingMonth(schema.MetricActiveAuthors, key, "memory"))
	}
	return result
}

// Run computes every metric with both engines and compares them.
// Errors come only from the engines themselves.
func Run(ctx context.Context, commits []schema.CommitRecord, memory, relational contract.Calculator, bucketSize int, logger logrus.FieldLogger) (schema.ComparisonResult, error) {
	var result schema.ComparisonResult
	memOut, err := collect(ctx, memory, commits, bucketSize)
	if err != nil {
		return result, fmt.Errorf("memory engine failed: %w", err)
	}
	relOut, err := collect(ctx, relational, commits, bucketSize)
	if err != nil {
		return result, fmt.Errorf("relational engine failed: %w", err)
	}

	tol := DefaultTolerance()
	ties := HasDuplicateTimestamps(commits)
	band := MonthShiftBand(tol, memOut.Deltas)
	fixedTol := tol
	if ties {
		fixedTol = band
	}

	report := schema.ParityReport{
		Commits:             len(commits),
		BucketSize:          bucketSize,
		DuplicateTimestamps: ties,
		Metrics: []schema.MetricParity{
			CompareDeltas(memOut.Deltas, relOut.Deltas, tol, ties),
			CompareBuckets(schema.MetricFixedBucket, memOut.FixedBucket, relOut.FixedBucket, fixedTol, ties),
			CompareBuckets(schema.MetricByMonth, memOut.ByMonth, relOut.ByMonth, band, true),
			CompareChangeFailure(memOut.ChangeFailure, relOut.ChangeFailure, tol),
			CompareActiveAuthors(memOut.ActiveAuthors, relOut.ActiveAuthors),
		},
	}

	for _, m := range report.Metrics {
		entry := logger.WithFields(logrus.Fields{
			"metric":     m.Metric,
			"memory":     m.MemoryRows,
			"relational": m.RelationalRows,
			"relaxed":    m.Relaxed,
		})
		if m.OK() {
			entry.Debug("engines agree")
			continue
		}
		entry.WithField("mismatches", len(m.Mismatches)).Warn("engines diverge")
	}

	result.Report = report
	result.Memory = memOut
	result.Relational = relOut
	return result, nil
}

// collect runs every metric of one engine.
func collect(ctx context.Context, calc contract.Calculator, commits []schema.CommitRecord, bucketSize int) (schema.EngineOutputs, error) {
	var out schema.EngineOutputs
	var err error
	if out.Deltas, err = calc.Deltas(ctx, commits); err != nil {
		return out, err
	}
	if out.FixedBucket, err = calc.FixedBucketStats(ctx, commits, bucketSize); err != nil {
		return out, err
	}
	if out.ByMonth, err = calc.ByMonthStats(ctx, commits); err != nil {
		return out, err
	}
	if out.ChangeFailure, err = calc.ChangeFailureRates(ctx, commits); err != nil {
		return out, err
	}
	if out.ActiveAuthors, err = calc.ActiveAuthors(ctx, commits); err != nil {
		return out, err
	}
	return out, nil
}

func within(a, b, allowed float64) bool {
	return math.Abs(a-b) <= allowed
}

func rowCountMismatch(metric string, memory, relational int) schema.Mismatch {
	return schema.Mismatch{
		Metric: metric, Key: "*", Field: "rows",
		Memory: float64(memory), Relational: float64(relational),
	}
}

func missingMonth(metric, key, side string) schema.Mismatch {
	return schema.Mismatch{
		Metric: metric, Key: key, Field: "month",
		Detail: "missing from " + side + " engine",
	}
}

func sortedDeltas(deltas []schema.Delta) []schema.Delta {
	out := make([]schema.Delta, len(deltas))
	copy(out, deltas)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CommittedAt != out[j].CommittedAt {
			return out[i].CommittedAt < out[j].CommittedAt
		}
		return out[i].CycleMinutes < out[j].CycleMinutes
	})
	return out
}

func sortedMinutes(deltas []schema.Delta) []float64 {
	out := make([]float64, len(deltas))
	for i, d := range deltas {
		out[i] = d.CycleMinutes
	}
	sort.Float64s(out)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
