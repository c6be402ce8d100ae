// Package parquet provides data structures and functions for exporting gitlake
// data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"

	"github.com/huangsam/gitlake/schema"
	"github.com/parquet-go/parquet-go"
)

// Commit is one row of the lake commits table.
type Commit struct {
	// RepoID is the repository tag the row was loaded under
	RepoID string `parquet:"repo_id,snappy,dict"`

	// SHA is the commit hash
	SHA string `parquet:"sha,snappy"`

	// AuthorEmail identifies the author
	AuthorEmail string `parquet:"author_email,snappy,dict"`

	// CommittedDate is the commit time in unix seconds
	CommittedDate int64 `parquet:"committed_date,snappy"`

	// Message is the commit message (nullable)
	Message *string `parquet:"message,optional,snappy"`
}

// Delta is one cycle-time delta.
type Delta struct {
	CommittedDate int64   `parquet:"committed_date,snappy"`
	CycleMinutes  float64 `parquet:"cycle_minutes,snappy"`
}

// Bucket is the statistics of one bucket of deltas.
type Bucket struct {
	IntervalStart string  `parquet:"interval_start,snappy,dict"`
	Sum           float64 `parquet:"sum,snappy"`
	Average       float64 `parquet:"average,snappy"`
	P75           int64   `parquet:"p75,snappy"`
	Std           int64   `parquet:"std,snappy"`
	Count         int32   `parquet:"n_deltas,snappy"`
}

// ChangeFailure is the change-failure rate of one month.
type ChangeFailure struct {
	Month        string  `parquet:"month,snappy,dict"`
	Rate         float64 `parquet:"rate,snappy"`
	FixCommits   int32   `parquet:"fix_commits,snappy"`
	TotalCommits int32   `parquet:"total_commits,snappy"`
}

// ActiveAuthors is the number of distinct authors of one month.
type ActiveAuthors struct {
	Month   string `parquet:"month,snappy,dict"`
	Authors int32  `parquet:"authors,snappy"`
}

// Mismatch is one value that differs between the two engines.
type Mismatch struct {
	Metric     string  `parquet:"metric,snappy,dict"`
	Key        string  `parquet:"key,snappy"`
	Field      string  `parquet:"field,snappy,dict"`
	Memory     float64 `parquet:"memory,snappy"`
	Relational float64 `parquet:"relational,snappy"`
	Allowed    float64 `parquet:"allowed,snappy"`
	Detail     string  `parquet:"detail,snappy"`
}

// Write encodes rows into w with a schema inferred from T's struct tags.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet data: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Read decodes every row of a Parquet file.
func Read[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return rows, nil
}

// ConvertCommits converts lake rows for Parquet export.
func ConvertCommits(records []schema.LakeCommitRecord) []Commit {
	result := make([]Commit, len(records))
	for i, r := range records {
		result[i] = Commit{
			RepoID:        r.RepoID,
			SHA:           r.ID,
			AuthorEmail:   r.AuthorEmail,
			CommittedDate: r.CommittedAt,
			Message:       r.Message,
		}
	}
	return result
}

// ConvertDeltas converts deltas for Parquet export.
func ConvertDeltas(deltas []schema.Delta) []Delta {
	result := make([]Delta, len(deltas))
	for i, d := range deltas {
		result[i] = Delta{CommittedDate: d.CommittedAt, CycleMinutes: d.CycleMinutes}
	}
	return result
}

// ConvertBuckets converts bucket statistics for Parquet export.
func ConvertBuckets(stats []schema.BucketStat) []Bucket {
	result := make([]Bucket, len(stats))
	for i, s := range stats {
		result[i] = Bucket{
			IntervalStart: s.IntervalStart,
			Sum:           s.Sum,
			Average:       s.Average,
			P75:           s.P75,
			Std:           s.Stdev,
			Count:         int32(s.Count),
		}
	}
	return result
}

// ConvertChangeFailure converts monthly rates for Parquet export.
func ConvertChangeFailure(stats []schema.ChangeFailureStat) []ChangeFailure {
	result := make([]ChangeFailure, len(stats))
	for i, s := range stats {
		result[i] = ChangeFailure{
			Month:        s.Month,
			Rate:         s.Rate,
			FixCommits:   int32(s.FixCommits),
			TotalCommits: int32(s.TotalCommits),
		}
	}
	return result
}

// ConvertActiveAuthors converts monthly author counts for Parquet export.
func ConvertActiveAuthors(stats []schema.ActiveAuthorStat) []ActiveAuthors {
	result := make([]ActiveAuthors, len(stats))
	for i, s := range stats {
		result[i] = ActiveAuthors{Month: s.Month, Authors: int32(s.Authors)}
	}
	return result
}

// ConvertMismatches flattens the mismatches of a parity report for Parquet export.
func ConvertMismatches(report schema.ParityReport) []Mismatch {
	var result []Mismatch
	for _, m := range report.Metrics {
		for _, mm := range m.Mismatches {
			result = append(result, Mismatch{
				Metric:     mm.Metric,
				Key:        mm.Key,
				Field:      mm.Field,
				Memory:     mm.Memory,
				Relational: mm.Relational,
				Allowed:    mm.Allowed,
				Detail:     mm.Detail,
			})
		}
	}
	return result
}
