package parquet

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/gitlake/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"commit", new(Commit), []string{"repo_id", "sha", "author_email", "committed_date", "message"}},
		{"delta", new(Delta), []string{"committed_date", "cycle_minutes"}},
		{"bucket", new(Bucket), []string{"interval_start", "sum", "average", "p75", "std", "n_deltas"}},
		{"change failure", new(ChangeFailure), []string{"month", "rate", "fix_commits", "total_commits"}},
		{"active authors", new(ActiveAuthors), []string{"month", "authors"}},
		{"mismatch", new(Mismatch), []string{"metric", "key", "field", "memory", "relational", "allowed", "detail"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			require.NotNil(t, s)
			for _, colName := range tt.columns {
				_, ok := s.Lookup(colName)
				assert.True(t, ok, "Column %s should exist in schema", colName)
			}
		})
	}
}

func TestWriteFileRoundTripCommits(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "commits.parquet")
	message := "fix: guard nil"
	records := []schema.LakeCommitRecord{
		{ID: "a1", AuthorEmail: "a@x.com", CommittedAt: 1700000000, RepoID: "local:demo", Message: &message},
		{ID: "b2", AuthorEmail: "b@x.com", CommittedAt: 1700000600, RepoID: "local:demo"},
	}

	require.NoError(t, WriteFile(ConvertCommits(records), outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	rows, err := Read[Commit](outputPath)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a1", rows[0].SHA)
	assert.Equal(t, "local:demo", rows[0].RepoID)
	require.NotNil(t, rows[0].Message)
	assert.Equal(t, message, *rows[0].Message)
	assert.Nil(t, rows[1].Message)
	assert.Equal(t, int64(1700000600), rows[1].CommittedDate)
}

func TestWriteBuckets(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "buckets.parquet")
	stats := []schema.BucketStat{
		{IntervalStart: "2024-01", Sum: 10080, Average: 2520, P75: 3240, Stdev: 1379, Count: 4},
		{IntervalStart: "2024-02", Sum: 8640, Average: 2880, P75: 3600, Stdev: 1440, Count: 3},
	}
	require.NoError(t, WriteFile(ConvertBuckets(stats), outputPath))

	rows, err := Read[Bucket](outputPath)
	require.NoError(t, err)
	assert.Equal(t, ConvertBuckets(stats), rows)
}

func TestWriteToBuffer(t *testing.T) {
	var buf bytes.Buffer
	rows := ConvertChangeFailure([]schema.ChangeFailureStat{{Month: "2024-01", Rate: 33.3, FixCommits: 1, TotalCommits: 3}})
	require.NoError(t, Write(&buf, rows))
	assert.Equal(t, "PAR1", buf.String()[:4])
}

func TestWriteEmpty(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteFile(ConvertDeltas(nil), outputPath))

	rows, err := Read[Delta](outputPath)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteFileInvalidPath(t *testing.T) {
	err := WriteFile(ConvertActiveAuthors(nil), filepath.Join(t.TempDir(), "missing", "x.parquet"))
	assert.ErrorContains(t, err, "failed to create output file")
}

func TestConverters(t *testing.T) {
	deltas := ConvertDeltas([]schema.Delta{{CommittedAt: 5, CycleMinutes: 1.5, CommitID: "x"}})
	assert.Equal(t, []Delta{{CommittedDate: 5, CycleMinutes: 1.5}}, deltas)

	authors := ConvertActiveAuthors([]schema.ActiveAuthorStat{{Month: "2024-03", Authors: 4}})
	assert.Equal(t, []ActiveAuthors{{Month: "2024-03", Authors: 4}}, authors)
}

func TestConvertMismatches(t *testing.T) {
	report := schema.ParityReport{Metrics: []schema.MetricParity{
		{Metric: schema.MetricDeltas, Mismatches: []schema.Mismatch{}},
		{Metric: schema.MetricByMonth, Mismatches: []schema.Mismatch{
			{Metric: schema.MetricByMonth, Key: "#0 2024-01", Field: "sum", Memory: 10, Relational: 12, Allowed: 1},
		}},
	}}
	rows := ConvertMismatches(report)
	require.Len(t, rows, 1)
	assert.Equal(t, Mismatch{Metric: "by_month", Key: "#0 2024-01", Field: "sum", Memory: 10, Relational: 12, Allowed: 1}, rows[0])
	assert.Empty(t, ConvertMismatches(schema.ParityReport{}))
}
