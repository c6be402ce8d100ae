package outwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/gitlake/schema"
)

// Bundle file names, suffixed per engine.
const (
	memorySuffix = "memory"
	sqlSuffix    = "sql"
	manifestFile = "manifest.txt"
	chartsFile   = "charts.html"
)

// WriteCompareBundle writes per-engine CSVs and a manifest into dir so the two
// engines can be diffed file by file. With chart set it also writes charts.html.
func WriteCompareBundle(dir string, result schema.ComparisonResult, chart bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create bundle directory: %w", err)
	}

	engines := []struct {
		suffix  string
		outputs schema.EngineOutputs
	}{
		{memorySuffix, result.Memory},
		{sqlSuffix, result.Relational},
	}
	for _, e := range engines {
		files := []struct {
			name  string
			write func(io.Writer) error
		}{
			{"deltas", func(w io.Writer) error { return writeDeltasCSV(w, sortDeltas(e.outputs.Deltas)) }},
			{"fixed_bucket", func(w io.Writer) error { return writeBucketsCSV(w, e.outputs.FixedBucket) }},
			{"by_month", func(w io.Writer) error { return writeBucketsCSV(w, e.outputs.ByMonth) }},
			{"change_failure", func(w io.Writer) error { return writeFailureCSV(w, e.outputs.ChangeFailure) }},
		}
		for _, f := range files {
			path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", f.name, e.suffix))
			if err := createAndWrite(path, f.write); err != nil {
				return err
			}
		}
	}

	if chart {
		if err := createAndWrite(filepath.Join(dir, chartsFile), func(w io.Writer) error {
			return renderCompareCharts(w, result)
		}); err != nil {
			return err
		}
	}

	return createAndWrite(filepath.Join(dir, manifestFile), func(w io.Writer) error {
		_, err := io.WriteString(w, manifest(result.Report, chart))
		return err
	})
}

// createAndWrite creates path and hands it to write.
func createAndWrite(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return file.Close()
}

// sortDeltas returns a copy ordered by timestamp then minutes.
func sortDeltas(deltas []schema.Delta) []schema.Delta {
	sorted := slices.Clone(deltas)
	slices.SortStableFunc(sorted, func(a, b schema.Delta) int {
		if a.CommittedAt != b.CommittedAt {
			if a.CommittedAt < b.CommittedAt {
				return -1
			}
			return 1
		}
		switch {
		case a.CycleMinutes < b.CycleMinutes:
			return -1
		case a.CycleMinutes > b.CycleMinutes:
			return 1
		}
		return 0
	})
	return sorted
}

// manifest lists the bundle contents and the parity verdict per metric.
func manifest(report schema.ParityReport, chart bool) string {
	var b strings.Builder
	b.WriteString("Memory vs SQL engine comparison output.\n")
	b.WriteString("Compare with: diff <file>_memory.csv <file>_sql.csv\n\n")
	fmt.Fprintf(&b, "Repo ID: %s\nCommits: %d\nBucket size: %d\n\n", report.RepoID, report.Commits, report.BucketSize)
	b.WriteString("CSVs:\n")
	for _, name := range []string{"deltas", "fixed_bucket", "by_month", "change_failure"} {
		fmt.Fprintf(&b, "  %s_%s.csv, %s_%s.csv\n", name, memorySuffix, name, sqlSuffix)
	}
	if chart {
		fmt.Fprintf(&b, "\nCharts:\n  %s\n", chartsFile)
	}
	b.WriteString("\nParity:\n")
	for _, m := range report.Metrics {
		status := "match"
		switch {
		case !m.OK():
			status = fmt.Sprintf("mismatch (%d)", len(m.Mismatches))
		case m.Relaxed:
			status = "match (relaxed)"
		}
		fmt.Fprintf(&b, "  %s: %s\n", m.Metric, status)
	}
	return b.String()
}
