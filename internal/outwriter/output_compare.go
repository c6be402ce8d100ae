package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/gitlake/internal/contract"
	"github.com/huangsam/gitlake/internal/parquet"
	"github.com/huangsam/gitlake/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var mismatchHeader = []string{"metric", "key", "field", "memory", "relational", "allowed", "detail"}

// WriteComparisonResults outputs the parity report, dispatching based on the output format configured.
func WriteComparisonResults(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, result); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeMismatchCSV(w, result.Report); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return parquet.Write(w, parquet.ConvertMismatches(result.Report))
	default:
		return writeComparisonTable(w, result.Report, cfg, fmtFloat, duration)
	}
	return nil
}

// writeMismatchCSV writes one row per mismatch across every metric.
func writeMismatchCSV(w io.Writer, report schema.ParityReport) error {
	return writeCSVWithHeader(w, mismatchHeader, func(cw *csv.Writer) error {
		for _, m := range report.Metrics {
			for _, mm := range m.Mismatches {
				row := []string{
					mm.Metric,
					mm.Key,
					mm.Field,
					strconv.FormatFloat(mm.Memory, 'f', -1, 64),
					strconv.FormatFloat(mm.Relational, 'f', -1, 64),
					strconv.FormatFloat(mm.Allowed, 'f', -1, 64),
					mm.Detail,
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeComparisonTable writes the per-metric verdicts followed by any mismatches.
func writeComparisonTable(w io.Writer, report schema.ParityReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Memory", "SQL", "Mismatches", "Status"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	var mismatches [][]string
	diverged := 0
	detailWidth := getMaxDetailWidth(cfg)
	for _, m := range report.Metrics {
		label := contract.GetPlainLabel(m.OK(), m.Relaxed)
		if cfg.UseColors {
			label = contract.GetColorLabel(m.OK(), m.Relaxed)
		}
		if !m.OK() {
			diverged++
		}
		data = append(data, []string{
			m.Metric,
			strconv.Itoa(m.MemoryRows),
			strconv.Itoa(m.RelationalRows),
			strconv.Itoa(len(m.Mismatches)),
			label,
		})
		for _, mm := range m.Mismatches {
			mismatches = append(mismatches, []string{
				mm.Metric,
				contract.TruncateText(mm.Key, detailWidth),
				mm.Field,
				fmtFloat(mm.Memory),
				fmtFloat(mm.Relational),
				fmtFloat(mm.Allowed),
				contract.TruncateText(mm.Detail, detailWidth),
			})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(mismatches) > 0 {
		detail := tablewriter.NewWriter(w)
		detail.Header([]string{"Metric", "Key", "Field", "Memory", "SQL", "Allowed", "Detail"})
		detail.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		if err := detail.Bulk(mismatches); err != nil {
			return err
		}
		if err := detail.Render(); err != nil {
			return err
		}
	}

	_, muted := colorizers(cfg.UseColors)
	dupes := "no"
	if report.DuplicateTimestamps {
		dupes = "yes"
	}
	if _, err := fmt.Fprintf(w, "Commits: %d, bucket size: %d, duplicate timestamps: %s\n", report.Commits, report.BucketSize, muted(dupes)); err != nil {
		return err
	}
	verdict := "Engines agree on every metric"
	if diverged > 0 {
		verdict = fmt.Sprintf("Engines diverge on %d of %d metrics", diverged, len(report.Metrics))
	}
	if _, err := fmt.Fprintln(w, verdict); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Compared in %v. Repo ID: %s\n", duration, report.RepoID)
	return err
}
