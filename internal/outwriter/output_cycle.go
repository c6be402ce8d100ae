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

// Column headers shared by the CSV writers and the comparison bundle.
var (
	deltaHeader  = []string{"committed_date", "cycle_minutes"}
	bucketHeader = []string{"interval_start", "sum", "average", "p75", "std"}
)

// WriteCycleResults outputs cycle-time results, dispatching based on the output format configured.
func WriteCycleResults(w io.Writer, result schema.CycleResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	deltasOnly := result.Mode == schema.DeltasMode

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, result); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		var err error
		if deltasOnly {
			err = writeDeltasCSV(w, result.Deltas)
		} else {
			err = writeBucketsCSV(w, result.Buckets)
		}
		if err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if deltasOnly {
			return parquet.Write(w, parquet.ConvertDeltas(result.Deltas))
		}
		return parquet.Write(w, parquet.ConvertBuckets(result.Buckets))
	default:
		if deltasOnly {
			return writeDeltaTable(w, result, fmtFloat, duration)
		}
		return writeBucketTable(w, result, fmtFloat, intFmt, duration)
	}
	return nil
}

// writeDeltasCSV writes deltas with UTC timestamps and two-decimal minutes.
func writeDeltasCSV(w io.Writer, deltas []schema.Delta) error {
	return writeCSVWithHeader(w, deltaHeader, func(cw *csv.Writer) error {
		for _, d := range deltas {
			row := []string{
				formatTimestamp(d.CommittedAt),
				strconv.FormatFloat(d.CycleMinutes, 'f', 2, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeBucketsCSV writes bucket statistics in their canonical column order.
func writeBucketsCSV(w io.Writer, stats []schema.BucketStat) error {
	return writeCSVWithHeader(w, bucketHeader, func(cw *csv.Writer) error {
		for _, s := range stats {
			row := []string{
				s.IntervalStart,
				strconv.FormatFloat(s.Sum, 'f', -1, 64),
				strconv.FormatFloat(s.Average, 'f', 2, 64),
				strconv.FormatInt(s.P75, 10),
				strconv.FormatInt(s.Stdev, 10),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeDeltaTable generates and writes the human-readable delta table.
func writeDeltaTable(w io.Writer, result schema.CycleResult, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Committed", "Cycle (min)"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	var total float64
	for i, d := range result.Deltas {
		total += d.CycleMinutes
		data = append(data, []string{
			strconv.Itoa(i + 1),
			formatTimestamp(d.CommittedAt),
			fmtFloat(d.CycleMinutes),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d deltas, total %s minutes\n", len(result.Deltas), fmtFloat(total)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Computed in %v with the %s engine. Repo ID: %s\n", duration, result.Engine, result.RepoID)
	return err
}

// writeBucketTable generates and writes the human-readable bucket table.
func writeBucketTable(w io.Writer, result schema.CycleResult, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Interval", "Sum", "Average", "P75", "Std", "Deltas"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	var deltas int
	for i, s := range result.Buckets {
		deltas += s.Count
		data = append(data, []string{
			strconv.Itoa(i + 1),
			s.IntervalStart,
			fmtFloat(s.Sum),
			fmtFloat(s.Average),
			fmt.Sprintf(intFmt, s.P75),
			fmt.Sprintf(intFmt, s.Stdev),
			fmt.Sprintf(intFmt, s.Count),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	grouping := "calendar month"
	if result.Mode != schema.MonthMode {
		grouping = fmt.Sprintf("buckets of %d", result.BucketSize)
	}
	if _, err := fmt.Fprintf(w, "Showing %d buckets (%s) over %d deltas\n", len(result.Buckets), grouping, deltas); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Computed in %v with the %s engine. Repo ID: %s\n", duration, result.Engine, result.RepoID)
	return err
}

// formatTimestamp renders unix seconds as RFC3339 in UTC.
func formatTimestamp(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
