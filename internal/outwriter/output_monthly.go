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

// highRateThreshold is the change-failure percentage highlighted in tables.
const highRateThreshold = 30.0

var failureHeader = []string{"month", "rate"}

// WriteFailureResults outputs change-failure rates, dispatching based on the output format configured.
func WriteFailureResults(w io.Writer, result schema.FailureResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, result); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeFailureCSV(w, result.Months); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return parquet.Write(w, parquet.ConvertChangeFailure(result.Months))
	default:
		return writeFailureTable(w, result, cfg, duration)
	}
	return nil
}

// writeFailureCSV writes one month,rate row per month.
func writeFailureCSV(w io.Writer, months []schema.ChangeFailureStat) error {
	return writeCSVWithHeader(w, failureHeader, func(cw *csv.Writer) error {
		for _, m := range months {
			if err := cw.Write([]string{m.Month, strconv.FormatFloat(m.Rate, 'f', 1, 64)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeFailureTable generates and writes the human-readable change-failure table.
func writeFailureTable(w io.Writer, result schema.FailureResult, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Month", "Rate (%)", "Fixes", "Commits"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	highlight, _ := colorizers(cfg.UseColors)
	var data [][]string
	var fixes, total int
	for _, m := range result.Months {
		fixes += m.FixCommits
		total += m.TotalCommits
		rate := fmt.Sprintf("%.1f", m.Rate)
		if m.Rate >= highRateThreshold {
			rate = highlight(rate)
		}
		data = append(data, []string{
			m.Month,
			rate,
			strconv.Itoa(m.FixCommits),
			strconv.Itoa(m.TotalCommits),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d months, %d fix commits out of %d\n", len(result.Months), fixes, total); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Computed in %v with the %s engine. Repo ID: %s\n", duration, result.Engine, result.RepoID)
	return err
}

// WriteAuthorsResults outputs active authors per month, dispatching based on the output format configured.
func WriteAuthorsResults(w io.Writer, result schema.AuthorsResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, result); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		err := writeCSVWithHeader(w, []string{"month", "authors"}, func(cw *csv.Writer) error {
			for _, m := range result.Months {
				if err := cw.Write([]string{m.Month, strconv.Itoa(m.Authors)}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return parquet.Write(w, parquet.ConvertActiveAuthors(result.Months))
	default:
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Month", "Authors"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		var data [][]string
		for _, m := range result.Months {
			data = append(data, []string{m.Month, strconv.Itoa(m.Authors)})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Computed %d months in %v with the %s engine. Repo ID: %s\n", len(result.Months), duration, result.Engine, result.RepoID)
		return err
	}
	return nil
}
