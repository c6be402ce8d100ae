// Package outwriter has output and writer logic.
package outwriter

import (
	"io"
	"time"

	"github.com/huangsam/gitlake/internal/contract"
	"github.com/huangsam/gitlake/schema"
)

// PrintCycleResults writes cycle-time results to stdout or cfg.OutputFile.
func PrintCycleResults(result schema.CycleResult, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteCycleResults(w, result, cfg, duration)
	}, successMessage(cfg.Output))
}

// PrintFailureResults writes change-failure results to stdout or cfg.OutputFile.
func PrintFailureResults(result schema.FailureResult, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteFailureResults(w, result, cfg, duration)
	}, successMessage(cfg.Output))
}

// PrintAuthorsResults writes active-author results to stdout or cfg.OutputFile.
func PrintAuthorsResults(result schema.AuthorsResult, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteAuthorsResults(w, result, cfg, duration)
	}, successMessage(cfg.Output))
}

// PrintComparisonResults writes the parity report to stdout or cfg.OutputFile.
func PrintComparisonResults(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteComparisonResults(w, result, cfg, duration)
	}, successMessage(cfg.Output))
}
