package cmd

import (
	"github.com/huangsam/gitlake/core"
	"github.com/huangsam/gitlake/internal/contract"
	"github.com/spf13/cobra"
)

// compareCmd runs both engines and checks that they agree.
var compareCmd = &cobra.Command{
	Use:   "compare [repo-path]",
	Short: "Run the in-memory and SQL engines side by side and report differences.",
	Long: `Compute every metric with both engines on the same commits and compare them.

Values must match within floating-point noise. Two known divergences get a
bounded tolerance and are reported as Relaxed instead of Match:
- commits sharing a timestamp may be ordered differently, so deltas are
  compared as a multiset and bucket counts may differ by one
- month labels may move a delta to a neighbouring month, so monthly
  statistics may differ by up to the largest delta

With --out-dir the per-engine results are written as CSV files that can be
diffed directly. --chart adds an HTML page plotting both engines.

Examples:
  # Quick parity check of the current repository
  gitlake compare --bucket-size 100

  # Write a bundle with charts
  gitlake compare --out-dir ./compare_output --chart`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCompare(rootCtx, cfg, logger); err != nil {
			contract.LogFatal("Cannot compare engines", err)
		}
	},
}
