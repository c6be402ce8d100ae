package cmd

import (
	"github.com/huangsam/gitlake/core"
	"github.com/huangsam/gitlake/internal/contract"
	"github.com/spf13/cobra"
)

// cycleCmd computes cycle-time deltas and their bucket statistics.
var cycleCmd = &cobra.Command{
	Use:   "cycle [repo-path]",
	Short: "Show per-author cycle time, raw or bucketed.",
	Long: `Compute the gap between consecutive commits of each author and summarize it.

Groupings:
- deltas  every gap in minutes, tagged with the newer commit's time
- fixed   consecutive groups of --bucket-size gaps in time order
- month   one group per calendar month of the newer commit

Every group reports the sum, the average, the 75th percentile and the
sample standard deviation in minutes.

Examples:
  # Buckets of 500 deltas using the in-memory engine
  gitlake cycle --bucket-size 500

  # Monthly statistics from the SQL engine
  gitlake cycle --by month --engine sql

  # Raw deltas as CSV
  gitlake cycle --by deltas --output csv --output-file deltas.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCycle(rootCtx, cfg, logger); err != nil {
			contract.LogFatal("Cannot compute cycle time", err)
		}
	},
}

// failureCmd computes the monthly change-failure rate.
var failureCmd = &cobra.Command{
	Use:   "failure [repo-path]",
	Short: "Show the monthly share of fix commits.",
	Long: `Compute the change-failure rate per calendar month.

A commit counts as a fix when its message contains one of: revert, hotfix,
bugfix, bug, fix, problem, issue (case-insensitive). Commits without a
readable message never count as fixes.

Examples:
  # Change-failure rate over the last year
  gitlake failure --start "1 year ago"

  # Same numbers from the SQL engine as JSON
  gitlake failure --engine sql --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFailure(rootCtx, cfg, logger); err != nil {
			contract.LogFatal("Cannot compute change-failure rate", err)
		}
	},
}

// authorsCmd counts active authors per month.
var authorsCmd = &cobra.Command{
	Use:   "authors [repo-path]",
	Short: "Show the number of distinct authors per month.",
	Long: `Count distinct author emails per calendar month.

Examples:
  gitlake authors
  gitlake authors --engine sql --output csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAuthors(rootCtx, cfg, logger); err != nil {
			contract.LogFatal("Cannot count active authors", err)
		}
	},
}
