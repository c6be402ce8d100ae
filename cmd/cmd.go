// Package cmd defines the command-line interface for gitlake.
package cmd

import (
	"github.com/huangsam/gitlake/internal/contract"
	"github.com/huangsam/gitlake/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(cycleCmd)
	rootCmd.AddCommand(failureCmd)
	rootCmd.AddCommand(authorsCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(lakeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the lake subcommands to the parent lake command
	lakeCmd.AddCommand(lakeLoadCmd)
	lakeCmd.AddCommand(lakeStatusCmd)
	lakeCmd.AddCommand(lakeClearCmd)
	lakeCmd.AddCommand(lakeExportCmd)
	lakeCmd.AddCommand(lakeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("start", "", "Start date in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("end", "", "End date in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("engine", string(schema.MemoryEngine), "Computation engine: memory or sql")
	rootCmd.PersistentFlags().Int("bucket-size", contract.DefaultBucketSize, "Number of deltas per fixed bucket")
	rootCmd.PersistentFlags().String("repo-id", "", "Repository tag for lake rows (derived from the origin remote when empty)")
	rootCmd.PersistentFlags().String("lake-backend", string(schema.SQLiteBackend), "Lake backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("lake-db-connect", "", "Database connection string for the lake (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of cycleCmd to Viper
	cycleCmd.Flags().String("by", string(schema.FixedMode), "Grouping: deltas or fixed or month")
	if err := viper.BindPFlags(cycleCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cycle flags", err)
	}

	// Bind all flags of compareCmd to Viper
	compareCmd.Flags().String("out-dir", "", "Directory for the per-engine CSV bundle")
	compareCmd.Flags().Bool("chart", false, "Also write charts.html into --out-dir")
	if err := viper.BindPFlags(compareCmd.Flags()); err != nil {
		contract.LogFatal("Error binding compare flags", err)
	}

	// Bind all flags of lakeMigrateCmd to Viper
	lakeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(lakeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding lake migrate flags", err)
	}
}
