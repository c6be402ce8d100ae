package cmd

import (
	"strings"

	"github.com/huangsam/gitlake/core"
	"github.com/huangsam/gitlake/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// lakeSetup loads minimal configuration needed for lake maintenance.
// Maintenance commands do not need a repository, so only an explicit
// --repo-id narrows them; nothing is derived.
func lakeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, err := contract.ParseLakeBackend(viper.GetString("lake-backend"))
	if err != nil {
		return err
	}
	connStr := viper.GetString("lake-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.LakeBackend = backend
	cfg.LakeDBConnect = connStr
	cfg.RepoID = strings.TrimSpace(viper.GetString("repo-id"))
	cfg.OutputFile = viper.GetString("output-file")
	cfg.TargetVersion = viper.GetInt("target-version")

	return setupLogger(viper.GetString("log-level"))
}

// lakeSetupWrapper wraps lakeSetup to provide PreRunE for lake commands.
func lakeSetupWrapper(_ *cobra.Command, _ []string) error {
	return lakeSetup()
}

// lakeCmd focused on the persistent commit lake.
//
// Note: Maintenance subcommands use minimal initialization (lakeSetup) instead of
// the full sharedSetup. Only load reads a repository.
var lakeCmd = &cobra.Command{
	Use:   "lake",
	Short: "Manage the persistent commit lake",
	Long: `Manage the relational commit lake used by the SQL engine.

Metric commands load commits into a private in-memory lake on every run.
A persistent lake keeps commits of many repositories side by side, each
tagged by its repository ID, so BI tools can query them directly.

Supported backends: SQLite (default, ~/.gitlake_lake.db), MySQL, PostgreSQL

Subcommands:
  load    - Replace one repository's rows with its current history
  status  - Show row counts per repository
  export  - Export rows to Parquet
  clear   - Remove rows of one repository or all of them
  migrate - Run database schema migrations

Examples:
  gitlake lake load ~/src/project
  gitlake lake status
  gitlake lake export --output-file commits.parquet`,
}

// lakeLoadCmd loads one repository into the persistent lake.
var lakeLoadCmd = &cobra.Command{
	Use:   "load [repo-path]",
	Short: "Load a repository's commit history into the persistent lake",
	Long: `Read the repository's commits and replace the rows stored under its repository ID.

Loading is idempotent: rows of other repositories are never touched and
loading the same history twice leaves the same rows.

Examples:
  gitlake lake load
  gitlake lake load ../other --repo-id team:other
  GITLAKE_LAKE_BACKEND=postgresql GITLAKE_LAKE_DB_CONNECT=postgres://... gitlake lake load`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLakeLoad(rootCtx, cfg, logger); err != nil {
			contract.LogFatal("Failed to load lake", err)
		}
	},
}

// lakeStatusCmd shows lake status.
var lakeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display lake row counts and connection details",
	Long: `Show the backend, whether it is reachable, and the number of rows per repository.

Examples:
  gitlake lake status`,
	PreRunE: lakeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLakeStatus(rootCtx, cfg, logger); err != nil {
			contract.LogFatal("Failed to get lake status", err)
		}
	},
}

// lakeClearCmd clears lake rows.
var lakeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove lake rows of one repository or all of them",
	Long: `Delete stored commits. With --repo-id only that repository's rows are removed.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  gitlake lake clear --repo-id local:project
  gitlake lake clear`,
	PreRunE: lakeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLakeClear(rootCtx, cfg, logger); err != nil {
			contract.LogFatal("Failed to clear lake", err)
		}
	},
}

// lakeExportCmd exports lake rows to a Parquet file.
var lakeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export lake rows to Parquet for BI tools and analytics",
	Long: `Export stored commits to a Parquet file with columns
repo_id, sha, author_email, committed_date, message.

Requires: --output-file parameter

Examples:
  gitlake lake export --output-file commits.parquet
  duckdb -c "SELECT repo_id, count(*) FROM read_parquet('commits.parquet') GROUP BY 1"`,
	PreRunE: lakeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLakeExport(rootCtx, cfg, logger); err != nil {
			contract.LogFatal("Failed to export lake", err)
		}
	},
}

// lakeMigrateCmd runs database migrations for the lake.
var lakeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage lake schema versions.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  gitlake lake migrate
  gitlake lake migrate --target-version 0`,
	PreRunE: lakeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLakeMigrate(rootCtx, cfg, logger); err != nil {
			contract.LogFatal("Failed to migrate lake", err)
		}
	},
}
