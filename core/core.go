// Package core has the in-memory metrics engine and the run orchestration
// shared by the CLI and the MCP server.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/gitlake/core/agg"
	"github.com/huangsam/gitlake/internal/contract"
	"github.com/huangsam/gitlake/internal/lake"
	"github.com/huangsam/gitlake/internal/outwriter"
	"github.com/huangsam/gitlake/internal/parity"
	"github.com/huangsam/gitlake/internal/parquet"
	"github.com/huangsam/gitlake/schema"
	"github.com/sirupsen/logrus"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, logger logrus.FieldLogger) error

// ExecuteCycle computes cycle-time deltas or bucket statistics and prints them.
func ExecuteCycle(ctx context.Context, cfg *contract.Config, logger logrus.FieldLogger) error {
	start := time.Now()
	result, err := GetCycleResults(ctx, cfg, contract.NewLocalGitClient(), logger)
	if err != nil {
		return err
	}
	return outwriter.PrintCycleResults(result, cfg, time.Since(start))
}

// ExecuteFailure computes the monthly change-failure rate and prints it.
func ExecuteFailure(ctx context.Context, cfg *contract.Config, logger logrus.FieldLogger) error {
	start := time.Now()
	result, err := GetFailureResults(ctx, cfg, contract.NewLocalGitClient(), logger)
	if err != nil {
		return err
	}
	return outwriter.PrintFailureResults(result, cfg, time.Since(start))
}

// ExecuteAuthors computes the monthly active authors and prints them.
func ExecuteAuthors(ctx context.Context, cfg *contract.Config, logger logrus.FieldLogger) error {
	start := time.Now()
	result, err := GetAuthorsResults(ctx, cfg, contract.NewLocalGitClient(), logger)
	if err != nil {
		return err
	}
	return outwriter.PrintAuthorsResults(result, cfg, time.Since(start))
}

// ExecuteCompare runs both engines on the same commits and prints the parity report.
// With an output directory it also writes the per-engine bundle.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, logger logrus.FieldLogger) error {
	start := time.Now()
	result, err := GetCompareResults(ctx, cfg, contract.NewLocalGitClient(), logger)
	if err != nil {
		return err
	}
	if cfg.OutDir != "" {
		if err := outwriter.WriteCompareBundle(cfg.OutDir, result, cfg.Chart); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote comparison bundle to %s\n", cfg.OutDir)
	}
	return outwriter.PrintComparisonResults(result, cfg, time.Since(start))
}

// GetCycleResults loads commits and runs the configured cycle-time metric.
func GetCycleResults(ctx context.Context, cfg *contract.Config, client contract.GitClient, logger logrus.FieldLogger) (schema.CycleResult, error) {
	result := schema.CycleResult{RepoID: cfg.RepoID, Engine: cfg.Engine, Mode: cfg.BucketMode}
	commits, err := loadCommits(ctx, cfg, client, logger)
	if err != nil {
		return result, err
	}
	calc, closeCalc, err := newCalculator(cfg, logger)
	if err != nil {
		return result, err
	}
	defer closeCalc()

	switch cfg.BucketMode {
	case schema.DeltasMode:
		result.Deltas, err = calc.Deltas(ctx, commits)
	case schema.MonthMode:
		result.Buckets, err = calc.ByMonthStats(ctx, commits)
	default:
		result.BucketSize = cfg.BucketSize
		result.Buckets, err = calc.FixedBucketStats(ctx, commits, cfg.BucketSize)
	}
	if err != nil {
		return result, fmt.Errorf("cycle-time computation failed: %w", err)
	}
	return result, nil
}

// GetFailureResults loads commits and computes the monthly change-failure rate.
func GetFailureResults(ctx context.Context, cfg *contract.Config, client contract.GitClient, logger logrus.FieldLogger) (schema.FailureResult, error) {
	result := schema.FailureResult{RepoID: cfg.RepoID, Engine: cfg.Engine}
	commits, err := loadCommits(ctx, cfg, client, logger)
	if err != nil {
		return result, err
	}
	calc, closeCalc, err := newCalculator(cfg, logger)
	if err != nil {
		return result, err
	}
	defer closeCalc()

	if result.Months, err = calc.ChangeFailureRates(ctx, commits); err != nil {
		return result, fmt.Errorf("change-failure computation failed: %w", err)
	}
	return result, nil
}

// GetAuthorsResults loads commits and counts active authors per month.
func GetAuthorsResults(ctx context.Context, cfg *contract.Config, client contract.GitClient, logger logrus.FieldLogger) (schema.AuthorsResult, error) {
	result := schema.AuthorsResult{RepoID: cfg.RepoID, Engine: cfg.Engine}
	commits, err := loadCommits(ctx, cfg, client, logger)
	if err != nil {
		return result, err
	}
	calc, closeCalc, err := newCalculator(cfg, logger)
	if err != nil {
		return result, err
	}
	defer closeCalc()

	if result.Months, err = calc.ActiveAuthors(ctx, commits); err != nil {
		return result, fmt.Errorf("active-authors computation failed: %w", err)
	}
	return result, nil
}

// GetCompareResults runs every metric through both engines and compares them.
func GetCompareResults(ctx context.Context, cfg *contract.Config, client contract.GitClient, logger logrus.FieldLogger) (schema.ComparisonResult, error) {
	commits, err := loadCommits(ctx, cfg, client, logger)
	if err != nil {
		return schema.ComparisonResult{}, err
	}
	store, err := openLake(cfg, false, logger)
	if err != nil {
		return schema.ComparisonResult{}, err
	}
	defer func() { _ = store.Close() }()

	result, err := parity.Run(ctx, commits,
		NewMemoryCalculator(nil),
		lake.NewCalculator(store, cfg.RepoID, logger),
		cfg.BucketSize, logger)
	if err != nil {
		return result, err
	}
	result.Report.RepoID = cfg.RepoID
	return result, nil
}

// loadCommits prints the run header and reads the commit history.
func loadCommits(ctx context.Context, cfg *contract.Config, client contract.GitClient, logger logrus.FieldLogger) ([]schema.CommitRecord, error) {
	if !shouldSuppressHeader(ctx) {
		logRunHeader(cfg)
	}
	return agg.LoadCommits(ctx, client, cfg.RepoPath, cfg.StartTime, cfg.EndTime, logger)
}

// newCalculator returns the engine selected by cfg and a function releasing it.
func newCalculator(cfg *contract.Config, logger logrus.FieldLogger) (contract.Calculator, func(), error) {
	if cfg.Engine != schema.SQLEngine {
		return NewMemoryCalculator(nil), func() {}, nil
	}
	store, err := openLake(cfg, false, logger)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Warn("failed to close lake")
		}
	}
	return lake.NewCalculator(store, cfg.RepoID, logger), closeStore, nil
}

// openLake opens the configured lake. A persistent SQLite lake without an
// explicit connection string lives in the home directory.
func openLake(cfg *contract.Config, persistent bool, logger logrus.FieldLogger) (*lake.Store, error) {
	return lake.NewStore(cfg.LakeBackend, lakeConnect(cfg, persistent), logger)
}

func lakeConnect(cfg *contract.Config, persistent bool) string {
	if persistent && cfg.LakeBackend == schema.SQLiteBackend &&
		(cfg.LakeDBConnect == "" || cfg.LakeDBConnect == contract.MemoryDBConnect) {
		return contract.GetLakeDBFilePath()
	}
	return cfg.LakeDBConnect
}

// logRunHeader prints a concise, 2-line header for each run.
func logRunHeader(cfg *contract.Config) {
	repoName := filepath.Base(cfg.RepoPath)
	if repoName == "" || repoName == "." {
		repoName = "current"
	}
	_, _ = fmt.Fprintf(os.Stderr, "🔎 Repo: %s (ID: %s, Engine: %s)\n", repoName, cfg.RepoID, cfg.Engine)

	from, to := "beginning", "now"
	if !cfg.StartTime.IsZero() {
		from = cfg.StartTime.Format(contract.DateTimeFormat)
	}
	if !cfg.EndTime.IsZero() {
		to = cfg.EndTime.Format(contract.DateTimeFormat)
	}
	_, _ = fmt.Fprintf(os.Stderr, "📅 Range: %s → %s\n", from, to)
}

// ExecuteLakeLoad loads the repository history into the persistent lake.
func ExecuteLakeLoad(ctx context.Context, cfg *contract.Config, logger logrus.FieldLogger) error {
	n, err := LoadLake(ctx, cfg, contract.NewLocalGitClient(), logger)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(os.Stdout, "Loaded %d commits into %s lake under %s\n", n, cfg.LakeBackend, cfg.RepoID)
	return err
}

// LoadLake replaces the rows of cfg.RepoID in the persistent lake.
func LoadLake(ctx context.Context, cfg *contract.Config, client contract.GitClient, logger logrus.FieldLogger) (int, error) {
	commits, err := loadCommits(ctx, cfg, client, logger)
	if err != nil {
		return 0, err
	}
	store, err := openLake(cfg, true, logger)
	if err != nil {
		return 0, err
	}
	defer func() { _ = store.Close() }()

	if err := store.Load(ctx, commits, cfg.RepoID); err != nil {
		return 0, err
	}
	return len(commits), nil
}

// ExecuteLakeStatus prints the persistent lake status.
func ExecuteLakeStatus(ctx context.Context, cfg *contract.Config, logger logrus.FieldLogger) error {
	store, err := openLake(cfg, true, logger)
	if err != nil {
		lake.PrintLakeStatus(os.Stdout, schema.LakeStatus{Backend: string(cfg.LakeBackend)})
		return err
	}
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus(ctx)
	if err != nil {
		return err
	}
	lake.PrintLakeStatus(os.Stdout, status)
	return nil
}

// ExecuteLakeClear deletes the rows of an explicit --repo-id, or every row.
func ExecuteLakeClear(ctx context.Context, cfg *contract.Config, logger logrus.FieldLogger) error {
	store, err := openLake(cfg, true, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Clear(ctx, cfg.RepoID); err != nil {
		return err
	}
	target := cfg.RepoID
	if target == "" {
		target = "all repositories"
	}
	_, err = fmt.Fprintf(os.Stdout, "Lake cleared for %s\n", target)
	return err
}

// ExecuteLakeExport writes the lake rows of an explicit --repo-id, or every row, to Parquet.
func ExecuteLakeExport(ctx context.Context, cfg *contract.Config, logger logrus.FieldLogger) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	store, err := openLake(cfg, true, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.Export(ctx, cfg.RepoID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.New("no lake data found to export")
	}
	if err := parquet.WriteFile(parquet.ConvertCommits(records), cfg.OutputFile); err != nil {
		return fmt.Errorf("failed to write lake commits: %w", err)
	}
	_, err = fmt.Fprintf(os.Stdout, "Exported %d commits to: %s\n", len(records), cfg.OutputFile)
	return err
}

// ExecuteLakeMigrate applies the lake schema migrations.
func ExecuteLakeMigrate(_ context.Context, cfg *contract.Config, _ logrus.FieldLogger) error {
	return lake.Migrate(cfg.LakeBackend, lakeConnect(cfg, true), cfg.TargetVersion, os.Stdout)
}
