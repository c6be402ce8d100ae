package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/gitlake/schema"
)

// Default values for configuration.
const (
	DefaultBucketSize = 1000
	MaxBucketSize     = 1_000_000
	DefaultPrecision  = 2
	DefaultLogLevel   = "warn"
	MemoryDBConnect   = ":memory:"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for a metrics run.
// This struct is the "final, validated" config.
type Config struct {
	RepoPath  string
	RepoID    string // Tag for lake rows, see DeriveRepoID
	StartTime time.Time
	EndTime   time.Time

	Engine     schema.Engine
	BucketMode schema.BucketMode
	BucketSize int

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	OutDir     string // Bundle directory for compare
	Chart      bool
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	LogLevel   string

	LakeBackend   schema.DatabaseBackend
	LakeDBConnect string // Please use env var as this is plaintext

	TargetVersion int
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output        string `mapstructure:"output"`
	OutputFile    string `mapstructure:"output-file"`
	Precision     int    `mapstructure:"precision"`
	Start         string `mapstructure:"start"`
	End           string `mapstructure:"end"`
	Width         int    `mapstructure:"width"`
	Color         string `mapstructure:"color"`
	LogLevel      string `mapstructure:"log-level"`
	RepoID        string `mapstructure:"repo-id"`
	LakeBackend   string `mapstructure:"lake-backend"`
	LakeDBConnect string `mapstructure:"lake-db-connect"`

	// --- Fields from metric command flags ---
	Engine     string `mapstructure:"engine"`
	By         string `mapstructure:"by"`
	BucketSize int    `mapstructure:"bucket-size"`

	// --- Fields from compareCmd.Flags() ---
	OutDir string `mapstructure:"out-dir"`
	Chart  bool   `mapstructure:"chart"`

	// --- Fields from lakeMigrateCmd.Flags() ---
	TargetVersion int `mapstructure:"target-version"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate turns raw input into a validated Config.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateLakeConfig(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := resolveRepoPath(ctx, cfg, client, input); err != nil {
		return err
	}
	resolveRepoID(ctx, cfg, client, input)
	return nil
}

// ValidateBucketSize checks the fixed bucket size.
func ValidateBucketSize(size int) error {
	if size <= 0 || size > MaxBucketSize {
		return fmt.Errorf("bucket-size must be greater than 0 and cannot exceed %d (received %d)", MaxBucketSize, size)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("lake-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("lake-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	default:
		return fmt.Errorf("invalid lake backend '%s'. must be sqlite, mysql, postgresql", backend)
	}
	return nil
}

// ParseLakeBackend normalizes a backend string, defaulting to SQLite.
func ParseLakeBackend(s string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if backend == "" {
		return schema.SQLiteBackend, nil
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid lake backend '%s'. must be sqlite, mysql, postgresql", s)
	}
	return backend, nil
}

// validateLakeConfig validates the lake backend configuration.
// An empty SQLite connection string keeps the lake in memory.
func validateLakeConfig(cfg *Config, input *ConfigRawInput) error {
	backend, err := ParseLakeBackend(input.LakeBackend)
	if err != nil {
		return err
	}
	cfg.LakeBackend = backend
	cfg.LakeDBConnect = input.LakeDBConnect
	if err := ValidateDatabaseConnectionString(cfg.LakeBackend, cfg.LakeDBConnect); err != nil {
		return err
	}
	if cfg.LakeBackend == schema.SQLiteBackend && cfg.LakeDBConnect == "" {
		cfg.LakeDBConnect = MemoryDBConnect
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.OutDir = input.OutDir
	cfg.Chart = input.Chart
	if cfg.Chart && cfg.OutDir == "" {
		return fmt.Errorf("--chart requires --out-dir")
	}
	cfg.Width = input.Width
	cfg.TargetVersion = input.TargetVersion

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.LogLevel = input.LogLevel
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if input.Precision < 1 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	cfg.Engine = schema.Engine(strings.ToLower(input.Engine))
	if _, ok := schema.ValidEngines[cfg.Engine]; !ok {
		return fmt.Errorf("invalid engine '%s'. must be memory, sql", input.Engine)
	}

	cfg.BucketMode = schema.BucketMode(strings.ToLower(input.By))
	if _, ok := schema.ValidBucketModes[cfg.BucketMode]; !ok {
		return fmt.Errorf("invalid bucket mode '%s'. must be deltas, fixed, month", input.By)
	}

	if err := ValidateBucketSize(input.BucketSize); err != nil {
		return err
	}
	cfg.BucketSize = input.BucketSize

	return nil
}

// processTimeRange parses the optional commit window. Unset bounds mean full history.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	now := time.Now()
	cfg.StartTime = time.Time{}
	cfg.EndTime = time.Time{}

	parse := func(name, s string) (time.Time, error) {
		if t, err := time.Parse(DateTimeFormat, s); err == nil {
			return t, nil
		}
		t, err := ParseRelativeTime(s, now)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid %s date format for '%s'. Expected absolute ISO8601 or 'N [units] ago'", name, s)
		}
		return t, nil
	}

	if input.Start != "" {
		t, err := parse("start", input.Start)
		if err != nil {
			return err
		}
		cfg.StartTime = t
	}
	if input.End != "" {
		t, err := parse("end", input.End)
		if err != nil {
			return err
		}
		cfg.EndTime = t
	}

	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}
	return nil
}

// resolveRepoPath resolves the positional path to the enclosing git root.
func resolveRepoPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	gitContextPath := absSearchPath
	if info, statErr := os.Stat(absSearchPath); statErr == nil && !info.IsDir() {
		gitContextPath = filepath.Dir(absSearchPath)
	}

	gitRoot, err := client.GetRepoRoot(ctx, gitContextPath)
	if err != nil {
		return err
	}
	cfg.RepoPath = gitRoot
	return nil
}

// resolveRepoID applies an explicit --repo-id or derives one from the repository.
func resolveRepoID(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) {
	if id := strings.TrimSpace(input.RepoID); id != "" {
		cfg.RepoID = id
		return
	}
	cfg.RepoID = DeriveRepoID(ctx, client, cfg.RepoPath)
}
