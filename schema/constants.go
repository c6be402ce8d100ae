package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the commit lake.
	DatabaseBackend string

	// Engine represents which computation path produces the metrics.
	Engine string

	// BucketMode represents how cycle-time deltas are grouped.
	BucketMode string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All lake backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// All computation engines supported.
const (
	MemoryEngine Engine = "memory" // default
	SQLEngine    Engine = "sql"
)

// All bucket modes supported.
const (
	DeltasMode BucketMode = "deltas"
	FixedMode  BucketMode = "fixed" // default
	MonthMode  BucketMode = "month"
)

// MonthLayout is the layout of every month label.
const MonthLayout = "2006-01"

// FixKeywords are the lowercase substrings that mark a commit message as a fix.
var FixKeywords = []string{"revert", "hotfix", "bugfix", "bug", "fix", "problem", "issue"}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid lake backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}

// ValidEngines lists all valid engines.
var ValidEngines = map[Engine]struct{}{
	MemoryEngine: {},
	SQLEngine:    {},
}

// ValidBucketModes lists all valid bucket modes.
var ValidBucketModes = map[BucketMode]struct{}{
	DeltasMode: {},
	FixedMode:  {},
	MonthMode:  {},
}
