package lake

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/gitlake/schema"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectExpand(t *testing.T) {
	tests := []struct {
		backend    schema.DatabaseBackend
		driverName string
		contains   []string
	}{
		{schema.SQLiteBackend, "sqlite", []string{"strftime('%Y-%m', ts, 'unixepoch', 'localtime')", "AS REAL", "AS INTEGER", ") / 4"}},
		{schema.MySQLBackend, "mysql", []string{"DATE_FORMAT(FROM_UNIXTIME(ts), '%Y-%m')", "DECIMAL(30,10)", "AS SIGNED", "DIV 4"}},
		{schema.PostgreSQLBackend, "pgx", []string{"to_char(to_timestamp(ts), 'YYYY-MM')", "AS NUMERIC", "AS BIGINT", ") / 4"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			d, err := newDialect(tt.backend)
			require.NoError(t, err)
			assert.Equal(t, tt.driverName, d.driverName)

			q := d.expand(queryFixedBucket)
			assert.NotContains(t, q, "{{")
			for _, fragment := range tt.contains {
				assert.Contains(t, q, fragment)
			}
		})
	}

	_, err := newDialect("duckdb")
	assert.Error(t, err)
}

func TestFixPredicate(t *testing.T) {
	p := fixPredicate()
	for _, kw := range schema.FixKeywords {
		assert.Contains(t, p, "LIKE '%"+kw+"%'")
	}
	assert.Equal(t, len(schema.FixKeywords)-1, strings.Count(p, " OR "))
}

func TestPrintLakeStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintLakeStatus(&buf, schema.LakeStatus{
		Backend:    "sqlite",
		Connected:  true,
		TotalRows:  5,
		RepoCounts: map[string]int64{"local:b": 2, "local:a": 3},
	})
	out := buf.String()
	assert.Contains(t, out, "Lake Backend: sqlite")
	assert.Contains(t, out, "Total Rows: 5")
	assert.Less(t, strings.Index(out, "local:a"), strings.Index(out, "local:b"))

	buf.Reset()
	PrintLakeStatus(&buf, schema.LakeStatus{Backend: "mysql"})
	assert.Contains(t, buf.String(), "Connected: false")
	assert.NotContains(t, buf.String(), "Total Rows")
}

func TestMigrate_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lake.db")
	var out bytes.Buffer

	// Migrate to latest, then again as a no-op
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, -1, &out))
	assert.Contains(t, out.String(), "Successfully migrated")
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, -1, &out))
	assert.Contains(t, out.String(), "No migration needed")

	// Roll back and forward again
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, 0, &out))
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, 1, &out))

	// A migrated lake opens cleanly
	logger, _ := logtest.NewNullLogger()
	store, err := NewStore(schema.SQLiteBackend, dbPath, logger)
	require.NoError(t, err)
	require.NoError(t, store.Load(context.Background(), history(twelveOffsets), "local:a"))
	require.NoError(t, store.Close())
}

func TestMigrate_UnsupportedBackend(t *testing.T) {
	err := Migrate(schema.DatabaseBackend("oracle"), "", -1, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unsupported backend")
}

// failingStore fails every load.
type failingStore struct{ *Store }

func (f failingStore) Load(context.Context, []schema.CommitRecord, string) error {
	return errors.New("disk full")
}

func TestCalculator(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	logger, _ := logtest.NewNullLogger()
	calc := NewCalculator(store, "local:calc", logger)
	commits := history(twelveOffsets)

	deltas, err := calc.Deltas(ctx, commits)
	require.NoError(t, err)
	assert.Len(t, deltas, 11)
	firstHash := calc.loadedHash

	fixed, err := calc.FixedBucketStats(ctx, commits, 4)
	require.NoError(t, err)
	assert.Len(t, fixed, 3)
	assert.Equal(t, firstHash, calc.loadedHash, "same input is not reloaded")

	_, err = calc.FixedBucketStats(ctx, commits, -1)
	assert.ErrorIs(t, err, schema.ErrInvalidBucketSize)

	months, err := calc.ByMonthStats(ctx, commits)
	require.NoError(t, err)
	assert.Len(t, months, 2)

	rates, err := calc.ChangeFailureRates(ctx, commits)
	require.NoError(t, err)
	assert.Len(t, rates, 2)

	authors, err := calc.ActiveAuthors(ctx, commits)
	require.NoError(t, err)
	assert.Len(t, authors, 2)

	// New input replaces the rows under the tag
	deltas, err = calc.Deltas(ctx, commits[:4])
	require.NoError(t, err)
	assert.Len(t, deltas, 3)
	assert.NotEqual(t, firstHash, calc.loadedHash)

	// Empty input yields empty output
	deltas, err = calc.Deltas(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, deltas)
}

func TestCalculatorReloadsAfterTagRewrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	logger, hook := logtest.NewNullLogger()
	calc := NewCalculator(store, "local:calc", logger)
	commits := history(twelveOffsets)

	deltas, err := calc.Deltas(ctx, commits)
	require.NoError(t, err)
	assert.Len(t, deltas, 11)
	assert.Equal(t, int64(12), calc.loadedRows)

	// Another process clears the tag behind the calculator's back
	require.NoError(t, store.Clear(ctx, "local:calc"))
	deltas, err = calc.Deltas(ctx, commits)
	require.NoError(t, err)
	assert.Len(t, deltas, 11)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, int64(0), hook.LastEntry().Data["found"])

	// Or reloads it with a shorter history
	require.NoError(t, store.Load(ctx, commits[:3], "local:calc"))
	fixed, err := calc.FixedBucketStats(ctx, commits, 4)
	require.NoError(t, err)
	assert.Len(t, fixed, 3)

	rows, err := store.CountRows(ctx, "local:calc")
	require.NoError(t, err)
	assert.Equal(t, int64(12), rows)
}

func TestCalculatorLoadFailure(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	calc := NewCalculator(failingStore{newTestStore(t)}, "local:x", logger)

	_, err := calc.Deltas(context.Background(), history(twelveOffsets))
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, calc.loadedHash)
}

func TestFingerprint(t *testing.T) {
	commits := history(twelveOffsets)
	assert.Equal(t, fingerprint(commits), fingerprint(history(twelveOffsets)))

	changed := history(twelveOffsets)
	changed[0].Message = msg("fix")
	assert.NotEqual(t, fingerprint(commits), fingerprint(changed))

	empty := history(twelveOffsets)
	empty[0].Message = msg("")
	assert.NotEqual(t, fingerprint(changed), fingerprint(empty))
	assert.NotEqual(t, fingerprint(commits), fingerprint(empty), "nil and empty messages differ")
}
