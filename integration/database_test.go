//go:build database

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/gitlake/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestGitlakeWithMySQL runs the SQL engine and the lake against a MySQL backend.
func TestGitlakeWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "gitlake",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/gitlake?parseTime=true", host, port.Port())
	runBackendScenario(t, []string{
		"GITLAKE_LAKE_BACKEND=mysql",
		"GITLAKE_LAKE_DB_CONNECT=" + connStr,
	})
}

// TestGitlakeWithPostgres runs the SQL engine and the lake against a PostgreSQL backend.
func TestGitlakeWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	runBackendScenario(t, []string{
		"GITLAKE_LAKE_BACKEND=postgresql",
		"GITLAKE_LAKE_DB_CONNECT=" + connStr,
	})
}

// runBackendScenario migrates the lake, loads the toy repository and checks
// that both engines agree when the relational side runs on the backend.
func runBackendScenario(t *testing.T, env []string) {
	repo := newToyRepo(t)

	_, err := runGitlake(t, repo, env, "lake", "migrate")
	require.NoError(t, err)

	_, err = runGitlake(t, repo, env, "lake", "clear")
	require.NoError(t, err)

	out, err := runGitlake(t, repo, env, "lake", "load", "--repo-id", "toy")
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 8 commits")

	out, err = runGitlake(t, repo, env, "lake", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "toy: 8 rows")

	out, err = runGitlake(t, repo, env, "failure", "--engine", "sql", "--output", "json", "--repo-id", "toy")
	require.NoError(t, err)
	var failure schema.FailureResult
	require.NoError(t, json.Unmarshal([]byte(out), &failure))
	require.Len(t, failure.Months, 2)
	assert.InDelta(t, 20.0, failure.Months[0].Rate, 1e-9)
	assert.InDelta(t, 33.3, failure.Months[1].Rate, 1e-9)

	out, err = runGitlake(t, repo, env, "compare", "--bucket-size", "2", "--output", "json", "--repo-id", "toy")
	require.NoError(t, err)
	var result schema.ComparisonResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Report.OK(), "parity report: %+v", result.Report)
	assert.Equal(t, 8, result.Report.Commits)

	out, err = runGitlake(t, repo, env, "lake", "clear", "--repo-id", "toy")
	require.NoError(t, err)
	assert.Contains(t, out, "Lake cleared for toy")
}
