package contract

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/huangsam/gitlake/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// validInput returns raw input that passes every validator.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		RepoPathStr: ".",
		Output:      "text",
		Precision:   2,
		Color:       "yes",
		Engine:      string(schema.MemoryEngine),
		By:          string(schema.FixedMode),
		BucketSize:  4,
	}
}

func TestProcessAndValidate(t *testing.T) {
	workDir, err := filepath.Abs(".")
	require.NoError(t, err)

	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
		gitCalled   bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}, gitCalled: true},
		{name: "invalid engine", mutate: func(in *ConfigRawInput) { in.Engine = "spark" }, expectError: true},
		{name: "invalid bucket mode", mutate: func(in *ConfigRawInput) { in.By = "weekly" }, expectError: true},
		{name: "zero bucket size", mutate: func(in *ConfigRawInput) { in.BucketSize = 0 }, expectError: true},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet needs a file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{name: "invalid precision", mutate: func(in *ConfigRawInput) { in.Precision = 9 }, expectError: true},
		{name: "chart needs a directory", mutate: func(in *ConfigRawInput) { in.Chart = true }, expectError: true},
		{name: "chart with directory", mutate: func(in *ConfigRawInput) {
			in.Chart = true
			in.OutDir = "bundle"
		}, gitCalled: true},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: true},
		{name: "invalid backend", mutate: func(in *ConfigRawInput) { in.LakeBackend = "oracle" }, expectError: true},
		{name: "mysql without dsn", mutate: func(in *ConfigRawInput) { in.LakeBackend = "mysql" }, expectError: true},
		{name: "bad start", mutate: func(in *ConfigRawInput) { in.Start = "yesterday-ish" }, expectError: true},
		{name: "start after end", mutate: func(in *ConfigRawInput) {
			in.Start = "2024-05-01T00:00:00Z"
			in.End = "2024-01-01T00:00:00Z"
		}, expectError: true},
		{name: "relative start", mutate: func(in *ConfigRawInput) { in.Start = "3 months ago" }, gitCalled: true},
		{name: "explicit repo id", mutate: func(in *ConfigRawInput) { in.RepoID = "local:custom" }, gitCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockGitClient)
			if tt.gitCalled {
				client.On("GetRepoRoot", mock.Anything, workDir).Return("/mock/repo/root", nil)
				client.On("GetRemoteURL", mock.Anything, "/mock/repo/root").Return("git@example.com:acme/lake.git", nil).Maybe()
			}
			input := validInput()
			tt.mutate(input)

			cfg := &Config{}
			err := ProcessAndValidate(context.Background(), cfg, client, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "/mock/repo/root", cfg.RepoPath)
			client.AssertExpectations(t)
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	workDir, err := filepath.Abs(".")
	require.NoError(t, err)

	client := new(MockGitClient)
	client.On("GetRepoRoot", mock.Anything, workDir).Return("/mock/repo/root", nil)
	client.On("GetRemoteURL", mock.Anything, "/mock/repo/root").Return("", errors.New("no remote"))

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(context.Background(), cfg, client, validInput()))

	assert.Equal(t, schema.SQLiteBackend, cfg.LakeBackend)
	assert.Equal(t, MemoryDBConnect, cfg.LakeDBConnect)
	assert.Equal(t, "local:root", cfg.RepoID)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.True(t, cfg.StartTime.IsZero())
	assert.True(t, cfg.EndTime.IsZero())
	assert.Equal(t, 4, cfg.BucketSize)
}

func TestExplicitRepoIDSkipsDerivation(t *testing.T) {
	workDir, err := filepath.Abs(".")
	require.NoError(t, err)

	client := new(MockGitClient)
	client.On("GetRepoRoot", mock.Anything, workDir).Return("/mock/repo/root", nil)

	input := validInput()
	input.RepoID = "  local:custom "
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(context.Background(), cfg, client, input))
	assert.Equal(t, "local:custom", cfg.RepoID)
	client.AssertNotCalled(t, "GetRemoteURL", mock.Anything, mock.Anything)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@tcp(localhost:3306)/lake"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "root:pw@localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=lake"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.DatabaseBackend("oracle"), "x"))
}

func TestParseLakeBackend(t *testing.T) {
	b, err := ParseLakeBackend("")
	require.NoError(t, err)
	assert.Equal(t, schema.SQLiteBackend, b)

	b, err = ParseLakeBackend(" PostgreSQL ")
	require.NoError(t, err)
	assert.Equal(t, schema.PostgreSQLBackend, b)

	_, err = ParseLakeBackend("duckdb")
	assert.Error(t, err)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{RepoID: "local:a", BucketSize: 4}
	clone := cfg.Clone()
	clone.RepoID = "local:b"
	assert.Equal(t, "local:a", cfg.RepoID)
	assert.Equal(t, 4, clone.BucketSize)
}
