package contract

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		ok       bool
		relaxed  bool
		expected string
	}{
		{"exact match", true, false, MatchValue},
		{"relaxed match", true, true, RelaxedValue},
		{"mismatch", false, false, MismatchValue},
		{"relaxed mismatch", false, true, MismatchValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.ok, tt.relaxed))
			assert.Contains(t, GetColorLabel(tt.ok, tt.relaxed), tt.expected)
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")
		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		require.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("debug", &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("repo", "local:demo").Debug("loaded")
	assert.Contains(t, buf.String(), "loaded")
	assert.Contains(t, buf.String(), "repo=local:demo")

	_, err = NewLogger("chatty", &buf)
	assert.Error(t, err)
}

func TestDeriveRepoID(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "checkout-dir")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	tests := []struct {
		name     string
		remote   string
		err      error
		expected string
	}{
		{"https remote", "https://github.com/acme/git_calculator.git", nil, "local:git_calculator"},
		{"scp remote", "git@github.com:acme/widgets.git", nil, "local:widgets"},
		{"remote without suffix", "https://example.com/acme/tools/", nil, "local:tools"},
		{"no remote falls back to directory", "", errors.New("no remote"), "local:checkout-dir"},
		{"empty remote falls back to directory", "", nil, "local:checkout-dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockGitClient)
			client.On("GetRemoteURL", mock.Anything, dir).Return(tt.remote, tt.err)
			assert.Equal(t, tt.expected, DeriveRepoID(ctx, client, dir))
			client.AssertExpectations(t)
		})
	}

	t.Run("nothing available", func(t *testing.T) {
		assert.Equal(t, "local:"+DefaultRepoName, DeriveRepoID(ctx, nil, ""))
	})
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	truncated := TruncateText("abcdefghijklmnop", 8)
	assert.True(t, strings.HasPrefix(truncated, "..."))
	assert.Len(t, []rune(truncated), 8)
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
