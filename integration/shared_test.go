//go:build basic || database

// Package integration runs the gitlake binary against real repositories.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedGitlakePath holds the path to a gitlake binary built once for all tests.
	sharedGitlakePath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getGitlakeBinary returns the path to the gitlake binary, building it once if needed.
func getGitlakeBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "gitlake-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		gitlakePath := filepath.Join(tempDir, "gitlake")
		buildCmd := exec.Command("go", "build", "-o", gitlakePath, ".")
		buildCmd.Dir = ".." // Build from project root
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build gitlake: %v", err))
		}

		sharedGitlakePath = gitlakePath
	})

	return sharedGitlakePath
}

// toyCommit is one commit of the scratch repository.
type toyCommit struct {
	author  string
	date    string
	message string
}

// toyHistory spans two months with one fix commit in each.
var toyHistory = []toyCommit{
	{"alice", "2024-01-15T12:00:00Z", "start"},
	{"alice", "2024-01-15T12:30:00Z", "docs"},
	{"alice", "2024-01-15T13:00:00Z", "fix typo"},
	{"bob", "2024-01-15T14:00:00Z", "feature"},
	{"bob", "2024-01-16T14:00:00Z", "more feature"},
	{"bob", "2024-02-15T12:00:00Z", "Revert feature"},
	{"bob", "2024-02-15T13:00:00Z", "cleanup"},
	{"alice", "2024-02-16T13:00:00Z", "polish"},
}

// newToyRepo creates a git repository with toyHistory and returns its path.
func newToyRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runGit(t, dir, nil, "init", "-q")
	for i, c := range toyHistory {
		file := filepath.Join(dir, "file.txt")
		require.NoError(t, os.WriteFile(file, []byte(fmt.Sprintf("change %d\n", i)), 0o644))
		runGit(t, dir, nil, "add", "file.txt")
		env := []string{
			"GIT_AUTHOR_NAME=" + c.author,
			"GIT_AUTHOR_EMAIL=" + c.author + "@example.com",
			"GIT_AUTHOR_DATE=" + c.date,
			"GIT_COMMITTER_NAME=" + c.author,
			"GIT_COMMITTER_EMAIL=" + c.author + "@example.com",
			"GIT_COMMITTER_DATE=" + c.date,
		}
		runGit(t, dir, env, "commit", "-q", "-m", c.message)
	}
	return dir
}

func runGit(t *testing.T, dir string, env []string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), output)
}

// runGitlake runs the binary in dir with extra environment and returns stdout.
func runGitlake(t *testing.T, dir string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getGitlakeBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
		return stdout.String(), err
	}
	return stdout.String(), nil
}
