package contract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Parity label constants.
const (
	MatchValue    = "Match"    // Within tolerance
	RelaxedValue  = "Relaxed"  // Within a widened tolerance
	MismatchValue = "Mismatch" // Outside tolerance
)

// DefaultRepoName is used when neither the remote nor the directory yields a name.
const DefaultRepoName = "repo"

// Color variables for console output.
var (
	MatchColor    = color.New(color.FgGreen, color.Bold)
	RelaxedColor  = color.New(color.FgYellow)
	MismatchColor = color.New(color.FgRed, color.Bold)
	HighRateColor = color.New(color.FgMagenta)
)

// GetPlainLabel returns the parity label for a metric comparison.
func GetPlainLabel(ok, relaxed bool) string {
	switch {
	case !ok:
		return MismatchValue
	case relaxed:
		return RelaxedValue
	default:
		return MatchValue
	}
}

// GetColorLabel returns the parity label colored for console output.
func GetColorLabel(ok, relaxed bool) string {
	text := GetPlainLabel(ok, relaxed)
	switch text {
	case MismatchValue:
		return MismatchColor.Sprint(text)
	case RelaxedValue:
		return RelaxedColor.Sprint(text)
	default:
		return MatchColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// NewLogger builds the process logger. It is created once by the entry point
// and handed to every component that logs.
func NewLogger(level string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger, nil
}

// GetLakeDBFilePath returns the path to the SQLite DB file for a persistent lake.
func GetLakeDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitlake_lake.db"
	}
	return filepath.Join(homeDir, ".gitlake_lake.db")
}

// DeriveRepoID returns the repository tag used in the lake: "local:<name>".
// The name is the last path element of the origin remote URL without ".git",
// then the base name of repoPath, then DefaultRepoName.
func DeriveRepoID(ctx context.Context, client GitClient, repoPath string) string {
	return "local:" + deriveRepoName(ctx, client, repoPath)
}

// deriveRepoName resolves the name part of DeriveRepoID.
func deriveRepoName(ctx context.Context, client GitClient, repoPath string) string {
	if client != nil {
		if remote, err := client.GetRemoteURL(ctx, repoPath); err == nil {
			remote = strings.TrimSuffix(strings.TrimSpace(remote), "/")
			// scp-style remotes such as git@host:org/name.git
			if i := strings.LastIndex(remote, ":"); i >= 0 && !strings.Contains(remote, "://") {
				remote = remote[i+1:]
			}
			if name := strings.TrimSuffix(path.Base(remote), ".git"); remote != "" && name != "" && name != "." && name != "/" {
				return name
			}
		}
	}
	if repoPath != "" {
		if abs, err := filepath.Abs(repoPath); err == nil {
			if name := filepath.Base(abs); name != "" && name != "." && name != string(filepath.Separator) {
				return name
			}
		}
	}
	return DefaultRepoName
}

// TruncateText truncates text to a maximum width with an ellipsis prefix.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
