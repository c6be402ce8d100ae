// Package agg has loading logic that turns Git history into commit records.
package agg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/gitlake/internal/contract"
	"github.com/huangsam/gitlake/schema"
	"github.com/sirupsen/logrus"
)

// LoadCommits performs a single repository-wide git log and returns one
// record per commit in source-log order. It runs over the entire history if
// start is zero, or runs since start otherwise.
//
// Messages come from one bulk log call. Commits missing from it, or every
// commit when the bulk call fails, fall back to a per-commit lookup; a commit
// whose message still cannot be read keeps a nil message.
func LoadCommits(ctx context.Context, client contract.GitClient, repoPath string, start, end time.Time, logger logrus.FieldLogger) ([]schema.CommitRecord, error) {
	// 1. Run the git log command
	out, err := client.GetCommitLog(ctx, repoPath, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit log: %w", err)
	}

	// 2. Parse the log into records
	commits, skipped := parseCommitLog(out)
	if skipped > 0 {
		logger.WithField("skipped", skipped).Warn("ignored malformed commit log records")
	}
	if len(commits) == 0 {
		return commits, nil
	}

	// 3. Attach messages
	messages, err := client.GetCommitMessages(ctx, repoPath, start, end)
	var byID map[string]string
	if err != nil {
		logger.WithError(err).Warn("bulk message lookup failed, falling back to per-commit lookups")
	} else {
		byID = parseMessageLog(messages)
	}
	attachMessages(ctx, client, repoPath, commits, byID, logger)

	logger.WithFields(logrus.Fields{"repo": repoPath, "commits": len(commits)}).Debug("loaded commits")
	return commits, nil
}

// parseCommitLog parses hash/email/timestamp records separated by
// contract.RecordSep. It returns the records and the number it could not parse.
func parseCommitLog(out []byte) ([]schema.CommitRecord, int) {
	var commits []schema.CommitRecord
	skipped := 0
	for _, rec := range strings.Split(string(out), contract.RecordSep) {
		rec = strings.TrimSpace(rec)
		if rec == "" {
			continue // Skip blank records
		}
		commit, ok := parseCommitRecord(rec)
		if !ok {
			skipped++
			continue
		}
		commits = append(commits, commit)
	}
	return commits, skipped
}

// parseCommitRecord extracts one commit from a "hash<US>email<US>timestamp" record.
func parseCommitRecord(rec string) (schema.CommitRecord, bool) {
	parts := strings.Split(rec, contract.FieldSep)
	if len(parts) != 3 {
		return schema.CommitRecord{}, false
	}
	id := strings.TrimSpace(parts[0])
	ts, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
	if id == "" || err != nil {
		return schema.CommitRecord{}, false
	}
	return schema.CommitRecord{
		ID:          id,
		AuthorEmail: strings.TrimSpace(parts[1]),
		CommittedAt: ts,
	}, true
}

// parseMessageLog maps commit hash to message from "hash<US>body" records.
func parseMessageLog(out []byte) map[string]string {
	byID := make(map[string]string)
	for _, rec := range strings.Split(string(out), contract.RecordSep) {
		id, body, found := strings.Cut(rec, contract.FieldSep)
		id = strings.TrimSpace(id)
		if !found || id == "" {
			continue
		}
		byID[id] = body
	}
	return byID
}

// attachMessages fills Message on every commit, consulting byID first.
func attachMessages(ctx context.Context, client contract.GitClient, repoPath string, commits []schema.CommitRecord, byID map[string]string, logger logrus.FieldLogger) {
	for i := range commits {
		if body, ok := byID[commits[i].ID]; ok {
			commits[i].Message = normalizeMessage(body)
			continue
		}
		body, err := client.GetCommitMessage(ctx, repoPath, commits[i].ID)
		if err != nil {
			logger.WithError(err).WithField("sha", commits[i].ID).Warn("commit message unavailable")
			continue
		}
		commits[i].Message = normalizeMessage(body)
	}
}

// normalizeMessage trims surrounding whitespace; an empty message becomes nil.
func normalizeMessage(body string) *string {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	return &body
}
