// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/gitlake/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// NewMCPServer initializes and configures the gitlake MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.GitClient, logger logrus.FieldLogger) *server.MCPServer {
	s := server.NewMCPServer(
		"gitlake Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
		logger:  logger,
	}

	// --- 1. Tool: get_cycle_time ---
	s.AddTool(mcp.NewTool("get_cycle_time",
		mcp.WithDescription("Compute per-author cycle-time deltas, fixed-size bucket statistics, or calendar-month statistics from git history."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to the configured repository).")),
		mcp.WithString("by", mcp.Description("Grouping (deltas, fixed, month). Defaults to 'fixed'."), mcp.Enum("deltas", "fixed", "month")),
		mcp.WithString("engine", mcp.Description("Computation engine (memory, sql). Defaults to 'memory'."), mcp.Enum("memory", "sql")),
		mcp.WithNumber("bucket_size", mcp.Description("Deltas per bucket when grouping by fixed buckets.")),
	), h.handleGetCycleTime)

	// --- 2. Tool: get_change_failure ---
	s.AddTool(mcp.NewTool("get_change_failure",
		mcp.WithDescription("Compute the monthly share of commits whose message marks them as a fix."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithString("engine", mcp.Description("Computation engine (memory, sql)."), mcp.Enum("memory", "sql")),
	), h.handleGetChangeFailure)

	// --- 3. Tool: get_active_authors ---
	s.AddTool(mcp.NewTool("get_active_authors",
		mcp.WithDescription("Count distinct author emails per calendar month."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithString("engine", mcp.Description("Computation engine (memory, sql)."), mcp.Enum("memory", "sql")),
	), h.handleGetActiveAuthors)

	// --- 4. Tool: compare_engines ---
	s.AddTool(mcp.NewTool("compare_engines",
		mcp.WithDescription("Run every metric through the in-memory and SQL engines and report where they differ."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithNumber("bucket_size", mcp.Description("Deltas per bucket for the fixed-bucket comparison.")),
	), h.handleCompareEngines)

	return s
}

// StartMCPServer starts the gitlake MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, logger logrus.FieldLogger) error {
	s := NewMCPServer(baseCfg, contract.NewLocalGitClient(), logger)
	return server.ServeStdio(s)
}
