package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/gitlake/core"
	"github.com/huangsam/gitlake/internal/contract"
	"github.com/huangsam/gitlake/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
	logger  logrus.FieldLogger
}

func (h *toolHandler) handleGetCycleTime(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if by := request.GetString("by", ""); by != "" {
		cfg.BucketMode = schema.BucketMode(strings.ToLower(by))
		if _, ok := schema.ValidBucketModes[cfg.BucketMode]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: unknown grouping '%s'", by)), nil
		}
	}

	result, err := core.GetCycleResults(core.WithSuppressHeader(ctx), cfg, h.client, h.logger)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cycle-time computation failed: %v", err)), nil
	}
	return textResult(result)
}

func (h *toolHandler) handleGetChangeFailure(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	result, err := core.GetFailureResults(core.WithSuppressHeader(ctx), cfg, h.client, h.logger)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("change-failure computation failed: %v", err)), nil
	}
	return textResult(result)
}

func (h *toolHandler) handleGetActiveAuthors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	result, err := core.GetAuthorsResults(core.WithSuppressHeader(ctx), cfg, h.client, h.logger)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("active-authors computation failed: %v", err)), nil
	}
	return textResult(result)
}

func (h *toolHandler) handleCompareEngines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	result, err := core.GetCompareResults(core.WithSuppressHeader(ctx), cfg, h.client, h.logger)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}
	// Engine outputs are large; agents only need the verdicts.
	return textResult(result.Report)
}

// requestConfig applies the arguments shared by every tool to a copy of the base config.
func (h *toolHandler) requestConfig(ctx context.Context, request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		root, err := h.client.GetRepoRoot(ctx, p)
		if err != nil {
			return nil, err
		}
		cfg.RepoPath = root
		cfg.RepoID = contract.DeriveRepoID(ctx, h.client, root)
	}
	if e := request.GetString("engine", ""); e != "" {
		cfg.Engine = schema.Engine(strings.ToLower(e))
		if _, ok := schema.ValidEngines[cfg.Engine]; !ok {
			return nil, fmt.Errorf("unknown engine '%s'", e)
		}
	}
	if size := request.GetInt("bucket_size", 0); size != 0 {
		if err := contract.ValidateBucketSize(size); err != nil {
			return nil, err
		}
		cfg.BucketSize = size
	}
	return cfg, nil
}

func textResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
