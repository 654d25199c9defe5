package mcp

import (
	"context"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/finplan-portal/internal/common"
)

// versionReport is the get_version payload.
type versionReport struct {
	Portal common.BuildInfo `json:"portal"`
	Tools  []string         `json:"tools"`
}

// VersionTool returns the mcp.Tool definition for get_version.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the finplan portal build and the tools it serves. Use this to verify connectivity."),
	)
}

// VersionToolHandler reports the portal build and the registered tool names.
// It needs no signed-in user.
func VersionToolHandler(tools []string) server.ToolHandlerFunc {
	names := slices.Sorted(slices.Values(tools))
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(versionReport{Portal: common.CurrentBuild(), Tools: names}), nil
	}
}
