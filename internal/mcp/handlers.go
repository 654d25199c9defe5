package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/finance/goal"
	"github.com/bobmcallan/finplan-portal/internal/finance/risk"
	"github.com/bobmcallan/finplan-portal/internal/planning"
	"github.com/bobmcallan/finplan-portal/internal/validator"
)

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// jsonResult marshals v into a text result.
func jsonResult(v interface{}) *mcp.CallToolResult {
	out, err := json.Marshal(v)
	if err != nil {
		return errorResult("failed to marshal result")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(out))},
	}
}

// serviceError converts a planning error into a tool error. Input errors are
// returned as-is and store failures are reported generically.
func serviceError(logger *common.Logger, tool string, err error) *mcp.CallToolResult {
	switch {
	case validator.IsValidationError(err), errors.Is(err, risk.ErrUnknownLevel):
		return errorResult(err.Error())
	case errors.Is(err, planning.ErrStoreUnavailable):
		logger.Warn().Str("tool", tool).Err(err).Msg("mcp: store unavailable")
		return errorResult("The portfolio store is unavailable. Please try again.")
	default:
		logger.Error().Str("tool", tool).Err(err).Msg("mcp: tool failed")
		return errorResult("internal error")
	}
}

// caller returns the authenticated email or an error result.
func caller(ctx context.Context) (string, *mcp.CallToolResult) {
	uc, ok := GetUserContext(ctx)
	if !ok {
		return "", errorResult("not authenticated")
	}
	return uc.Email, nil
}

// DashboardToolHandler returns the handler for get_dashboard.
func DashboardToolHandler(logger *common.Logger, planner *planning.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		email, denied := caller(ctx)
		if denied != nil {
			return denied, nil
		}
		d, err := planner.Dashboard(ctx, email)
		if err != nil {
			return serviceError(logger, "get_dashboard", err), nil
		}
		return jsonResult(d), nil
	}
}

// GoalToolHandler returns the handler for evaluate_goal.
func GoalToolHandler(logger *common.Logger, planner *planning.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		email, denied := caller(ctx)
		if denied != nil {
			return denied, nil
		}
		in := goal.Input{
			Mode:         goal.Mode(r.GetString("mode", "")),
			TargetCorpus: r.GetFloat("target_corpus", 0),
			Years:        r.GetFloat("years", 0),
			AssumedRate:  r.GetFloat("assumed_rate", 0),
		}
		v, err := planner.EvaluateGoal(ctx, email, in)
		if err != nil {
			return serviceError(logger, "evaluate_goal", err), nil
		}
		return jsonResult(v), nil
	}
}

// ProjectionToolHandler returns the handler for project_portfolio. The
// projection is computed from a fresh snapshot and is not kept.
func ProjectionToolHandler(logger *common.Logger, planner *planning.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		email, denied := caller(ctx)
		if denied != nil {
			return denied, nil
		}
		v, err := planner.Project(ctx, email, r.GetInt("risk_level", 0))
		if err != nil {
			return serviceError(logger, "project_portfolio", err), nil
		}
		return jsonResult(v), nil
	}
}
