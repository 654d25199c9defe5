package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/finance/goal"
	"github.com/bobmcallan/finplan-portal/internal/planning"
)

// DashboardTool returns the get_dashboard tool definition.
func DashboardTool() mcp.Tool {
	return mcp.NewTool("get_dashboard",
		mcp.WithDescription("Summarise the caller's investment portfolio: net worth, value per asset category, "+
			"average expected return per category and equity performance."),
	)
}

// GoalTool returns the evaluate_goal tool definition.
func GoalTool() mcp.Tool {
	return mcp.NewTool("evaluate_goal",
		mcp.WithDescription("Check whether a savings target is reachable from the caller's current portfolio value. "+
			"Mode 'current' projects the portfolio forward; mode 'standard' computes the principal needed today."),
		mcp.WithString("mode",
			mcp.Required(),
			mcp.Enum(string(goal.ModeStandard), string(goal.ModeCurrent)),
			mcp.Description("Calculation method"),
		),
		mcp.WithNumber("target_corpus",
			mcp.Required(),
			mcp.Min(1),
			mcp.Description("Target amount to accumulate"),
		),
		mcp.WithNumber("years",
			mcp.Required(),
			mcp.Min(1),
			mcp.Max(goal.MaxYears),
			mcp.Description("Number of years to the goal"),
		),
		mcp.WithNumber("assumed_rate",
			mcp.Description("Assumed annual return as a fraction, e.g. 0.12. Defaults to the portal's assumed rate."),
		),
	)
}

// ProjectionTool returns the project_portfolio tool definition.
func ProjectionTool() mcp.Tool {
	return mcp.NewTool("project_portfolio",
		mcp.WithDescription("Project the caller's portfolio under a risk profile's target allocation over 5, 10 and 20 years."),
		mcp.WithNumber("risk_level",
			mcp.Min(1),
			mcp.Max(3),
			mcp.Description("Risk level: 1 Low, 2 Medium, 3 High. Defaults to Medium."),
		),
	)
}

// RegisterTools registers the planning tools and get_version on s and returns
// the number registered.
func RegisterTools(s *server.MCPServer, logger *common.Logger, planner *planning.Service) int {
	tools := []server.ServerTool{
		{Tool: DashboardTool(), Handler: DashboardToolHandler(logger, planner)},
		{Tool: GoalTool(), Handler: GoalToolHandler(logger, planner)},
		{Tool: ProjectionTool(), Handler: ProjectionToolHandler(logger, planner)},
	}
	version := VersionTool()
	names := []string{version.Name}
	for _, t := range tools {
		names = append(names, t.Tool.Name)
	}
	tools = append(tools, server.ServerTool{Tool: version, Handler: VersionToolHandler(names)})

	s.AddTools(tools...)
	return len(tools)
}
