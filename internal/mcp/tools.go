package mcp

import "github.com/mark3labs/mcp-go/mcp"

// findSolutionTool defines the find_solution MCP tool.
var findSolutionTool = mcp.NewTool("find_solution",
	mcp.WithDescription("Look up the stored solution for a described technical problem. Falls back to similar known problems when there is no close match."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Free-text description of the problem"),
	),
)

// listProblemsTool defines the list_problems MCP tool.
var listProblemsTool = mcp.NewTool("list_problems",
	mcp.WithDescription("List every known problem with its confidence and author."),
	mcp.WithString("layer",
		mcp.Description("Only list built-in (default) or user-taught (user) problems"),
		mcp.Enum("default", "user"),
	),
)

// topSuggestionsTool defines the top_suggestions MCP tool.
var topSuggestionsTool = mcp.NewTool("top_suggestions",
	mcp.WithDescription("Get the quick-pick problems shown to chat users: the most asked questions, then the built-in catalog."),
)

// getProfileTool defines the get_profile MCP tool.
var getProfileTool = mcp.NewTool("get_profile",
	mcp.WithDescription("Get a user's points, badge and progress to the next badge."),
	mcp.WithString("username",
		mcp.Required(),
		mcp.Description("Username as entered in chat"),
	),
)

// leaderboardTool defines the leaderboard MCP tool.
var leaderboardTool = mcp.NewTool("leaderboard",
	mcp.WithDescription("Get the users who taught the most solutions."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of users to return (default 10)"),
	),
)

// teachSolutionTool defines the teach_solution MCP tool.
var teachSolutionTool = mcp.NewTool("teach_solution",
	mcp.WithDescription("Store a solution for a problem. Replaces the text of a known problem but keeps its feedback history. The author earns points."),
	mcp.WithString("problem",
		mcp.Required(),
		mcp.Description("Problem description"),
	),
	mcp.WithString("solution",
		mcp.Required(),
		mcp.Description("Solution text; markdown is allowed"),
	),
	mcp.WithString("username",
		mcp.Required(),
		mcp.Description("Author to credit"),
	),
)
