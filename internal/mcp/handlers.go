package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ziadkadry99/fixbot/internal/audit"
	"github.com/ziadkadry99/fixbot/internal/knowledge"
	"github.com/ziadkadry99/fixbot/internal/matcher"
)

// AuditLog records knowledge changes. *audit.Store implements it.
type AuditLog interface {
	Log(ctx context.Context, entry audit.Entry) error
}

// handleFindSolution resolves a query against the knowledge base.
func (s *Server) handleFindSolution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	return mcp.NewToolResultText(s.formatResolution(s.Resolver.Resolve(query))), nil
}

func (s *Server) formatResolution(res matcher.Resolution) string {
	var sb strings.Builder
	switch res.Kind {
	case matcher.KindMatch:
		author := res.Record.SubmittedBy
		if author == "" {
			author = "Unknown"
		}
		fmt.Fprintf(&sb, "Problem: %s\n", res.Problem)
		fmt.Fprintf(&sb, "Confidence: %d%%\n", res.Confidence)
		fmt.Fprintf(&sb, "Taught by: %s (%s)\n", author, s.Ledger.Summary(author).Badge)
		fmt.Fprintf(&sb, "Feedback: %d helpful, %d not helpful\n", res.Record.SuccessCount, res.Record.FailureCount)
		sb.WriteString("\n")
		sb.WriteString(res.Record.SolutionText)
		sb.WriteString("\n")
	case matcher.KindSimilar:
		sb.WriteString("No stored solution matches closely. Similar known problems:\n")
		for _, p := range res.Similar {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	default:
		sb.WriteString("No matching or similar problem is known. Use teach_solution to add one.")
	}
	return sb.String()
}

// handleListProblems lists the merged knowledge view.
func (s *Server) handleListProblems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	layer := knowledge.Layer(request.GetString("layer", ""))

	var sb strings.Builder
	n := 0
	for _, e := range s.Knowledge.Entries() {
		if layer != "" && e.Layer != layer {
			continue
		}
		n++
		fmt.Fprintf(&sb, "- %s (confidence %d%%, by %s)\n", e.Problem, e.Confidence, e.SubmittedBy)
	}
	if n == 0 {
		return mcp.NewToolResultText("No problems stored."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d problem(s):\n%s", n, sb.String())), nil
}

// handleTopSuggestions returns the ranked quick picks.
func (s *Server) handleTopSuggestions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	picks := s.Ranker.Rank()
	if len(picks) == 0 {
		return mcp.NewToolResultText("No suggestions yet."), nil
	}
	var sb strings.Builder
	for i, p := range picks {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, p)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetProfile reports a user's gamification standing.
func (s *Server) handleGetProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username, err := request.RequireString("username")
	if err != nil || strings.TrimSpace(username) == "" {
		return mcp.NewToolResultError("missing required parameter: username"), nil
	}
	if _, ok := s.Ledger.Profile(username); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no profile for %q", username)), nil
	}

	sum := s.Ledger.Summary(username)
	var sb strings.Builder
	fmt.Fprintf(&sb, "User: %s\nPoints: %d\nBadge: %s\n", sum.Username, sum.Points, sum.Badge)
	if sum.HighestReached {
		sb.WriteString("Highest badge reached.\n")
	} else {
		fmt.Fprintf(&sb, "%d point(s) to %s\n", sum.PointsToNext, sum.NextBadge)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleLeaderboard lists the top contributors.
func (s *Server) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}
	rows := s.Ledger.Leaderboard(limit)
	if len(rows) == 0 {
		return mcp.NewToolResultText("No users yet."), nil
	}
	var sb strings.Builder
	for i, r := range rows {
		fmt.Fprintf(&sb, "%d. %s: %d points (%s)\n", i+1, r.Username, r.Points, r.Badge)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleTeachSolution stores a solution and rewards its author.
func (s *Server) handleTeachSolution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	problem, err := request.RequireString("problem")
	if err != nil || strings.TrimSpace(problem) == "" {
		return mcp.NewToolResultError("missing required parameter: problem"), nil
	}
	solution, err := request.RequireString("solution")
	if err != nil || strings.TrimSpace(solution) == "" {
		return mcp.NewToolResultError("missing required parameter: solution"), nil
	}
	username, err := request.RequireString("username")
	if err != nil || strings.TrimSpace(username) == "" {
		return mcp.NewToolResultError("missing required parameter: username"), nil
	}
	username = strings.TrimSpace(username)

	previous, existed := s.Knowledge.Lookup(problem)
	entry, err := s.Knowledge.Teach(ctx, problem, solution, username)
	if errors.Is(err, knowledge.ErrEmptyProblem) {
		return mcp.NewToolResultError("problem is empty"), nil
	}
	if err != nil {
		s.Logger.Warn("persisting knowledge", zap.String("problem", problem), zap.Error(err))
	}

	profile, err := s.Ledger.Reward(ctx, username, s.TeachReward)
	if err != nil {
		s.Logger.Warn("persisting reward", zap.String("user", username), zap.Error(err))
	}

	if s.Audit != nil {
		e := audit.Entry{
			ActorType: audit.ActorBot,
			ActorID:   username,
			Action:    audit.ActionSolutionTaught,
			Problem:   entry.Problem,
			Summary:   "Taught via MCP",
			NewValue:  entry.SolutionText,
		}
		if existed {
			e.Action = audit.ActionSolutionUpdated
			e.PreviousValue = previous.SolutionText
		}
		if err := s.Audit.Log(ctx, e); err != nil {
			s.Logger.Warn("writing audit entry", zap.Error(err))
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Stored solution for %q. %s now has %d points (%s).",
		entry.Problem, username, profile.Points, profile.Badge,
	)), nil
}
