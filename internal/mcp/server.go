// Package mcp exposes the knowledge base to AI agents as Model Context
// Protocol tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ziadkadry99/fixbot/internal/gamification"
	"github.com/ziadkadry99/fixbot/internal/knowledge"
	"github.com/ziadkadry99/fixbot/internal/matcher"
	"github.com/ziadkadry99/fixbot/internal/suggest"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Deps are the stores the tools read and write. Audit is optional.
type Deps struct {
	Knowledge   *knowledge.Store
	Resolver    *matcher.Resolver
	Ranker      *suggest.Ranker
	Ledger      *gamification.Ledger
	Audit       AuditLog
	TeachReward int
	Logger      *zap.Logger
}

// Server wraps an MCP server that exposes troubleshooting tools.
type Server struct {
	Deps
	mcp *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := &Server{Deps: deps}

	s.mcp = server.NewMCPServer(
		"fixbot",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(findSolutionTool, s.handleFindSolution)
	s.mcp.AddTool(listProblemsTool, s.handleListProblems)
	s.mcp.AddTool(topSuggestionsTool, s.handleTopSuggestions)
	s.mcp.AddTool(getProfileTool, s.handleGetProfile)
	s.mcp.AddTool(leaderboardTool, s.handleLeaderboard)
	s.mcp.AddTool(teachSolutionTool, s.handleTeachSolution)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
