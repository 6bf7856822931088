package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpserver "github.com/ziadkadry99/fixbot/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the troubleshooting knowledge base to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Stdout carries the protocol; every log line goes to stderr.
		rt, err := setup(context.Background(), true)
		if err != nil {
			return err
		}
		defer rt.Close()

		mcpserver.Version = Version

		rt.logger.Info("fixbot MCP server started on stdio",
			zap.Int("problems", rt.knowledge.Len()),
			zap.String("storage", string(rt.cfg.Storage.Driver)),
		)

		srv := mcpserver.NewServer(mcpserver.Deps{
			Knowledge:   rt.knowledge,
			Resolver:    rt.resolver,
			Ranker:      rt.ranker,
			Ledger:      rt.ledger,
			Audit:       rt.audit,
			TeachReward: rt.cfg.Gamification.TeachReward,
			Logger:      rt.logger.Named("mcp"),
		})
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
