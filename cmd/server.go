package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/fixbot/internal/audit"
	"github.com/ziadkadry99/fixbot/internal/bots"
	"github.com/ziadkadry99/fixbot/internal/dashboard"
	"github.com/ziadkadry99/fixbot/internal/gamification"
	"github.com/ziadkadry99/fixbot/internal/history"
	"github.com/ziadkadry99/fixbot/internal/importers"
	"github.com/ziadkadry99/fixbot/internal/knowledge"
	"github.com/ziadkadry99/fixbot/internal/matcher"
	"github.com/ziadkadry99/fixbot/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the chat server",
	Long: `Starts the fixbot HTTP server: the browser chat UI and its WebSocket,
the JSON API, and the Slack and Teams webhooks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := setup(ctx, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		port := rt.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: rt.cfg.Server.AllowAllOrigins,
		}, rt.db, rt.logger)

		processor := registerAllRoutes(srv, rt)
		defer processor.Close()

		go func() {
			<-ctx.Done()
			rt.logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		rt.logger.Info("fixbot server starting",
			zap.String("version", Version),
			zap.Int("port", port),
			zap.String("storage", string(rt.cfg.Storage.Driver)),
			zap.String("database", rt.db.Path()),
			zap.Int("problems", rt.knowledge.Len()),
		)

		return srv.Start()
	},
}

// registerAllRoutes wires up every feature's routes. It returns the bot
// processor so its sessions can be closed on shutdown.
func registerAllRoutes(srv *server.Server, rt *runtime) *bots.Processor {
	r := srv.Router()
	engine := rt.engine()

	// Knowledge, matching, profiles
	knowledge.RegisterRoutes(r, rt.knowledge)
	matcher.RegisterRoutes(r, rt.resolver, rt.completer)
	gamification.RegisterRoutes(r, rt.ledger)

	// Audit Trail
	audit.RegisterRoutes(r, rt.audit)

	// Transcripts
	history.RegisterRoutes(r, rt.history)

	// Catalog imports
	importStore := importers.NewStore(rt.db)
	importer := importers.NewImporter(rt.knowledge,
		importers.WithStore(importStore),
		importers.WithAudit(rt.audit),
		importers.WithLogger(rt.logger.Named("importers")),
	)
	importers.RegisterRoutes(r, importStore, importer)

	// Dashboard (chat UI)
	dash := dashboard.New(engine, rt.history, rt.logger)
	dash.RegisterRoutes(r)

	// Bots (Slack & Teams)
	botProcessor := bots.NewProcessor(engine, bots.WithSessionTTL(rt.cfg.Bots.SessionTTL))
	botGateway := bots.NewGateway(botProcessor, rt.logger)
	slackHandler := bots.NewSlackHandler(botGateway, rt.cfg.Bots.SlackSigningSecret)
	teamsHandler := bots.NewTeamsHandler(botGateway)
	bots.RegisterRoutes(r, slackHandler, teamsHandler)

	return botProcessor
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
