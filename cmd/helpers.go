package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ziadkadry99/fixbot/internal/audit"
	"github.com/ziadkadry99/fixbot/internal/chat"
	"github.com/ziadkadry99/fixbot/internal/config"
	"github.com/ziadkadry99/fixbot/internal/db"
	"github.com/ziadkadry99/fixbot/internal/gamification"
	"github.com/ziadkadry99/fixbot/internal/history"
	"github.com/ziadkadry99/fixbot/internal/importers"
	"github.com/ziadkadry99/fixbot/internal/knowledge"
	"github.com/ziadkadry99/fixbot/internal/logging"
	"github.com/ziadkadry99/fixbot/internal/matcher"
	"github.com/ziadkadry99/fixbot/internal/stats"
	"github.com/ziadkadry99/fixbot/internal/storage"
	"github.com/ziadkadry99/fixbot/internal/suggest"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `fixbot init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the process logger. --verbose forces debug level.
// stderrOnly keeps stdout free for protocol output.
func newLogger(cfg *config.Config, stderrOnly bool) (*zap.Logger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: cfg.Log.Format,
		Stderr: stderrOnly,
	})
}

// runtime is every store a command may need, opened from one config.
type runtime struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *db.DB
	backend   storage.Backend
	knowledge *knowledge.Store
	stats     *stats.Store
	ledger    *gamification.Ledger
	resolver  *matcher.Resolver
	completer *matcher.Completer
	ranker    *suggest.Ranker
	history   *history.Store
	audit     *audit.Store
}

// openRuntime opens the database and blob backend and loads every store.
// Catalog files from knowledge.catalog_files extend the default layer.
func openRuntime(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger}

	dbPath := filepath.Join(cfg.DataDir, db.FileName)
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	rt.db = database

	backend, err := storage.Open(ctx, cfg.Storage, database)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
	}
	rt.backend = backend

	catalog, err := importers.LoadCatalog(cfg.Knowledge.CatalogFiles, logger)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("loading catalog files: %w", err)
	}

	rt.knowledge, err = knowledge.NewStore(ctx, backend,
		knowledge.WithLogger(logger.Named("knowledge")),
		knowledge.WithCatalog(catalog),
	)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("loading knowledge: %w", err)
	}
	rt.stats, err = stats.NewStore(ctx, backend, logger.Named("stats"))
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("loading query statistics: %w", err)
	}
	rt.ledger, err = gamification.NewLedger(ctx, backend, cfg.Gamification.Badges, logger.Named("gamification"))
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("loading profiles: %w", err)
	}

	fuzzy, err := matcher.NewStrutilMatcher(cfg.Matcher.Metric)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.resolver = matcher.NewResolver(rt.knowledge, fuzzy, cfg.Matcher)
	rt.completer = matcher.NewCompleter(rt.knowledge)
	rt.ranker = suggest.NewRanker(rt.stats, rt.knowledge, cfg.Chat.SuggestionLimit)
	rt.history = history.NewStore(database)
	rt.audit = audit.NewStore(database)
	return rt, nil
}

// engine builds a chat engine over the runtime's stores.
func (rt *runtime) engine(opts ...chat.Option) *chat.Engine {
	base := []chat.Option{
		chat.WithChatConfig(rt.cfg.Chat),
		chat.WithTeachReward(rt.cfg.Gamification.TeachReward),
		chat.WithLogger(rt.logger.Named("chat")),
	}
	return chat.NewEngine(chat.Deps{
		Knowledge:   rt.knowledge,
		Resolver:    rt.resolver,
		Stats:       rt.stats,
		Ledger:      rt.ledger,
		Ranker:      rt.ranker,
		Transcripts: rt.history,
		Audit:       rt.audit,
	}, append(base, opts...)...)
}

// Close releases the backend and database.
func (rt *runtime) Close() {
	if rt.backend != nil {
		if err := rt.backend.Close(); err != nil {
			rt.logger.Warn("closing storage", zap.Error(err))
		}
	}
	if rt.db != nil {
		rt.db.Close()
	}
	_ = rt.logger.Sync()
}

// setup loads config, logger and runtime in one step.
func setup(ctx context.Context, stderrOnly bool) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg, stderrOnly)
	if err != nil {
		return nil, err
	}
	return openRuntime(ctx, cfg, logger)
}
