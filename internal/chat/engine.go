// Package chat is the conversation state machine. A Session turns user
// input and button presses into bot messages, driving the knowledge
// base, statistics and gamification stores along the way.
package chat

import (
	"context"

	"go.uber.org/zap"

	"github.com/ziadkadry99/fixbot/internal/audit"
	"github.com/ziadkadry99/fixbot/internal/config"
	"github.com/ziadkadry99/fixbot/internal/gamification"
	"github.com/ziadkadry99/fixbot/internal/history"
	"github.com/ziadkadry99/fixbot/internal/knowledge"
	"github.com/ziadkadry99/fixbot/internal/matcher"
	"github.com/ziadkadry99/fixbot/internal/render"
	"github.com/ziadkadry99/fixbot/internal/stats"
	"github.com/ziadkadry99/fixbot/internal/suggest"
)

// DefaultTeachReward is the points granted per taught solution.
const DefaultTeachReward = 5

// Transcripts records conversations. *history.Store implements it.
type Transcripts interface {
	CreateSession(ctx context.Context, userID, channel string) (*history.Session, error)
	AddMessage(ctx context.Context, msg history.Message) (*history.Message, error)
	RecentQueries(ctx context.Context, userID string, limit int) ([]string, error)
}

// AuditLog records knowledge changes. *audit.Store implements it.
type AuditLog interface {
	Log(ctx context.Context, entry audit.Entry) error
}

// Deps are the stores a session works against. Transcripts and Audit
// are optional.
type Deps struct {
	Knowledge   *knowledge.Store
	Resolver    *matcher.Resolver
	Stats       *stats.Store
	Ledger      *gamification.Ledger
	Ranker      *suggest.Ranker
	Transcripts Transcripts
	Audit       AuditLog
}

// Engine holds what every session shares.
type Engine struct {
	Deps
	cfg       config.ChatConfig
	reward    int
	scheduler Scheduler
	markdown  *render.Markdown
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithChatConfig sets pacing and list sizes.
func WithChatConfig(cfg config.ChatConfig) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithTeachReward sets the points granted per taught solution.
func WithTeachReward(points int) Option {
	return func(e *Engine) { e.reward = points }
}

func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine builds an engine. Without WithChatConfig every delay is zero
// and the idle timer is off.
func NewEngine(deps Deps, opts ...Option) *Engine {
	e := &Engine{
		Deps:      deps,
		reward:    DefaultTeachReward,
		scheduler: RealScheduler,
		markdown:  render.New(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.HistoryLimit <= 0 {
		e.cfg.HistoryLimit = 5
	}
	return e
}

// Suggestions returns the current quick-pick problems.
func (e *Engine) Suggestions() []string {
	if e.Ranker == nil {
		return nil
	}
	return e.Ranker.Rank()
}

// authorProfile reports the standing shown under an answer. Authors
// without a profile, such as the built-in catalog, show as new users.
func (e *Engine) authorProfile(name string) gamification.Profile {
	if p, ok := e.Ledger.Profile(name); ok {
		return p
	}
	return gamification.Profile{Points: 0, Badge: e.Ledger.BadgeFor(0)}
}
