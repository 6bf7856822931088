// Package dashboard serves the browser chat: the embedded page, its
// WebSocket and the small JSON endpoints the page polls.
package dashboard

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/fixbot/internal/chat"
	"github.com/ziadkadry99/fixbot/internal/history"
	"github.com/ziadkadry99/fixbot/internal/render"
)

// Dashboard provides the web chat and its statistics.
type Dashboard struct {
	engine      *chat.Engine
	transcripts *history.Store
	markdown    *render.Markdown
	logger      *zap.Logger
}

// New creates a Dashboard. transcripts may be nil.
func New(engine *chat.Engine, transcripts *history.Store, logger *zap.Logger) *Dashboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dashboard{
		engine:      engine,
		transcripts: transcripts,
		markdown:    render.New(),
		logger:      logger.Named("dashboard"),
	}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Get("/api/dashboard/stats", d.handleStats)
	r.Get("/api/dashboard/suggestions", d.handleSuggestions)
	r.Get("/ws/chat", d.handleWebSocket)
}
