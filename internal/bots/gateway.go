package bots

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// MessageHandler processes incoming messages and produces responses.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg IncomingMessage) (*OutgoingMessage, error)
}

// Gateway is the platform-agnostic entry point shared by the webhook
// handlers.
type Gateway struct {
	handler MessageHandler
	logger  *zap.Logger
}

// NewGateway creates a new Gateway with the given message handler.
func NewGateway(handler MessageHandler, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{handler: handler, logger: logger.Named("bots")}
}

// Process routes an incoming message through the handler.
func (g *Gateway) Process(ctx context.Context, msg IncomingMessage) (*OutgoingMessage, error) {
	start := time.Now()
	out, err := g.handler.HandleMessage(ctx, msg)
	if err != nil {
		g.logger.Warn("bot message failed",
			zap.String("platform", string(msg.Platform)),
			zap.String("channel", msg.ChannelID),
			zap.Error(err),
		)
		return nil, err
	}
	g.logger.Debug("bot message handled",
		zap.String("platform", string(msg.Platform)),
		zap.String("channel", msg.ChannelID),
		zap.Duration("took", time.Since(start)),
	)
	return out, nil
}
