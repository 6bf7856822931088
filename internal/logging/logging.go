package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls how the process logger is built.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	// Stderr forces every log line to stderr. The MCP stdio server needs
	// stdout for the protocol.
	Stderr bool
}

// New builds a zap logger. The json format uses the production encoder,
// everything else the development console encoder.
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(orDefault(opts.Level, "info"))))
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", opts.Level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(opts.Format) {
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	if opts.Stderr {
		cfg.OutputPaths = []string{"stderr"}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
