package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/fixbot/internal/audit"
)

// commands are recognised by exact, case-insensitive match while idle.
var commands = map[string]func(*Session, context.Context){
	"help":     (*Session).cmdHelp,
	"profile":  (*Session).cmdProfile,
	"clear":    (*Session).cmdClear,
	"reset":    (*Session).cmdReset,
	"history":  (*Session).cmdHistory,
	"solution": (*Session).cmdSolution,
}

func (s *Session) cmdHelp(ctx context.Context) {
	s.say(ctx, msgHelp)
}

func (s *Session) cmdProfile(ctx context.Context) {
	sum := s.engine.Ledger.Summary(s.username)

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 **%s's Profile**\n", sum.Username)
	fmt.Fprintf(&b, "Points: %d\n", sum.Points)
	fmt.Fprintf(&b, "Current Badge: **%s**\n\n", sum.Badge)
	b.WriteString("**Badge Levels:**\n\n")
	for _, t := range sum.Tiers {
		fmt.Fprintf(&b, "- %s: %d points\n", t.Title, t.Points)
	}
	if sum.HighestReached {
		b.WriteString("\nYou have the highest badge!")
	} else {
		fmt.Fprintf(&b, "\nPoints to next badge (**%s**): %d points", sum.NextBadge, sum.PointsToNext)
	}
	s.say(ctx, b.String())
}

func (s *Session) cmdClear(ctx context.Context) {
	s.renderer.Render(Message{Kind: KindClear})
	s.say(ctx, msgCleared)
}

// cmdReset drops every taught solution, rating and query count.
func (s *Session) cmdReset(ctx context.Context) {
	if err := s.engine.Knowledge.Reset(ctx); err != nil {
		s.logger.Warn("persisting knowledge reset", zap.Error(err))
	}
	if err := s.engine.Stats.Reset(ctx); err != nil {
		s.logger.Warn("persisting statistics reset", zap.Error(err))
	}
	s.audit(ctx, audit.Entry{
		Action:  audit.ActionKnowledgeReset,
		Summary: "Cleared taught solutions, ratings and query statistics",
	})
	s.say(ctx, msgReset)
	s.refreshChips()
}

func (s *Session) cmdHistory(ctx context.Context) {
	if s.engine.Transcripts == nil {
		s.say(ctx, msgNoHistory)
		return
	}
	queries, err := s.engine.Transcripts.RecentQueries(ctx, s.username, s.engine.cfg.HistoryLimit)
	if err != nil {
		s.logger.Warn("loading history", zap.Error(err))
	}
	if len(queries) == 0 {
		s.say(ctx, msgNoHistory)
		return
	}
	var b strings.Builder
	b.WriteString(msgHistoryHeader + "\n\n")
	for _, q := range queries {
		fmt.Fprintf(&b, "- %s\n", q)
	}
	s.emit(ctx, Message{Kind: KindText, Text: b.String(), Options: queries})
}

func (s *Session) cmdSolution(ctx context.Context) {
	s.state = State{Mode: ModeTeachingProblemPending}
	s.say(ctx, msgTeachProblem)
}
