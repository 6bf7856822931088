package bots

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ziadkadry99/fixbot/internal/chat"
)

const emptyMessageReply = "I received an empty message. Please provide some text."

// Processor keeps one chat session per platform, channel and user and
// turns each incoming message into that session's replies.
type Processor struct {
	engine *chat.Engine
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*conversation
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithSessionTTL forgets conversations nobody has written to for d.
// Zero keeps them until the chat is ended.
func WithSessionTTL(d time.Duration) ProcessorOption {
	return func(p *Processor) { p.ttl = d }
}

// conversation pairs a session with the buffer its replies land in.
type conversation struct {
	mu      sync.Mutex
	session  *chat.Session
	out      *collector
	lastSeen time.Time
}

// collector is a chat.Renderer that keeps only what a text platform can
// show: the bot's own bubbles.
type collector struct {
	texts   []string
	clearAt int
}

func (c *collector) Render(m chat.Message) {
	switch m.Kind {
	case chat.KindText:
		if !m.FromUser {
			c.texts = append(c.texts, m.Text)
		}
	case chat.KindClear:
		c.clearAt = len(c.texts)
	}
}

func (c *collector) drain() []string {
	out := c.texts
	c.texts = nil
	c.clearAt = 0
	return out
}

// NewProcessor creates a new message processor.
func NewProcessor(engine *chat.Engine, opts ...ProcessorOption) *Processor {
	p := &Processor{
		engine:   engine,
		now:      time.Now,
		sessions: make(map[string]*conversation),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleMessage feeds msg to the sender's session. A reply that reads
// as one of the buttons on offer ("yes", "no", "submit solution")
// presses it; anything else is typed input.
func (p *Processor) HandleMessage(ctx context.Context, msg IncomingMessage) (*OutgoingMessage, error) {
	out := &OutgoingMessage{ChannelID: msg.ChannelID, ThreadID: msg.ThreadID}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		out.Text = emptyMessageReply
		return out, nil
	}

	key := string(msg.Platform) + "/" + msg.ChannelID + "/" + msg.UserID
	conv := p.conversation(ctx, key, msg)

	conv.mu.Lock()
	defer conv.mu.Unlock()

	if id, ok := conv.session.MatchChoice(text); ok {
		conv.session.Choose(ctx, id)
	} else {
		conv.session.HandleInput(ctx, text)
	}

	clearAt := conv.out.clearAt
	texts := conv.out.drain()

	// Ending the chat resets the session to ask for a name. On a chat
	// platform the name is already known, so the conversation is dropped
	// and the next message starts a fresh one.
	if conv.session.State().Mode == chat.ModeAwaitingUsername {
		texts = texts[:clearAt]
		p.drop(key, conv)
	} else {
		for _, c := range conv.session.PendingChoices() {
			out.Choices = append(out.Choices, c.Label)
		}
	}

	out.Text = strings.Join(texts, "\n\n")
	return out, nil
}

func (p *Processor) conversation(ctx context.Context, key string, msg IncomingMessage) *conversation {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	p.evictIdle(now)
	if conv, ok := p.sessions[key]; ok {
		conv.lastSeen = now
		return conv
	}

	name := msg.UserName
	if name == "" {
		name = msg.UserID
	}
	conv := &conversation{out: &collector{}, lastSeen: now}
	conv.session = p.engine.NewSession(conv.out,
		chat.WithUsername(name),
		chat.WithChannel(string(msg.Platform)),
		chat.WithoutDelays(),
	)
	conv.session.Start(ctx)
	conv.out.drain()
	p.sessions[key] = conv
	return conv
}

// evictIdle closes conversations unused since now-ttl. Callers hold p.mu.
func (p *Processor) evictIdle(now time.Time) {
	if p.ttl <= 0 {
		return
	}
	for key, conv := range p.sessions {
		if now.Sub(conv.lastSeen) >= p.ttl {
			conv.session.Close()
			delete(p.sessions, key)
		}
	}
}

func (p *Processor) drop(key string, conv *conversation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sessions[key] == conv {
		delete(p.sessions, key)
	}
	conv.session.Close()
}

// Sessions reports how many conversations are open.
func (p *Processor) Sessions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Close ends every open conversation.
func (p *Processor) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, conv := range p.sessions {
		conv.session.Close()
		delete(p.sessions, key)
	}
}
