package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/ziadkadry99/fixbot/internal/audit"
	"github.com/ziadkadry99/fixbot/internal/history"
	"github.com/ziadkadry99/fixbot/internal/knowledge"
	"github.com/ziadkadry99/fixbot/internal/matcher"
)

// Session is one conversation. All methods are safe for concurrent use;
// inputs are processed one at a time.
type Session struct {
	mu       sync.Mutex
	engine   *Engine
	renderer Renderer
	logger   *zap.Logger

	channel   string
	immediate bool

	state         State
	username      string
	muted         bool
	voiceUsed     bool
	feedbackGiven bool
	pending       []pendingChoice
	idle          Timer
	transcriptID  string
	closed        bool
}

type pendingChoice struct {
	Choice
	group   string
	subject string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithUsername starts the session already introduced as name.
func WithUsername(name string) SessionOption {
	return func(s *Session) { s.username = strings.TrimSpace(name) }
}

// WithChannel labels the session's transcript.
func WithChannel(channel string) SessionOption {
	return func(s *Session) { s.channel = channel }
}

// WithoutDelays makes every deferred message immediate and disables the
// idle timer.
func WithoutDelays() SessionOption {
	return func(s *Session) { s.immediate = true }
}

// NewSession creates a session rendering to r. Call Start to begin.
func (e *Engine) NewSession(r Renderer, opts ...SessionOption) *Session {
	s := &Session{
		engine:   e,
		renderer: r,
		channel:  history.ChannelWeb,
		state:    State{Mode: ModeAwaitingUsername},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.username != "" {
		s.state = State{Mode: ModeIdle}
	}
	s.logger = e.logger.With(zap.String("channel", s.channel))
	return s
}

// Start greets the user. A session created WithUsername skips the name
// question and only publishes the quick picks.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.username != "" {
		s.introduce(ctx)
		s.refreshChips()
		return
	}
	s.say(ctx, msgAskName)
	s.refreshChips()
}

// Close stops the idle timer. Deferred messages still in flight are
// dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopIdle()
}

// State returns the current mode and subject.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// PendingChoices returns the buttons currently on offer, oldest first.
func (s *Session) PendingChoices() []Choice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Choice, len(s.pending))
	for i, p := range s.pending {
		out[i] = p.Choice
	}
	return out
}

// MatchChoice finds the oldest pending choice whose label reads as text,
// ignoring case, emoji and punctuation. It lets text-only clients answer
// "yes" to a button.
func (s *Session) MatchChoice(text string) (ChoiceID, bool) {
	want := labelKey(text)
	if want == "" {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pending {
		if labelKey(p.Label) == want {
			return p.ID, true
		}
	}
	return "", false
}

func labelKey(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// ToggleMute flips speech output and returns the new muted state.
func (s *Session) ToggleMute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = !s.muted
	return s.muted
}

// HandleInput processes one line typed by the user. Blank input is
// ignored.
func (s *Session) HandleInput(ctx context.Context, raw string) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.handle(ctx, text)
	s.armIdle()
}

// HandleVoice processes a speech transcript. Once the user has spoken,
// bot replies are marked for speech until muted.
func (s *Session) HandleVoice(ctx context.Context, transcript string) {
	text := strings.TrimSpace(transcript)
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.voiceUsed = true
	s.renderer.Render(Message{Kind: KindText, Text: fmt.Sprintf(msgYouSaid, text), FromUser: true})
	s.handle(ctx, text)
	s.armIdle()
}

// Choose presses an offered button. Choices not on offer are ignored.
// Pressing either half of a pair withdraws both.
func (s *Session) Choose(ctx context.Context, id ChoiceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	picked, ok := s.take(id)
	if !ok {
		s.logger.Debug("ignoring choice not on offer", zap.String("choice", string(id)))
		return
	}

	switch id {
	case ChoiceSubmitSolution:
		s.state = State{Mode: ModeAwaitingSubmittedSolution, Subject: picked.subject}
		s.say(ctx, msgTypeSolution)
	case ChoiceFeedbackYes:
		s.feedback(ctx, picked.subject, true)
	case ChoiceFeedbackNo:
		s.feedback(ctx, picked.subject, false)
	case ChoiceUpdateYes:
		s.state = State{Mode: ModeAwaitingSubmittedSolution, Subject: picked.subject}
		s.say(ctx, msgImproved)
	case ChoiceUpdateNo:
		s.say(ctx, msgNoWorries)
	case ChoiceEndYes:
		// No leftover button may leave SessionEnded before the reset runs.
		s.withdrawAll()
		s.say(ctx, msgEnded)
		s.state = State{Mode: ModeSessionEnded}
		s.stopIdle()
		s.after(s.engine.cfg.EndDelay, func() {
			if s.state.Mode == ModeSessionEnded {
				s.resetChat(ctx)
			}
		})
		return
	case ChoiceEndNo:
		s.say(ctx, msgCarryOn)
	}
	s.armIdle()
}

// handle dispatches text by mode. Callers hold s.mu.
func (s *Session) handle(ctx context.Context, text string) {
	if s.state.Mode == ModeSessionEnded {
		s.resetChat(ctx)
	}

	switch s.state.Mode {
	case ModeAwaitingUsername:
		s.username = text
		s.introduce(ctx)
		s.say(ctx, fmt.Sprintf(msgGreeting, text))
		s.renderer.Render(Message{Kind: KindTyping})
		s.after(s.engine.cfg.TypingDelay, func() { s.say(ctx, msgPrompt) })
		s.state = State{Mode: ModeIdle}
		s.refreshChips()
		return

	case ModeTeachingProblemPending:
		s.echo(ctx, text, history.KindTeach)
		s.state = State{Mode: ModeTeachingSolutionPending, Subject: text}
		s.say(ctx, fmt.Sprintf(msgTeachSolution, text))
		return

	case ModeTeachingSolutionPending:
		s.echo(ctx, text, history.KindTeach)
		s.saveSolution(ctx, s.state.Subject, text)
		s.say(ctx, msgTeachSaved)
		s.state = State{Mode: ModeIdle}
		return

	case ModeAwaitingSubmittedSolution:
		s.echo(ctx, text, history.KindTeach)
		s.saveSolution(ctx, s.state.Subject, text)
		s.state = State{Mode: ModeIdle}
		return

	case ModeAwaitingFeedback:
		s.withdraw(groupFeedback)
		s.state = State{Mode: ModeIdle}
	}

	if cmd, ok := commands[strings.ToLower(text)]; ok {
		s.echo(ctx, text, history.KindCommand)
		cmd(s, ctx)
		return
	}

	s.echo(ctx, text, history.KindQuery)
	if _, err := s.engine.Stats.Record(ctx, text); err != nil {
		s.logger.Warn("recording query statistics", zap.Error(err))
	}
	bg := context.WithoutCancel(ctx)
	s.after(s.engine.cfg.ThinkingDelay, func() { s.answer(bg, text) })
}

// answer runs the matching pipeline for query and presents the result.
func (s *Session) answer(ctx context.Context, query string) {
	res := s.engine.Resolver.Resolve(query)
	s.logger.Debug("resolved query",
		zap.String("query", query),
		zap.String("kind", string(res.Kind)),
		zap.String("problem", res.Problem),
		zap.Float64("score", res.Score),
	)

	switch res.Kind {
	case matcher.KindMatch:
		author := res.Record.SubmittedBy
		if author == "" {
			author = unknownAuthor
		}
		p := s.engine.authorProfile(author)
		s.emit(ctx, Message{
			Kind:   KindText,
			Text:   fmt.Sprintf(msgAnswer, res.Confidence, res.Record.SolutionText, author, p.Badge, p.Points),
			Speech: res.Record.SolutionText,
		})
		if s.state.Mode == ModeIdle {
			s.state = State{Mode: ModeAwaitingFeedback, Subject: res.Problem}
		}
		s.offer(ctx, groupFeedback, res.Problem, msgWasHelpful, feedbackChoices)

	case matcher.KindSimilar:
		var b strings.Builder
		for _, p := range res.Similar {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		s.emit(ctx, Message{Kind: KindText, Text: fmt.Sprintf(msgSimilar, b.String()), Options: res.Similar})

	default:
		s.offer(ctx, groupSubmit, query, msgNoMatch, submitChoices)
	}
}

// introduce ensures the user's profile and opens their transcript.
func (s *Session) introduce(ctx context.Context) {
	if _, err := s.engine.Ledger.Ensure(ctx, s.username); err != nil {
		s.logger.Warn("saving profile", zap.String("user", s.username), zap.Error(err))
	}
	if s.engine.Transcripts == nil {
		return
	}
	sess, err := s.engine.Transcripts.CreateSession(ctx, s.username, s.channel)
	if err != nil {
		s.logger.Warn("opening transcript", zap.Error(err))
		return
	}
	s.transcriptID = sess.ID
}

// saveSolution teaches problem and rewards the current user.
func (s *Session) saveSolution(ctx context.Context, problem, solution string) {
	previous, existed := s.engine.Knowledge.Lookup(problem)

	entry, err := s.engine.Knowledge.Teach(ctx, problem, solution, s.username)
	if errors.Is(err, knowledge.ErrEmptyProblem) {
		s.logger.Warn("refusing to teach a blank problem")
		return
	}
	if err != nil {
		s.logger.Warn("persisting taught solution", zap.String("problem", entry.Problem), zap.Error(err))
	}

	action := audit.ActionSolutionTaught
	summary := "Taught a new solution"
	if existed {
		action = audit.ActionSolutionUpdated
		summary = "Replaced an existing solution"
	}
	s.audit(ctx, audit.Entry{
		Action:        action,
		Problem:       entry.Problem,
		Summary:       summary,
		PreviousValue: previous.SolutionText,
		NewValue:      solution,
	})

	s.say(ctx, fmt.Sprintf(msgLearned, s.username, problem))

	if _, err := s.engine.Ledger.Reward(ctx, s.username, s.engine.reward); err != nil {
		s.logger.Warn("persisting reward", zap.String("user", s.username), zap.Error(err))
	}
	s.refreshChips()
}

func (s *Session) feedback(ctx context.Context, problem string, helpful bool) {
	if helpful {
		s.say(ctx, msgGlad)
	}

	entry, err := s.engine.Knowledge.RecordFeedback(ctx, problem, helpful)
	switch {
	case errors.Is(err, knowledge.ErrUnknownProblem):
		if !helpful {
			s.say(ctx, msgNotStored)
		}
	case err != nil:
		s.logger.Warn("persisting feedback", zap.String("problem", problem), zap.Error(err))
		fallthrough
	default:
		action := audit.ActionFeedbackPositive
		if !helpful {
			action = audit.ActionFeedbackNegative
		}
		s.audit(ctx, audit.Entry{
			Action:   action,
			Problem:  entry.Problem,
			Summary:  fmt.Sprintf("Confidence now %d%% (%d helpful, %d not)", entry.Confidence, entry.SuccessCount, entry.FailureCount),
			NewValue: fmt.Sprint(entry.Confidence),
		})
		if !helpful {
			s.offer(ctx, groupUpdate, entry.Problem, msgSorry, updateChoices)
		}
		s.refreshChips()
	}

	s.feedbackGiven = true
	if s.state.Mode == ModeAwaitingFeedback {
		s.state = State{Mode: ModeIdle}
	}
	s.offerEnd(ctx)
}

func (s *Session) offerEnd(ctx context.Context) {
	s.offer(ctx, groupEnd, "", msgEndQuestion, endChoices)
}

// resetChat forgets the user and asks for a name again.
func (s *Session) resetChat(ctx context.Context) {
	s.stopIdle()
	s.withdrawAll()
	s.state = State{Mode: ModeAwaitingUsername}
	s.username = ""
	s.feedbackGiven = false
	s.voiceUsed = false
	s.transcriptID = ""
	s.renderer.Render(Message{Kind: KindClear})
	s.say(ctx, msgAskName)
	s.refreshChips()
}

// offer shows text with choices bound to subject, replacing any choices
// of the same group still on offer.
func (s *Session) offer(ctx context.Context, group, subject, text string, choices []Choice) {
	s.withdraw(group)
	for _, c := range choices {
		s.pending = append(s.pending, pendingChoice{Choice: c, group: group, subject: subject})
	}
	s.emit(ctx, Message{Kind: KindText, Text: text, Choices: append([]Choice(nil), choices...)})
}

// take removes id's whole group from offer.
func (s *Session) take(id ChoiceID) (pendingChoice, bool) {
	for _, p := range s.pending {
		if p.ID == id {
			s.withdraw(p.group)
			return p, true
		}
	}
	return pendingChoice{}, false
}

func (s *Session) withdraw(group string) {
	var removed []Choice
	kept := s.pending[:0]
	for _, p := range s.pending {
		if p.group == group {
			removed = append(removed, p.Choice)
			continue
		}
		kept = append(kept, p)
	}
	s.pending = kept
	if len(removed) > 0 {
		s.renderer.Render(Message{Kind: KindWithdraw, Choices: removed})
	}
}

func (s *Session) withdrawAll() {
	if len(s.pending) == 0 {
		return
	}
	removed := make([]Choice, len(s.pending))
	for i, p := range s.pending {
		removed[i] = p.Choice
	}
	s.pending = nil
	s.renderer.Render(Message{Kind: KindWithdraw, Choices: removed})
}

func (s *Session) refreshChips() {
	if chips := s.engine.Suggestions(); chips != nil {
		s.renderer.Render(Message{Kind: KindChips, Chips: chips})
	}
}

// echo shows the user's own message and records it.
func (s *Session) echo(ctx context.Context, text string, kind history.Kind) {
	s.renderer.Render(Message{Kind: KindText, Text: text, FromUser: true})
	s.record(ctx, history.RoleUser, kind, text)
}

func (s *Session) say(ctx context.Context, text string) {
	s.emit(ctx, Message{Kind: KindText, Text: text})
}

// emit renders a bot message, filling in its speech fields.
func (s *Session) emit(ctx context.Context, m Message) {
	if m.Speech == "" {
		m.Speech = s.engine.markdown.Plain(m.Text)
	}
	m.Speak = s.voiceUsed && !s.muted
	s.renderer.Render(m)
	s.record(ctx, history.RoleAssistant, history.KindReply, m.Text)
}

func (s *Session) record(ctx context.Context, role history.Role, kind history.Kind, text string) {
	if s.engine.Transcripts == nil || s.transcriptID == "" {
		return
	}
	_, err := s.engine.Transcripts.AddMessage(ctx, history.Message{
		SessionID: s.transcriptID,
		Role:      role,
		Kind:      kind,
		Content:   text,
	})
	if err != nil {
		s.logger.Warn("recording transcript", zap.Error(err))
	}
}

func (s *Session) audit(ctx context.Context, e audit.Entry) {
	if s.engine.Audit == nil {
		return
	}
	e.ActorType = audit.ActorUser
	if s.channel == history.ChannelSlack || s.channel == history.ChannelTeams {
		e.ActorType = audit.ActorBot
	}
	e.ActorID = s.username
	e.SessionID = s.transcriptID
	if err := s.engine.Audit.Log(ctx, e); err != nil {
		s.logger.Warn("writing audit entry", zap.String("action", string(e.Action)), zap.Error(err))
	}
}

// after runs fn with the session locked once d has passed. A zero delay,
// or a session created WithoutDelays, runs fn inline. Callers hold s.mu.
func (s *Session) after(d time.Duration, fn func()) {
	if d <= 0 || s.immediate {
		fn()
		return
	}
	s.engine.scheduler.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		fn()
	})
}

// armIdle restarts the inactivity timer. When it fires after feedback
// has been given, the user is asked whether to end the chat.
func (s *Session) armIdle() {
	s.stopIdle()
	timeout := s.engine.cfg.IdleTimeout
	if timeout <= 0 || s.immediate {
		return
	}
	var t Timer
	t = s.engine.scheduler.AfterFunc(timeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.idle != t {
			return
		}
		s.idle = nil
		if s.closed || !s.feedbackGiven {
			return
		}
		s.offerEnd(context.Background())
	})
	s.idle = t
}

func (s *Session) stopIdle() {
	if s.idle != nil {
		s.idle.Stop()
		s.idle = nil
	}
}
