package bots

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ziadkadry99/fixbot/internal/chat"
	"github.com/ziadkadry99/fixbot/internal/config"
	"github.com/ziadkadry99/fixbot/internal/gamification"
	"github.com/ziadkadry99/fixbot/internal/knowledge"
	"github.com/ziadkadry99/fixbot/internal/matcher"
	"github.com/ziadkadry99/fixbot/internal/stats"
	"github.com/ziadkadry99/fixbot/internal/storage"
	"github.com/ziadkadry99/fixbot/internal/suggest"
)

// mockHandler implements MessageHandler for testing.
type mockHandler struct {
	lastMsg  IncomingMessage
	response *OutgoingMessage
	err      error
}

func (m *mockHandler) HandleMessage(_ context.Context, msg IncomingMessage) (*OutgoingMessage, error) {
	m.lastMsg = msg
	if m.err != nil {
		return nil, m.err
	}
	if m.response != nil {
		return m.response, nil
	}
	return &OutgoingMessage{
		ChannelID: msg.ChannelID,
		ThreadID:  msg.ThreadID,
		Text:      "mock response",
	}, nil
}

func newTestEngine(t *testing.T) (*chat.Engine, *knowledge.Store) {
	t.Helper()
	ctx := context.Background()
	cfg := config.DefaultConfig()
	backend := storage.NewMemory()

	kb, err := knowledge.NewStore(ctx, backend)
	if err != nil {
		t.Fatalf("knowledge store: %v", err)
	}
	st, err := stats.NewStore(ctx, backend, nil)
	if err != nil {
		t.Fatalf("stats store: %v", err)
	}
	ledger, err := gamification.NewLedger(ctx, backend, cfg.Gamification.Badges, nil)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	fuzzy, err := matcher.NewStrutilMatcher(cfg.Matcher.Metric)
	if err != nil {
		t.Fatalf("matcher: %v", err)
	}

	engine := chat.NewEngine(chat.Deps{
		Knowledge: kb,
		Resolver:  matcher.NewResolver(kb, fuzzy, cfg.Matcher),
		Stats:     st,
		Ledger:    ledger,
		Ranker:    suggest.NewRanker(st, kb, cfg.Chat.SuggestionLimit),
	})
	return engine, kb
}

func newTestProcessor(t *testing.T) (*Processor, *knowledge.Store) {
	t.Helper()
	engine, kb := newTestEngine(t)
	p := NewProcessor(engine)
	t.Cleanup(p.Close)
	return p, kb
}

func slackMsg(text string) IncomingMessage {
	return IncomingMessage{
		Platform:  PlatformSlack,
		ChannelID: "C1",
		UserID:    "U1",
		UserName:  "dana",
		Text:      text,
	}
}

// --- Processor tests ---

func TestProcessorAnswersKnownProblem(t *testing.T) {
	p, _ := newTestProcessor(t)

	resp, err := p.HandleMessage(context.Background(), slackMsg("laptop not turning on"))
	if err != nil {
		t.Fatalf("HandleMessage() error: %v", err)
	}
	if !strings.HasPrefix(resp.Text, "(Confidence: 100%)") {
		t.Errorf("expected confidence header, got %q", resp.Text)
	}
	if !strings.HasSuffix(resp.Text, "Was this helpful?") {
		t.Errorf("expected feedback question, got %q", resp.Text)
	}
	if len(resp.Choices) != 2 || resp.Choices[0] != "👍 Yes" || resp.Choices[1] != "👎 No" {
		t.Errorf("expected feedback choices, got %v", resp.Choices)
	}
	if resp.ChannelID != "C1" {
		t.Errorf("expected channel C1, got %s", resp.ChannelID)
	}
	if p.Sessions() != 1 {
		t.Errorf("expected 1 open session, got %d", p.Sessions())
	}
}

func TestProcessorYesPressesFeedback(t *testing.T) {
	p, kb := newTestProcessor(t)
	ctx := context.Background()

	if _, err := p.HandleMessage(ctx, slackMsg("laptop not turning on")); err != nil {
		t.Fatalf("HandleMessage() error: %v", err)
	}
	resp, err := p.HandleMessage(ctx, slackMsg("yes"))
	if err != nil {
		t.Fatalf("HandleMessage() error: %v", err)
	}
	if !strings.HasPrefix(resp.Text, "Glad I could help!") {
		t.Errorf("expected thanks, got %q", resp.Text)
	}
	if !strings.Contains(resp.Text, "Would you like to end this chat?") {
		t.Errorf("expected end question, got %q", resp.Text)
	}

	entry, ok := kb.Lookup("laptop not turning on")
	if !ok {
		t.Fatal("expected entry")
	}
	if entry.SuccessCount != 1 {
		t.Errorf("expected 1 success, got %d", entry.SuccessCount)
	}
}

func TestProcessorEndingChatDropsSession(t *testing.T) {
	p, _ := newTestProcessor(t)
	ctx := context.Background()

	for _, text := range []string{"laptop not turning on", "yes"} {
		if _, err := p.HandleMessage(ctx, slackMsg(text)); err != nil {
			t.Fatalf("HandleMessage(%q) error: %v", text, err)
		}
	}
	resp, err := p.HandleMessage(ctx, slackMsg("Yes"))
	if err != nil {
		t.Fatalf("HandleMessage() error: %v", err)
	}
	if resp.Text != "Chat ended. You can start a new issue anytime." {
		t.Errorf("unexpected end reply %q", resp.Text)
	}
	if len(resp.Choices) != 0 {
		t.Errorf("expected no choices, got %v", resp.Choices)
	}
	if p.Sessions() != 0 {
		t.Errorf("expected session to be dropped, got %d", p.Sessions())
	}
}

func TestProcessorTeachesThroughSolutionCommand(t *testing.T) {
	p, kb := newTestProcessor(t)
	ctx := context.Background()

	steps := []string{"solution", "printer jams", "open tray b"}
	var resp *OutgoingMessage
	for _, text := range steps {
		var err error
		resp, err = p.HandleMessage(ctx, slackMsg(text))
		if err != nil {
			t.Fatalf("HandleMessage(%q) error: %v", text, err)
		}
	}
	if !strings.Contains(resp.Text, `I've learned how to handle "printer jams"`) {
		t.Errorf("expected learned reply, got %q", resp.Text)
	}
	entry, ok := kb.Lookup("Printer Jams")
	if !ok {
		t.Fatal("expected taught entry")
	}
	if entry.SubmittedBy != "dana" {
		t.Errorf("expected submitter dana, got %s", entry.SubmittedBy)
	}
}

func TestProcessorSessionsArePerUser(t *testing.T) {
	p, _ := newTestProcessor(t)
	ctx := context.Background()

	first := slackMsg("solution")
	second := slackMsg("solution")
	second.UserID = "U2"
	second.UserName = ""

	for _, m := range []IncomingMessage{first, second} {
		if _, err := p.HandleMessage(ctx, m); err != nil {
			t.Fatalf("HandleMessage() error: %v", err)
		}
	}
	if p.Sessions() != 2 {
		t.Errorf("expected 2 sessions, got %d", p.Sessions())
	}
}

func TestProcessorForgetsIdleConversations(t *testing.T) {
	engine, _ := newTestEngine(t)
	p := NewProcessor(engine, WithSessionTTL(time.Minute))
	t.Cleanup(p.Close)
	now := time.Unix(1_700_000_000, 0)
	p.now = func() time.Time { return now }
	ctx := context.Background()

	idle := slackMsg("solution")
	active := slackMsg("help")
	active.UserID = "U2"

	if _, err := p.HandleMessage(ctx, idle); err != nil {
		t.Fatalf("HandleMessage() error: %v", err)
	}
	now = now.Add(40 * time.Second)
	if _, err := p.HandleMessage(ctx, active); err != nil {
		t.Fatalf("HandleMessage() error: %v", err)
	}
	if p.Sessions() != 2 {
		t.Fatalf("expected 2 sessions, got %d", p.Sessions())
	}

	now = now.Add(30 * time.Second)
	if _, err := p.HandleMessage(ctx, active); err != nil {
		t.Fatalf("HandleMessage() error: %v", err)
	}
	if p.Sessions() != 1 {
		t.Errorf("expected the idle conversation to be forgotten, got %d sessions", p.Sessions())
	}

	// The forgotten user starts over instead of resuming the teach flow.
	resp, err := p.HandleMessage(ctx, slackMsg("printer jam"))
	if err != nil {
		t.Fatalf("HandleMessage() error: %v", err)
	}
	if strings.Contains(resp.Text, "Now please provide the solution") {
		t.Errorf("expected a fresh conversation, got %q", resp.Text)
	}
	if p.Sessions() != 2 {
		t.Errorf("expected 2 sessions, got %d", p.Sessions())
	}
}

func TestProcessorEmptyMessage(t *testing.T) {
	p, _ := newTestProcessor(t)

	resp, err := p.HandleMessage(context.Background(), slackMsg("   "))
	if err != nil {
		t.Fatalf("HandleMessage() error: %v", err)
	}
	if resp.Text != emptyMessageReply {
		t.Errorf("expected empty message reply, got %q", resp.Text)
	}
	if p.Sessions() != 0 {
		t.Errorf("empty message should not open a session")
	}
}

// --- Gateway tests ---

func TestGatewayProcess(t *testing.T) {
	mock := &mockHandler{}
	gw := NewGateway(mock, nil)

	resp, err := gw.Process(context.Background(), slackMsg("hi"))
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if resp.Text != "mock response" {
		t.Errorf("expected mock response, got %q", resp.Text)
	}
	if mock.lastMsg.Text != "hi" {
		t.Errorf("expected handler to see message, got %q", mock.lastMsg.Text)
	}
}

func TestGatewayProcessError(t *testing.T) {
	mock := &mockHandler{err: fmt.Errorf("boom")}
	gw := NewGateway(mock, nil)

	if _, err := gw.Process(context.Background(), slackMsg("hi")); err == nil {
		t.Fatal("expected error")
	}
}

// --- Slack handler tests ---

func TestSlackURLVerification(t *testing.T) {
	mock := &mockHandler{}
	handler := NewSlackHandler(NewGateway(mock, nil), "")

	payload := `{"type":"url_verification","challenge":"test-challenge-123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/bots/slack/events", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.HandleEvent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["challenge"] != "test-challenge-123" {
		t.Errorf("expected challenge 'test-challenge-123', got %q", resp["challenge"])
	}
}

func TestSlackMessageEvent(t *testing.T) {
	mock := &mockHandler{response: &OutgoingMessage{
		ChannelID: "C456",
		Text:      "**Fix:**\n- restart",
		ThreadID:  "1234567890.000000",
		Choices:   []string{"Yes", "No"},
	}}
	handler := NewSlackHandler(NewGateway(mock, nil), "")

	payload := `{
		"type": "event_callback",
		"event": {
			"type": "message",
			"user": "U123",
			"text": "wifi keeps dropping",
			"channel": "C456",
			"ts": "1234567890.123456",
			"thread_ts": "1234567890.000000"
		}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/bots/slack/events", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.HandleEvent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastMsg.Platform != PlatformSlack {
		t.Errorf("expected platform slack, got %s", mock.lastMsg.Platform)
	}
	if mock.lastMsg.ChannelID != "C456" {
		t.Errorf("expected channel C456, got %s", mock.lastMsg.ChannelID)
	}
	if mock.lastMsg.UserID != "U123" {
		t.Errorf("expected user U123, got %s", mock.lastMsg.UserID)
	}
	if mock.lastMsg.Text != "wifi keeps dropping" {
		t.Errorf("unexpected text %q", mock.lastMsg.Text)
	}
	if mock.lastMsg.ThreadID != "1234567890.000000" {
		t.Errorf("expected thread_ts, got %q", mock.lastMsg.ThreadID)
	}

	var resp slackResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	want := "*Fix:*\n• restart\n_Reply: Yes / No_"
	if resp.Text != want {
		t.Errorf("expected %q, got %q", want, resp.Text)
	}
	if resp.ThreadTS != "1234567890.000000" {
		t.Errorf("expected thread_ts, got %q", resp.ThreadTS)
	}
}

func TestSlackBotMessageSkipped(t *testing.T) {
	mock := &mockHandler{}
	handler := NewSlackHandler(NewGateway(mock, nil), "")

	payload := `{
		"type": "event_callback",
		"event": {
			"type": "message",
			"text": "I am a bot",
			"channel": "C456",
			"bot_id": "B123"
		}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/bots/slack/events", strings.NewReader(payload))
	w := httptest.NewRecorder()

	handler.HandleEvent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastMsg.Text != "" {
		t.Errorf("bot message should have been skipped")
	}
}

func TestSlackNonMessageEventSkipped(t *testing.T) {
	mock := &mockHandler{}
	handler := NewSlackHandler(NewGateway(mock, nil), "")

	payload := `{"type":"event_callback","event":{"type":"reaction_added","user":"U1"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/bots/slack/events", strings.NewReader(payload))
	w := httptest.NewRecorder()

	handler.HandleEvent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastMsg.UserID != "" {
		t.Errorf("non-message event should have been skipped")
	}
}

func TestSlackHandlerError(t *testing.T) {
	mock := &mockHandler{err: fmt.Errorf("boom")}
	handler := NewSlackHandler(NewGateway(mock, nil), "")

	payload := `{"type":"event_callback","event":{"type":"message","user":"U1","text":"hi","channel":"C1"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/bots/slack/events", strings.NewReader(payload))
	w := httptest.NewRecorder()

	handler.HandleEvent(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestSlackInvalidJSON(t *testing.T) {
	handler := NewSlackHandler(NewGateway(&mockHandler{}, nil), "")

	req := httptest.NewRequest(http.MethodPost, "/api/bots/slack/events", strings.NewReader("{invalid"))
	w := httptest.NewRecorder()

	handler.HandleEvent(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func signSlack(secret, timestamp, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + timestamp + ":" + body))
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestSlackSignatureVerification(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := `{"type":"url_verification","challenge":"c"}`
	ts := fmt.Sprint(now.Unix())

	tests := []struct {
		name      string
		timestamp string
		signature string
		want      int
	}{
		{"missing headers", "", "", http.StatusUnauthorized},
		{"valid", ts, signSlack("test-secret", ts, payload), http.StatusOK},
		{"wrong secret", ts, signSlack("other", ts, payload), http.StatusUnauthorized},
		{"stale timestamp", "1699999000", signSlack("test-secret", "1699999000", payload), http.StatusUnauthorized},
		{"garbage timestamp", "abc", signSlack("test-secret", "abc", payload), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewSlackHandler(NewGateway(&mockHandler{}, nil), "test-secret")
			handler.now = func() time.Time { return now }

			req := httptest.NewRequest(http.MethodPost, "/api/bots/slack/events", strings.NewReader(payload))
			if tt.timestamp != "" {
				req.Header.Set("X-Slack-Request-Timestamp", tt.timestamp)
			}
			if tt.signature != "" {
				req.Header.Set("X-Slack-Signature", tt.signature)
			}
			w := httptest.NewRecorder()

			handler.HandleEvent(w, req)

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestVerifyTimestamp(t *testing.T) {
	now := time.Unix(1000, 0)
	if !verifyTimestamp("1000", now) {
		t.Error("current timestamp should verify")
	}
	if !verifyTimestamp("1300", now) {
		t.Error("5 minutes ahead should verify")
	}
	if verifyTimestamp("699", now) {
		t.Error("over 5 minutes old should fail")
	}
	if verifyTimestamp("", now) {
		t.Error("empty timestamp should fail")
	}
}

// --- Teams handler tests ---

func TestTeamsMessageActivity(t *testing.T) {
	mock := &mockHandler{response: &OutgoingMessage{
		ChannelID: "conv-1",
		Text:      "Glad I could help! ✅",
		Choices:   []string{"Yes", "No"},
	}}
	handler := NewTeamsHandler(NewGateway(mock, nil))

	payload := `{
		"type": "message",
		"id": "activity-1",
		"timestamp": "2024-01-15T12:00:00Z",
		"text": "yes",
		"from": {"id": "user-1", "name": "Alice"},
		"conversation": {"id": "conv-1"},
		"channelId": "msteams",
		"replyToId": "parent-1"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/bots/teams/activity", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.HandleActivity(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastMsg.Platform != PlatformTeams {
		t.Errorf("expected platform teams, got %s", mock.lastMsg.Platform)
	}
	if mock.lastMsg.ChannelID != "conv-1" {
		t.Errorf("expected channel conv-1, got %s", mock.lastMsg.ChannelID)
	}
	if mock.lastMsg.UserID != "user-1" {
		t.Errorf("expected user user-1, got %s", mock.lastMsg.UserID)
	}
	if mock.lastMsg.UserName != "Alice" {
		t.Errorf("expected username Alice, got %s", mock.lastMsg.UserName)
	}
	if mock.lastMsg.ThreadID != "parent-1" {
		t.Errorf("expected thread parent-1, got %s", mock.lastMsg.ThreadID)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["type"] != "message" {
		t.Errorf("expected response type 'message', got %q", resp["type"])
	}
	if resp["text"] != "Glad I could help! ✅\n\n_Reply: Yes / No_" {
		t.Errorf("unexpected text %q", resp["text"])
	}
	if resp["replyToId"] != "activity-1" {
		t.Errorf("expected replyToId activity-1, got %q", resp["replyToId"])
	}
}

func TestTeamsNonMessageActivitySkipped(t *testing.T) {
	mock := &mockHandler{}
	handler := NewTeamsHandler(NewGateway(mock, nil))

	payload := `{
		"type": "conversationUpdate",
		"from": {"id": "user-1", "name": "Alice"},
		"conversation": {"id": "conv-1"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/bots/teams/activity", strings.NewReader(payload))
	w := httptest.NewRecorder()

	handler.HandleActivity(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastMsg.Text != "" {
		t.Errorf("non-message activity should have been skipped")
	}
}

func TestTeamsInvalidJSON(t *testing.T) {
	handler := NewTeamsHandler(NewGateway(&mockHandler{}, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/bots/teams/activity", strings.NewReader("{invalid"))
	w := httptest.NewRecorder()

	handler.HandleActivity(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

// --- Slack formatting tests ---

func TestFormatSlackMessage(t *testing.T) {
	msg := &OutgoingMessage{
		ChannelID: "C123",
		Text:      "- item 1\n- item 2\nplain **line**",
		ThreadID:  "ts-1",
	}
	resp := formatSlackMessage(msg)
	if resp.Channel != "C123" {
		t.Errorf("expected channel C123, got %s", resp.Channel)
	}
	if resp.ThreadTS != "ts-1" {
		t.Errorf("expected thread_ts ts-1, got %s", resp.ThreadTS)
	}
	if resp.Text != "• item 1\n• item 2\nplain *line*" {
		t.Errorf("unexpected formatting %q", resp.Text)
	}
}

func TestFormatSlackMessageNoThread(t *testing.T) {
	resp := formatSlackMessage(&OutgoingMessage{ChannelID: "C123", Text: "simple response"})
	if resp.ThreadTS != "" {
		t.Errorf("expected empty thread_ts, got %s", resp.ThreadTS)
	}
	if resp.Text != "simple response" {
		t.Errorf("expected text unchanged, got %q", resp.Text)
	}
}
