package dashboard

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/fixbot/internal/chat"
	"github.com/ziadkadry99/fixbot/internal/history"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type    string `json:"type"` // "message", "voice", "choice" or "mute"
	Content string `json:"content"`
	Choice  string `json:"choice,omitempty"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type    string        `json:"type"` // "message", "mute" or "error"
	Kind    chat.Kind     `json:"kind,omitempty"`
	From    string        `json:"from,omitempty"` // "user" or "bot"
	Content string        `json:"content,omitempty"`
	HTML    string        `json:"html,omitempty"`
	Speech  string        `json:"speech,omitempty"`
	Speak   bool          `json:"speak,omitempty"`
	Choices []chat.Choice `json:"choices,omitempty"`
	Options []string      `json:"options,omitempty"`
	Chips   []string      `json:"chips,omitempty"`
	Muted   *bool         `json:"muted,omitempty"`
}

// socket serializes writes from the read loop and from deferred bot
// messages.
type socket struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	d      *Dashboard
	closed bool
}

func (s *socket) send(resp chatResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err := s.conn.WriteJSON(resp); err != nil {
		s.d.logger.Debug("websocket write", zap.Error(err))
		s.closed = true
	}
}

func (s *socket) sendError(message string) {
	s.send(chatResponse{Type: "error", Content: message})
}

// Render implements chat.Renderer.
func (s *socket) Render(m chat.Message) {
	resp := chatResponse{
		Type:    "message",
		Kind:    m.Kind,
		From:    "bot",
		Content: m.Text,
		Speech:  m.Speech,
		Speak:   m.Speak,
		Choices: m.Choices,
		Options: m.Options,
		Chips:   m.Chips,
	}
	if m.FromUser {
		resp.From = "user"
		resp.Speech = ""
	}
	if m.Kind == chat.KindText {
		html, err := s.d.markdown.HTML(m.Text)
		if err != nil {
			s.d.logger.Warn("rendering message", zap.Error(err))
		} else {
			resp.HTML = html
		}
	}
	s.send(resp)
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	sock := &socket{conn: conn, d: d}
	defer func() {
		sock.mu.Lock()
		sock.closed = true
		sock.mu.Unlock()
	}()

	ctx := r.Context()
	session := d.engine.NewSession(sock, chat.WithChannel(history.ChannelWeb))
	defer session.Close()
	session.Start(ctx)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				d.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			sock.sendError("invalid message format")
			continue
		}

		switch req.Type {
		case "message", "voice":
			if strings.TrimSpace(req.Content) == "" {
				sock.sendError("content is required")
				continue
			}
			if req.Type == "voice" {
				session.HandleVoice(ctx, req.Content)
			} else {
				session.HandleInput(ctx, req.Content)
			}
		case "choice":
			if req.Choice == "" {
				sock.sendError("choice is required")
				continue
			}
			session.Choose(ctx, chat.ChoiceID(req.Choice))
		case "mute":
			muted := session.ToggleMute()
			sock.send(chatResponse{Type: "mute", Muted: &muted})
		default:
			sock.sendError("unknown message type: " + req.Type)
		}
	}
}
