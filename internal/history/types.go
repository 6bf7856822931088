// Package history records chat sessions and their transcripts so a
// returning user can see what they asked before.
package history

import "time"

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Kind tags a message with what it meant to the conversation.
type Kind string

const (
	KindQuery    Kind = "query"
	KindTeach    Kind = "teach"
	KindFeedback Kind = "feedback"
	KindCommand  Kind = "command"
	KindReply    Kind = "reply"
)

// Channel names where a session happened.
const (
	ChannelWeb   = "web"
	ChannelCLI   = "cli"
	ChannelSlack = "slack"
	ChannelTeams = "teams"
)

// Message is a single transcript line.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Kind      Kind      `json:"kind,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session groups the messages of one conversation.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
