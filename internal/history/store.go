package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/fixbot/internal/db"
)

// ErrSessionNotFound is returned when a session id is unknown.
var ErrSessionNotFound = errors.New("session not found")

// Store persists sessions and messages in the fixbot database.
type Store struct {
	db *db.DB
}

// NewStore creates a history store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

type metadata struct {
	Kind Kind `json:"kind,omitempty"`
}

// CreateSession opens a new session for userID on channel.
func (s *Store) CreateSession(ctx context.Context, userID, channel string) (*Session, error) {
	if userID == "" {
		userID = "anonymous"
	}
	if channel == "" {
		channel = ChannelWeb
	}
	now := time.Now().UTC()
	sess := Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Channel:   channel,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, user_id, channel, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.Channel, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return &sess, nil
}

// GetSession loads a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, channel, created_at, updated_at FROM chat_sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.UserID, &sess.Channel, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return &sess, nil
}

// ListSessions returns a user's sessions, most recently active first.
// An empty userID lists every session.
func (s *Store) ListSessions(ctx context.Context, userID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, user_id, channel, created_at, updated_at FROM chat_sessions`
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY updated_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.Channel, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// AddMessage appends msg to its session and bumps the session's activity time.
func (s *Store) AddMessage(ctx context.Context, msg Message) (*Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Role == "" {
		msg.Role = RoleUser
	}
	msg.CreatedAt = time.Now().UTC()

	meta, err := json.Marshal(metadata{Kind: msg.Kind})
	if err != nil {
		return nil, fmt.Errorf("encoding message metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, session_id, role, content, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.SessionID, string(msg.Role), msg.Content, string(meta), msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("adding message: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE chat_sessions SET updated_at = ? WHERE id = ?`, msg.CreatedAt, msg.SessionID,
	); err != nil {
		return nil, fmt.Errorf("touching session: %w", err)
	}
	return &msg, nil
}

// GetMessages returns a session's transcript in order.
func (s *Store) GetMessages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, metadata, created_at
		 FROM chat_messages WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var (
			m          Message
			role, meta string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &meta, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Role = Role(role)
		var md metadata
		if json.Unmarshal([]byte(meta), &md) == nil {
			m.Kind = md.Kind
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// RecentQueries returns the distinct problems userID asked about across
// all of their sessions, newest first.
func (s *Store) RecentQueries(ctx context.Context, userID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.content, MAX(m.rowid) AS last
		 FROM chat_messages m JOIN chat_sessions s ON s.id = m.session_id
		 WHERE s.user_id = ? AND m.role = 'user' AND json_extract(m.metadata, '$.kind') = ?
		 GROUP BY lower(m.content)
		 ORDER BY last DESC
		 LIMIT ?`,
		userID, string(KindQuery), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent queries: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var (
			content string
			last    int64
		)
		if err := rows.Scan(&content, &last); err != nil {
			return nil, fmt.Errorf("scanning query: %w", err)
		}
		out = append(out, content)
	}
	return out, rows.Err()
}

// CountSessions returns the total number of chat sessions.
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_sessions`).Scan(&count)
	return count, err
}

// DeleteAll removes every session and message.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages`); err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions`); err != nil {
		return fmt.Errorf("deleting sessions: %w", err)
	}
	return nil
}
