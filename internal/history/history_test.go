package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/fixbot/internal/db"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func addMessage(t *testing.T, store *Store, sessionID string, role Role, kind Kind, content string) {
	t.Helper()
	if _, err := store.AddMessage(context.Background(), Message{
		SessionID: sessionID, Role: role, Kind: kind, Content: content,
	}); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
}

func TestSessionsAndMessages(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, "alice", ChannelWeb)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.ID == "" {
		t.Error("expected non-empty session ID")
	}

	addMessage(t, store, sess.ID, RoleUser, KindQuery, "wifi not connecting")
	addMessage(t, store, sess.ID, RoleAssistant, KindReply, "Restart your router.")

	messages, err := store.GetMessages(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != RoleUser || messages[1].Role != RoleAssistant {
		t.Error("messages not in expected order")
	}
	if messages[0].Kind != KindQuery {
		t.Errorf("Kind = %q, want %q", messages[0].Kind, KindQuery)
	}
}

func TestCreateSessionDefaults(t *testing.T) {
	store := setupTestStore(t)
	sess, err := store.CreateSession(context.Background(), "", "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	got, err := store.GetSession(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.UserID != "anonymous" || got.Channel != ChannelWeb {
		t.Errorf("got user %q channel %q", got.UserID, got.Channel)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.GetSession(context.Background(), "nope"); err != ErrSessionNotFound {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestRecentQueries(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, _ := store.CreateSession(ctx, "alice", ChannelWeb)
	second, _ := store.CreateSession(ctx, "alice", ChannelSlack)
	other, _ := store.CreateSession(ctx, "bob", ChannelWeb)

	addMessage(t, store, first.ID, RoleUser, KindQuery, "fan noisy")
	addMessage(t, store, first.ID, RoleUser, KindFeedback, "yes")
	addMessage(t, store, first.ID, RoleAssistant, KindReply, "Clean the fan.")
	addMessage(t, store, second.ID, RoleUser, KindQuery, "printer offline")
	addMessage(t, store, second.ID, RoleUser, KindQuery, "Fan Noisy")
	addMessage(t, store, other.ID, RoleUser, KindQuery, "blue screen error")

	got, err := store.RecentQueries(ctx, "alice", 5)
	if err != nil {
		t.Fatalf("RecentQueries: %v", err)
	}
	want := []string{"Fan Noisy", "printer offline"}
	if len(got) != len(want) {
		t.Fatalf("RecentQueries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RecentQueries[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	limited, err := store.RecentQueries(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("RecentQueries: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 query with limit, got %d", len(limited))
	}
}

func TestListSessionsAndDeleteAll(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a, _ := store.CreateSession(ctx, "alice", ChannelWeb)
	store.CreateSession(ctx, "bob", ChannelCLI)
	addMessage(t, store, a.ID, RoleUser, KindQuery, "usb device not recognized")

	sessions, err := store.ListSessions(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != a.ID {
		t.Errorf("ListSessions(alice) = %+v", sessions)
	}

	all, _ := store.ListSessions(ctx, "", 0)
	if len(all) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(all))
	}

	if err := store.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	n, err := store.CountSessions(ctx)
	if err != nil {
		t.Fatalf("CountSessions: %v", err)
	}
	if n != 0 {
		t.Errorf("CountSessions = %d after DeleteAll", n)
	}
}

func TestRoutes_RecentQueries(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	sess, _ := store.CreateSession(ctx, "alice", ChannelWeb)
	addMessage(t, store, sess.ID, RoleUser, KindQuery, "battery draining fast")

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest(http.MethodGet, "/api/history/alice", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got []string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0] != "battery draining fast" {
		t.Errorf("got %v", got)
	}
}

func TestRoutes_GetSessionNotFound(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, setupTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRoutes_Messages(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	sess, _ := store.CreateSession(ctx, "alice", ChannelWeb)
	addMessage(t, store, sess.ID, RoleUser, KindQuery, "slow computer")

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID+"/messages", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var got []Message
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Content != "slow computer" {
		t.Errorf("got %+v", got)
	}
}
