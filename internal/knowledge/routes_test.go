package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func setupTestRouter(t *testing.T) (*chi.Mux, *Store) {
	t.Helper()
	store, _ := setupTestStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return r, store
}

func TestListRoute(t *testing.T) {
	r, store := setupTestRouter(t)
	if _, err := store.Teach(context.Background(), "mouse lagging", "Replace the battery.", "ana"); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/knowledge?layer=user", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Entries []Entry `json:"entries"`
		Count   int     `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || resp.Entries[0].Problem != "mouse lagging" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Entries[0].SolutionText != "Replace the battery." {
		t.Errorf("expected solution in payload, got %+v", resp.Entries[0])
	}
}

func TestLookupRoute(t *testing.T) {
	r, _ := setupTestRouter(t)

	tests := []struct {
		query string
		want  int
	}{
		{"?problem=Blue%20Screen%20Error", http.StatusOK},
		{"?problem=unknown%20thing", http.StatusNotFound},
		{"", http.StatusBadRequest},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/knowledge/lookup"+tt.query, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("%q: expected %d, got %d", tt.query, tt.want, w.Code)
		}
	}
}
