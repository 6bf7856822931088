package history

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the transcript API routes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", handleListSessions(store))
		r.Get("/{id}", handleGetSession(store))
		r.Get("/{id}/messages", handleGetMessages(store))
	})
	r.Get("/api/history/{username}", handleRecentQueries(store))
}

func handleListSessions(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		sessions, err := store.ListSessions(r.Context(), r.URL.Query().Get("user"), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if sessions == nil {
			sessions = []Session{}
		}
		writeJSON(w, http.StatusOK, sessions)
	}
}

func handleGetSession(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := store.GetSession(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func handleGetMessages(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messages, err := store.GetMessages(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if messages == nil {
			messages = []Message{}
		}
		writeJSON(w, http.StatusOK, messages)
	}
}

func handleRecentQueries(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		queries, err := store.RecentQueries(r.Context(), chi.URLParam(r, "username"), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if queries == nil {
			queries = []string{}
		}
		writeJSON(w, http.StatusOK, queries)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
