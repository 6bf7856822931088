package knowledge

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the read-only knowledge API.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/knowledge", handleList(store))
	r.Get("/api/knowledge/lookup", handleLookup(store))
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := store.Entries()
		if layer := r.URL.Query().Get("layer"); layer != "" {
			filtered := entries[:0]
			for _, e := range entries {
				if string(e.Layer) == layer {
					filtered = append(filtered, e)
				}
			}
			entries = filtered
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"entries": entries,
			"count":   len(entries),
		})
	}
}

func handleLookup(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		problem := strings.TrimSpace(r.URL.Query().Get("problem"))
		if problem == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "problem is required"})
			return
		}
		entry, ok := store.Lookup(problem)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "problem not stored"})
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
