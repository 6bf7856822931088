package matcher

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the matching API.
func RegisterRoutes(r chi.Router, resolver *Resolver, completer *Completer) {
	r.Get("/api/match/resolve", handleResolve(resolver))
	r.Get("/api/match/complete", handleComplete(completer))
}

func handleResolve(resolver *Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
			return
		}
		writeJSON(w, http.StatusOK, resolver.Resolve(q))
	}
}

func handleComplete(completer *Completer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 10
		if l := r.URL.Query().Get("limit"); l != "" {
			if n, err := strconv.Atoi(l); err == nil && n > 0 {
				limit = n
			}
		}
		results := completer.Complete(r.URL.Query().Get("q"), limit)
		if results == nil {
			results = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"suggestions": results})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
