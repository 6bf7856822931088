package importers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// importRequest names server-side catalog files to import.
type importRequest struct {
	Patterns []string `json:"patterns"`
	User     string   `json:"user"`
}

// RegisterRoutes mounts the catalog import API routes.
func RegisterRoutes(r chi.Router, store *Store, importer *Importer) {
	r.Route("/api/imports", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleImport(importer))
		r.Get("/{id}", handleGetByID(store))
		r.Delete("/{id}", handleDelete(store))
	})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sources, err := store.List(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if sources == nil {
			sources = []Source{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sources)
	}
}

func handleImport(importer *Importer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req importRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		var patterns []string
		for _, p := range req.Patterns {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) == 0 {
			http.Error(w, `{"error":"patterns are required"}`, http.StatusBadRequest)
			return
		}

		res, err := importer.Import(r.Context(), patterns, strings.TrimSpace(req.User))
		if errors.Is(err, ErrNoFiles) {
			http.Error(w, `{"error":"no catalog files matched"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(res)
	}
}

func handleGetByID(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		src, err := store.GetByID(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if src == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(src)
	}
}

func handleDelete(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := store.Delete(r.Context(), id); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
