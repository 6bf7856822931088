// Package suggest picks the quick-pick problems offered to the user.
package suggest

import (
	"strings"

	"github.com/ziadkadry99/fixbot/internal/stats"
)

// DefaultLimit is the number of suggestions shown.
const DefaultLimit = 4

// QueryHistory supplies ranked past queries.
type QueryHistory interface {
	Ranked() []stats.QueryCount
}

// Catalog supplies the default problems used to pad the list.
type Catalog interface {
	DefaultProblems() []string
}

// Ranker merges popular past queries with the default catalog.
type Ranker struct {
	history QueryHistory
	catalog Catalog
	limit   int
}

// NewRanker returns a ranker producing at most limit suggestions.
func NewRanker(history QueryHistory, catalog Catalog, limit int) *Ranker {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Ranker{history: history, catalog: catalog, limit: limit}
}

// Rank returns past queries by frequency followed by default problems,
// without case-insensitive duplicates. The first spelling seen wins.
func (r *Ranker) Rank() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, r.limit)
	add := func(s string) bool {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			return len(out) < r.limit
		}
		seen[key] = true
		out = append(out, s)
		return len(out) < r.limit
	}

	for _, qc := range r.history.Ranked() {
		if !add(qc.Query) {
			return out
		}
	}
	for _, p := range r.catalog.DefaultProblems() {
		if !add(p) {
			return out
		}
	}
	return out
}
