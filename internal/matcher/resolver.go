// Package matcher turns a free-text problem description into the best
// stored solution, a short list of related problems, or nothing.
package matcher

import (
	"strings"

	"github.com/ziadkadry99/fixbot/internal/confidence"
	"github.com/ziadkadry99/fixbot/internal/config"
	"github.com/ziadkadry99/fixbot/internal/knowledge"
)

// Source is the knowledge the resolver searches.
type Source interface {
	Entries() []knowledge.Entry
}

// Kind classifies a Resolution.
type Kind string

const (
	KindMatch   Kind = "match"
	KindSimilar Kind = "similar"
	KindNone    Kind = "none"
)

// Resolution is the outcome of resolving one query.
type Resolution struct {
	Kind       Kind             `json:"kind"`
	Query      string           `json:"query"`
	Normalized string           `json:"normalized"`
	Problem    string           `json:"problem,omitempty"`
	Record     knowledge.Record `json:"record,omitempty"`
	Confidence int              `json:"confidence,omitempty"`
	Score      float64          `json:"score,omitempty"`
	Similar    []string         `json:"similar,omitempty"`
}

// Resolver runs the matching pipeline: synonym folding, fuzzy search,
// then word-overlap fallback.
type Resolver struct {
	source     Source
	fuzzy      Fuzzy
	normalizer *Normalizer
	threshold  float64
	minOverlap int
	limit      int
}

// NewResolver builds a resolver from matcher settings.
func NewResolver(source Source, fuzzy Fuzzy, cfg config.MatcherConfig) *Resolver {
	minOverlap := cfg.SimilarMinOverlap
	if minOverlap < 1 {
		minOverlap = 1
	}
	return &Resolver{
		source:     source,
		fuzzy:      fuzzy,
		normalizer: NewNormalizer(cfg.Synonyms),
		threshold:  cfg.Threshold,
		minOverlap: minOverlap,
		limit:      cfg.SimilarLimit,
	}
}

// Normalize exposes the resolver's synonym folding.
func (r *Resolver) Normalize(query string) string {
	return r.normalizer.Normalize(query)
}

// Resolve finds the closest stored problem for query. A hit reports a
// confidence derived from the match score until the solution has been
// rated, and the feedback-derived confidence after.
func (r *Resolver) Resolve(query string) Resolution {
	res := Resolution{Query: query, Normalized: r.normalizer.Normalize(query), Kind: KindNone}

	entries := r.source.Entries()
	items := make([]string, len(entries))
	byName := make(map[string]knowledge.Entry, len(entries))
	for i, e := range entries {
		items[i] = e.Problem
		byName[e.Problem] = e
	}

	if hits := r.fuzzy.Search(res.Normalized, items, r.threshold); len(hits) > 0 {
		best := hits[0]
		entry := byName[best.Item]
		res.Kind = KindMatch
		res.Problem = entry.Problem
		res.Record = entry.Record
		res.Score = best.Score
		if confidence.Rated(entry.SuccessCount, entry.FailureCount) {
			res.Confidence = entry.Confidence
		} else {
			res.Confidence = confidence.FromScore(best.Score)
		}
		return res
	}

	if similar := r.similar(query, items); len(similar) > 0 {
		res.Kind = KindSimilar
		res.Similar = similar
	}
	return res
}

// similar returns problems sharing at least minOverlap words with the
// raw query, in knowledge order, capped at limit.
func (r *Resolver) similar(query string, problems []string) []string {
	queryWords := strings.Fields(strings.ToLower(query))
	if len(queryWords) == 0 || r.limit == 0 {
		return nil
	}
	var out []string
	for _, p := range problems {
		words := make(map[string]bool)
		for _, w := range strings.Fields(strings.ToLower(p)) {
			words[w] = true
		}
		overlap := 0
		for _, w := range queryWords {
			if words[w] {
				overlap++
			}
		}
		if overlap >= r.minOverlap {
			out = append(out, p)
			if len(out) == r.limit {
				break
			}
		}
	}
	return out
}
