package matcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/ziadkadry99/fixbot/internal/config"
)

// Candidate is one fuzzy search hit. Score is in [0,1]; lower is closer.
type Candidate struct {
	Item  string  `json:"item"`
	Score float64 `json:"score"`
}

// Fuzzy ranks items against a query, best first, dropping any item
// whose score exceeds threshold.
type Fuzzy interface {
	Search(query string, items []string, threshold float64) []Candidate
}

// StrutilMatcher scores items with a normalized string similarity metric.
type StrutilMatcher struct {
	metric strutil.StringMetric
}

// NewStrutilMatcher returns a matcher for the named metric.
func NewStrutilMatcher(name config.MatchMetric) (*StrutilMatcher, error) {
	var m strutil.StringMetric
	switch name {
	case config.MetricLevenshtein, "":
		m = metrics.NewLevenshtein()
	case config.MetricJaroWinkler:
		m = metrics.NewJaroWinkler()
	case config.MetricSmithWatermanGoto:
		m = metrics.NewSmithWatermanGotoh()
	case config.MetricSorensenDice:
		m = metrics.NewSorensenDice()
	default:
		return nil, fmt.Errorf("unknown match metric %q", name)
	}
	return &StrutilMatcher{metric: m}, nil
}

// Search compares lowercased strings; ties keep item order.
func (m *StrutilMatcher) Search(query string, items []string, threshold float64) []Candidate {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Candidate
	for _, item := range items {
		score := 1 - strutil.Similarity(q, strings.ToLower(item), m.metric)
		if score <= threshold {
			out = append(out, Candidate{Item: item, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out
}
