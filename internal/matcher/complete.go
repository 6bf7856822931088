package matcher

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// ProblemLister supplies the problem names offered for type-ahead.
type ProblemLister interface {
	Problems() []string
}

// Completer suggests stored problems while the user types. Substring
// hits in either direction come first, in knowledge order, followed by
// subsequence matches ranked by sahilm/fuzzy.
type Completer struct {
	source ProblemLister
}

func NewCompleter(source ProblemLister) *Completer {
	return &Completer{source: source}
}

// Complete returns up to limit problems for prefix. A non-positive limit
// means no cap.
func (c *Completer) Complete(prefix string, limit int) []string {
	problems := c.source.Problems()
	p := strings.ToLower(strings.TrimSpace(prefix))
	if p == "" {
		return capList(problems, limit)
	}

	seen := make(map[int]bool)
	var out []string
	for i, item := range problems {
		lower := strings.ToLower(item)
		if strings.Contains(lower, p) || strings.Contains(p, lower) {
			out = append(out, item)
			seen[i] = true
		}
	}
	for _, m := range fuzzy.Find(p, problems) {
		if seen[m.Index] {
			continue
		}
		out = append(out, m.Str)
		seen[m.Index] = true
	}
	return capList(out, limit)
}

func capList(in []string, limit int) []string {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}
