package matcher

import (
	"regexp"
	"strings"

	"github.com/ziadkadry99/fixbot/internal/config"
)

type synonymPattern struct {
	canonical string
	re        *regexp.Regexp
}

// Normalizer folds synonyms in a query into their canonical word. Rules
// apply in order, so a later rule sees the output of earlier ones.
type Normalizer struct {
	patterns []synonymPattern
}

// NewNormalizer compiles a whole-word, case-insensitive pattern per rule.
func NewNormalizer(rules []config.SynonymRule) *Normalizer {
	n := &Normalizer{}
	for _, r := range rules {
		var alts []string
		for _, a := range r.Alternates {
			if a = strings.TrimSpace(a); a != "" {
				alts = append(alts, regexp.QuoteMeta(a))
			}
		}
		if len(alts) == 0 || strings.TrimSpace(r.Canonical) == "" {
			continue
		}
		n.patterns = append(n.patterns, synonymPattern{
			canonical: r.Canonical,
			re:        regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`),
		})
	}
	return n
}

// Normalize returns query with every alternate replaced.
func (n *Normalizer) Normalize(query string) string {
	for _, p := range n.patterns {
		query = p.re.ReplaceAllLiteralString(query, p.canonical)
	}
	return query
}
