// Package extract pulls verifiable claims out of response text: which
// known herbs a response suggests, and which condition a query is about.
package extract

import (
	"regexp"
	"strings"
)

// HerbScanner finds known herb mentions in free text using whole-word
// matching, so "gingerbread" never counts as "ginger".
type HerbScanner struct {
	patterns []herbPattern
}

type herbPattern struct {
	herb string
	re   *regexp.Regexp
}

// NewHerbScanner compiles one whole-word pattern per registry herb.
// Herbs are scanned in the order given; pass a sorted registry for
// deterministic output.
func NewHerbScanner(herbs []string) *HerbScanner {
	s := &HerbScanner{patterns: make([]herbPattern, 0, len(herbs))}
	for _, h := range herbs {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		s.patterns = append(s.patterns, herbPattern{
			herb: h,
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(h) + `\b`),
		})
	}
	return s
}

// Scan returns the registry herbs mentioned in text, deduplicated, in
// scanner order. Matching is case-insensitive.
func (s *HerbScanner) Scan(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, p := range s.patterns {
		if p.re.MatchString(lower) {
			found = append(found, p.herb)
		}
	}
	return found
}
