// Package validate checks that cited studies actually resolve: each
// PubMed/PMC identifier becomes a URL, gets an accessibility probe, and
// is classified by how authoritative its host is.
package validate

import (
	"net/url"
	"strings"

	"github.com/servvia/trust/internal/model"
)

// AuthorityClassifier buckets citation hosts into authority tiers by
// domain suffix
type AuthorityClassifier struct {
	primary   []string
	secondary []string
	tertiary  []string
}

// NewAuthorityClassifier creates a classifier from config; nil means the
// default domain lists
func NewAuthorityClassifier(cfg *model.AuthorityConfig) *AuthorityClassifier {
	if cfg == nil {
		def := model.DefaultConfig().Authority
		cfg = &def
	}
	return &AuthorityClassifier{
		primary:   normalizeSuffixes(cfg.Primary),
		secondary: normalizeSuffixes(cfg.Secondary),
		tertiary:  normalizeSuffixes(cfg.Tertiary),
	}
}

// Classify returns the authority tier for a citation URL. Unparseable
// URLs are unknown; unlisted hosts default to tertiary.
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return model.AuthorityUnknown
	}

	host := strings.ToLower(parsed.Host)
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}

	switch {
	case hostMatches(host, a.primary):
		return model.AuthorityPrimary
	case hostMatches(host, a.secondary):
		return model.AuthoritySecondary
	case hostMatches(host, a.tertiary):
		return model.AuthorityTertiary
	}

	// Government and academic hosts rank primary even when unlisted
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".ac.uk") {
		return model.AuthorityPrimary
	}

	return model.AuthorityTertiary
}

func normalizeSuffixes(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// hostMatches reports whether host equals a listed domain or sits under
// it. Entries starting with "." match any host with that suffix.
func hostMatches(host string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasPrefix(s, ".") {
			if strings.HasSuffix(host, s) {
				return true
			}
			continue
		}
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}
