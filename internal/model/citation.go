package model

// CitationCheck records the accessibility check for a single cited study
type CitationCheck struct {
	ID           string        `json:"id"`                    // PubMed or PMC identifier
	URL          string        `json:"url"`                   // Resolved citation URL
	Herb         string        `json:"herb,omitempty"`        // Claim the citation supports
	Condition    string        `json:"condition,omitempty"`   //
	IsAccessible bool          `json:"is_accessible"`         // Link resolved with a 2xx/3xx status
	StatusCode   int           `json:"status_code,omitempty"` //
	Authority    AuthorityTier `json:"authority"`             // Source authority classification
	Error        string        `json:"error,omitempty"`       // Transport error, if any
}

// AuthorityTier classifies how authoritative a citation source is
type AuthorityTier int

const (
	AuthorityUnknown   AuthorityTier = 0 // Not yet classified
	AuthorityPrimary   AuthorityTier = 1 // Peer-reviewed indexes, government health agencies
	AuthoritySecondary AuthorityTier = 2 // Universities, medical references, major publishers
	AuthorityTertiary  AuthorityTier = 3 // Blogs, wellness sites, commercial pages
)

func (t AuthorityTier) String() string {
	switch t {
	case AuthorityPrimary:
		return "primary"
	case AuthoritySecondary:
		return "secondary"
	case AuthorityTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}
