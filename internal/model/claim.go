package model

// Claim represents a single herb-for-condition assertion found in a response
type Claim struct {
	Herb      string `json:"herb"`      // Registry name, lowercase
	Condition string `json:"condition"` // Condition the response pairs it with
}

// SCSBreakdown is the Safety Confidence Score for one remedy claim,
// decomposed so every component of the score is visible
type SCSBreakdown struct {
	Score           float64      `json:"score"`                     // 0.0-10.0, one decimal
	ConfidenceLevel string       `json:"confidence_level"`          // High, Moderate, Low
	ConfidenceEmoji string       `json:"confidence_emoji"`          // 🟢, 🟡, 🔴
	EvidenceTier    EvidenceTier `json:"evidence_tier"`             // 1-5
	EvidenceLabel   string       `json:"evidence_tier_label"`       // "Tier 1: Clinical Trial", ...
	PubMedCount     int          `json:"pubmed_count"`              // Linked studies
	SafetyWarnings  []string     `json:"safety_warnings,omitempty"` // Contraindication cautions
}
