package model

// EvidenceTier ranks the strength of evidence behind a remedy claim.
// Lower is stronger: tier 1 is clinical trial data, tier 5 is theory.
type EvidenceTier int

const (
	TierClinical    EvidenceTier = 1 // Randomized or controlled human trials
	TierMechanistic EvidenceTier = 2 // Lab studies demonstrating a mechanism
	TierTraditional EvidenceTier = 3 // Documented traditional use
	TierAnecdotal   EvidenceTier = 4 // Case reports and anecdote
	TierTheoretical EvidenceTier = 5 // Plausible but undemonstrated
)

// Label returns the short tier name used in rendered validation sections.
func (t EvidenceTier) Label() string {
	switch t {
	case TierClinical:
		return "Clinical Trial"
	case TierMechanistic:
		return "Mechanistic Study"
	case TierTraditional:
		return "Traditional Use"
	case TierAnecdotal:
		return "Anecdotal"
	case TierTheoretical:
		return "Theoretical"
	default:
		return "Unknown"
	}
}

// LongLabel returns the tier name prefixed with its number, as used in
// structured confidence summaries.
func (t EvidenceTier) LongLabel() string {
	switch t {
	case TierClinical:
		return "Tier 1: Clinical Trial"
	case TierMechanistic:
		return "Tier 2: Mechanistic"
	case TierTraditional:
		return "Tier 3: Traditional Use"
	case TierAnecdotal:
		return "Tier 4: Anecdotal"
	case TierTheoretical:
		return "Tier 5: Theoretical"
	default:
		return "Unknown"
	}
}

// Weight returns the tier's contribution to confidence formulas.
// Unknown tiers weigh the same as anecdotal evidence.
func (t EvidenceTier) Weight() float64 {
	switch t {
	case TierClinical:
		return 1.0
	case TierMechanistic:
		return 0.75
	case TierTraditional:
		return 0.5
	case TierAnecdotal:
		return 0.25
	case TierTheoretical:
		return 0.0
	default:
		return 0.25
	}
}

// InteractionSeverity grades herb-drug interaction risk
type InteractionSeverity string

const (
	SeverityCritical InteractionSeverity = "critical" // Never combine
	SeverityHigh     InteractionSeverity = "high"     // Avoid the combination
	SeverityModerate InteractionSeverity = "moderate" // Combine only with monitoring
	SeverityLow      InteractionSeverity = "low"      // Minimal documented risk
)

// VerificationResult is the verdict for a single herb-condition claim
type VerificationResult struct {
	Herb                string       `json:"herb_name"`                      // Registry name, lowercase
	Condition           string       `json:"condition"`                      // Condition verified against
	IsValid             bool         `json:"is_valid"`                       // Evidence exists for this pairing
	ConfidenceScore     float64      `json:"confidence_score"`               // 1.0-10.0, one decimal
	EvidenceTier        EvidenceTier `json:"evidence_tier"`                  // 1 (strongest) to 5
	EvidenceLabel       string       `json:"evidence_tier_label"`            // Human-readable tier
	Mechanism           string       `json:"mechanism,omitempty"`            // How the remedy works
	PubMedCount         int          `json:"pubmed_count"`                   // Linked studies
	Warnings            []string     `json:"warnings,omitempty"`             // Interaction and contraindication notes
	IsHallucination     bool         `json:"is_hallucination"`               // No evidence found for the pairing
	HallucinationReason string       `json:"hallucination_reason,omitempty"` // Why it was flagged
	InteractionNote     string       `json:"interaction_note,omitempty"`     // Most recent interaction warning
	RecommendedDose     string       `json:"recommended_dose,omitempty"`     // Dose from the evidence entry
}

// InteractionWarning describes a documented herb-drug interaction
type InteractionWarning struct {
	Herb           string              `json:"herb"`
	Drug           string              `json:"drug"`
	Severity       InteractionSeverity `json:"severity"`
	Effect         string              `json:"effect"`
	Recommendation string              `json:"recommendation"`
	Alternatives   []string            `json:"alternatives,omitempty"` // Safer herbs for the same purpose
}

// ConditionEvidence is one evidence-backed remedy option for a condition
type ConditionEvidence struct {
	Herb      string       `json:"herb"`
	Tier      EvidenceTier `json:"tier"`
	Mechanism string       `json:"mechanism"`
	Dose      string       `json:"dose,omitempty"`
}
