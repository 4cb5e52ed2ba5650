package model

import "time"

// Report is the complete output of one verification run: the query context,
// the response that was checked, and every verdict the engine reached
type Report struct {
	Query       string    `json:"query"`               // Original user query
	Condition   string    `json:"condition"`           // Condition claims were verified against
	Intent      Intent    `json:"intent"`              // Triage class for the query
	Response    string    `json:"response"`            // Response text that was verified
	GeneratedAt time.Time `json:"generated_at"`        // When the verification ran

	Results        []VerificationResult `json:"results"`                   // Per-claim verdicts
	GlobalWarnings []string             `json:"global_warnings,omitempty"` // Response-level safety warnings

	Citations  []CitationCheck `json:"citations,omitempty"`  // Cited-study link checks
	Generation *GenerationMeta `json:"generation,omitempty"` // Set when the response was LLM-generated
}

// Intent classifies what a health query is asking for
type Intent string

const (
	IntentEmergency     Intent = "emergency"      // Needs professional help now; remedy advice suppressed
	IntentHomeRemedy    Intent = "home_remedy"    // Everyday condition suited to home care
	IntentGeneralHealth Intent = "general_health" // Anything else
)

// GenerationMeta records how a response was produced when the pipeline
// generated it instead of verifying caller-supplied text.
// Generation never affects verification verdicts.
type GenerationMeta struct {
	Enabled  bool     `json:"enabled"`
	Provider string   `json:"provider,omitempty"` // openai, anthropic, ollama
	Model    string   `json:"model,omitempty"`    // Model name
	Warnings []string `json:"warnings,omitempty"` // Degradation notes (provider down, etc.)
}

// VerifiedCount returns how many results passed verification
func (r *Report) VerifiedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.IsValid && !res.IsHallucination {
			n++
		}
	}
	return n
}

// HallucinationCount returns how many results had no supporting evidence
func (r *Report) HallucinationCount() int {
	n := 0
	for _, res := range r.Results {
		if res.IsHallucination {
			n++
		}
	}
	return n
}
