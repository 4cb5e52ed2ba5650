// Package engine implements the trust engine: it scans a response for
// herb suggestions, verifies each one against the evidence tables, checks
// drug interactions and contraindications against the user's profile, and
// grades every claim with a confidence score.
//
// Verification is deliberately offline and deterministic: the same
// response, query, and profile always produce the same verdicts.
package engine

import (
	"fmt"
	"strings"

	"github.com/servvia/trust/internal/extract"
	"github.com/servvia/trust/internal/knowledge"
	"github.com/servvia/trust/internal/model"
	"github.com/servvia/trust/internal/score"
)

// Engine verifies herb-remedy claims against the knowledge base
type Engine struct {
	kb         *knowledge.Base
	scanner    *extract.HerbScanner
	classifier *extract.ConditionClassifier
	scorer     *score.Scorer
}

// New creates an engine over a loaded knowledge base
func New(kb *knowledge.Base) *Engine {
	return &Engine{
		kb:         kb,
		scanner:    extract.NewHerbScanner(kb.KnownHerbs()),
		classifier: extract.NewConditionClassifier(),
		scorer:     score.NewScorer(),
	}
}

// Request carries one response to verify along with its personal context
type Request struct {
	Response  string             // Text whose herb suggestions get verified
	Query     string             // The user's original question
	Condition string             // Explicit condition; empty means classify from Query
	Profile   *model.UserProfile // Optional allergies, conditions, medications
}

// Verify checks every herb suggestion in the response against the evidence
// tables and returns per-claim verdicts plus response-level warnings.
// Herbs the user is allergic to are dropped before verification.
func (e *Engine) Verify(req Request) ([]model.VerificationResult, []string) {
	condition := strings.ToLower(strings.TrimSpace(req.Condition))
	if condition == "" {
		condition = e.classifier.Classify(req.Query)
	}

	results := make([]model.VerificationResult, 0, 4)
	for _, herb := range e.scanner.Scan(req.Response) {
		if req.Profile.IsAllergicTo(herb) {
			continue
		}
		results = append(results, e.verifyClaim(model.Claim{Herb: herb, Condition: condition}, req.Profile))
	}

	return results, GlobalWarnings(results)
}

// verifyClaim produces the verdict for a single herb-condition claim.
// Interaction and contraindication warnings accumulate first so an
// unverified claim still carries its safety notes.
func (e *Engine) verifyClaim(claim model.Claim, profile *model.UserProfile) model.VerificationResult {
	var warnings []string
	var interactionNote string

	// Step 1: drug interactions. Every matching drug key raises a warning;
	// the last match in table order becomes the inline note.
	if p, ok := e.kb.Interaction(claim.Herb); ok && profile != nil {
		for _, med := range profile.Medications {
			for _, d := range p.Matches(med) {
				switch d.Severity {
				case model.SeverityCritical, model.SeverityHigh:
					interactionNote = fmt.Sprintf("⚠️ INTERACTION: %s may interact with %s.  Reason: %s",
						claim.Herb, med, p.Effect)
					warnings = append(warnings, interactionNote)
				case model.SeverityModerate:
					interactionNote = fmt.Sprintf("⚠️ Caution: %s + %s - monitor for: %s",
						claim.Herb, med, p.Effect)
					warnings = append(warnings, interactionNote)
				}
				// Low severity is noted in the tables but not surfaced.
			}
		}
	}

	// Step 2: contraindications against the user's conditions.
	if c, ok := e.kb.Contraindication(claim.Herb); ok && profile != nil {
		for _, uc := range c.BlockedBy(profile.Conditions) {
			warnings = append(warnings, fmt.Sprintf("🚫 CONTRAINDICATED: Avoid %s with %s", claim.Herb, uc))
		}
	}

	// Step 3: evidence lookup and scoring.
	entry, ok := e.kb.Evidence(claim.Herb, claim.Condition)
	if !ok {
		return model.VerificationResult{
			Herb:                claim.Herb,
			Condition:           claim.Condition,
			IsValid:             false,
			ConfidenceScore:     2.0,
			EvidenceTier:        model.TierTheoretical,
			EvidenceLabel:       "Unverified",
			Mechanism:           "No documented mechanism for this condition",
			Warnings:            warnings,
			IsHallucination:     true,
			HallucinationReason: fmt.Sprintf("No evidence linking %s to %s", claim.Herb, claim.Condition),
			InteractionNote:     interactionNote,
		}
	}

	return model.VerificationResult{
		Herb:            claim.Herb,
		Condition:       claim.Condition,
		IsValid:         true,
		ConfidenceScore: e.scorer.Grade(entry.Tier, len(entry.PubMedIDs), entry.Mechanism, len(warnings)),
		EvidenceTier:    entry.Tier,
		EvidenceLabel:   entry.Tier.Label(),
		Mechanism:       entry.Mechanism,
		PubMedCount:     len(entry.PubMedIDs),
		Warnings:        warnings,
		InteractionNote: interactionNote,
		RecommendedDose: entry.Dose,
	}
}

// GlobalWarnings summarizes response-level safety issues across results
func GlobalWarnings(results []model.VerificationResult) []string {
	contraindicated := 0
	hallucinations := 0
	for _, r := range results {
		if r.IsHallucination {
			hallucinations++
		}
		for _, w := range r.Warnings {
			if strings.Contains(w, "CONTRAINDICATED") {
				contraindicated++
				break
			}
		}
	}

	var warnings []string
	if contraindicated > 0 {
		warnings = append(warnings, fmt.Sprintf("🚫 %d remedy(s) may be contraindicated for you", contraindicated))
	}
	if hallucinations > 0 {
		warnings = append(warnings, fmt.Sprintf("ℹ️ %d suggestion(s) could not be verified against our evidence database", hallucinations))
	}
	return warnings
}

// CheckInteraction reports whether a single herb-medication pair interacts.
// It returns nil when the herb has no interaction profile or no drug key
// matches; the first matching key in table order wins.
func (e *Engine) CheckInteraction(herb, medication string) *model.InteractionWarning {
	p, ok := e.kb.Interaction(herb)
	if !ok {
		return nil
	}
	d, ok := p.First(medication)
	if !ok {
		return nil
	}
	return &model.InteractionWarning{
		Herb:           herb,
		Drug:           medication,
		Severity:       d.Severity,
		Effect:         p.Effect,
		Recommendation: fmt.Sprintf("Avoid %s while taking %s", herb, medication),
		Alternatives:   p.Alternatives,
	}
}

// EvidenceFor lists the evidence-backed options for a condition, strongest
// tier first
func (e *Engine) EvidenceFor(condition string) []model.ConditionEvidence {
	entries := e.kb.EvidenceForCondition(condition)
	out := make([]model.ConditionEvidence, 0, len(entries))
	for _, entry := range entries {
		out = append(out, model.ConditionEvidence{
			Herb:      entry.Herb,
			Tier:      entry.Tier,
			Mechanism: entry.Mechanism,
			Dose:      entry.Dose,
		})
	}
	return out
}

// IsHerbKnown reports whether the registry recognizes the herb
func (e *Engine) IsHerbKnown(herb string) bool {
	return e.kb.IsKnownHerb(herb)
}
