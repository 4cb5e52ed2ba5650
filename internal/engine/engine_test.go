package engine

import (
	"reflect"
	"strings"
	"testing"

	"github.com/servvia/trust/internal/knowledge"
	"github.com/servvia/trust/internal/model"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	kb, err := knowledge.Load()
	if err != nil {
		t.Fatalf("Failed to load knowledge base: %v", err)
	}
	return New(kb)
}

func TestEngine_Verify_EvidenceBackedClaim(t *testing.T) {
	e := newTestEngine(t)

	results, warnings := e.Verify(Request{
		Response:  "Try ginger tea for your nausea",
		Condition: "nausea",
	})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Herb != "ginger" {
		t.Errorf("Expected herb ginger, got %q", r.Herb)
	}
	if !r.IsValid || r.IsHallucination {
		t.Errorf("Expected valid non-hallucination result, got valid=%v hallucination=%v", r.IsValid, r.IsHallucination)
	}
	if r.EvidenceTier != model.TierClinical {
		t.Errorf("Expected tier 1, got %d", r.EvidenceTier)
	}
	if r.EvidenceLabel != "Clinical Trial" {
		t.Errorf("Expected label Clinical Trial, got %q", r.EvidenceLabel)
	}
	// Tier 1 base 9.0 + 2 studies (0.6) + mechanism (0.5), clamped to 10.0
	if r.ConfidenceScore != 10.0 {
		t.Errorf("Expected score 10.0, got %.1f", r.ConfidenceScore)
	}
	if r.PubMedCount != 2 {
		t.Errorf("Expected 2 studies, got %d", r.PubMedCount)
	}
	if r.RecommendedDose == "" {
		t.Error("Expected a recommended dose")
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no global warnings, got %v", warnings)
	}
}

func TestEngine_Verify_InteractionPenalty(t *testing.T) {
	e := newTestEngine(t)

	results, _ := e.Verify(Request{
		Response:  "Try ginger tea for your nausea",
		Condition: "nausea",
		Profile:   &model.UserProfile{Medications: []string{"warfarin"}},
	})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.InteractionNote == "" {
		t.Fatal("Expected an interaction note")
	}
	if !strings.HasPrefix(r.InteractionNote, "⚠️ INTERACTION: ginger may interact with warfarin.  Reason: ") {
		t.Errorf("Unexpected interaction note: %q", r.InteractionNote)
	}
	if len(r.Warnings) != 1 {
		t.Errorf("Expected 1 warning, got %d", len(r.Warnings))
	}
	// One warning drops the unpenalized 10.0 to 9.0
	if r.ConfidenceScore != 9.0 {
		t.Errorf("Expected score 9.0, got %.1f", r.ConfidenceScore)
	}
	if !r.IsValid {
		t.Error("Expected claim to stay valid despite the interaction")
	}
}

func TestEngine_Verify_Hallucination(t *testing.T) {
	e := newTestEngine(t)

	results, warnings := e.Verify(Request{
		Response:  "Some people swear by clove for this",
		Condition: "nausea",
	})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	r := results[0]
	if !r.IsHallucination || r.IsValid {
		t.Errorf("Expected hallucination, got valid=%v hallucination=%v", r.IsValid, r.IsHallucination)
	}
	if r.ConfidenceScore != 2.0 {
		t.Errorf("Expected score 2.0, got %.1f", r.ConfidenceScore)
	}
	if r.EvidenceLabel != "Unverified" {
		t.Errorf("Expected label Unverified, got %q", r.EvidenceLabel)
	}
	if r.HallucinationReason != "No evidence linking clove to nausea" {
		t.Errorf("Unexpected reason: %q", r.HallucinationReason)
	}
	if r.Mechanism != "No documented mechanism for this condition" {
		t.Errorf("Unexpected mechanism: %q", r.Mechanism)
	}
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 global warning, got %v", warnings)
	}
	if warnings[0] != "ℹ️ 1 suggestion(s) could not be verified against our evidence database" {
		t.Errorf("Unexpected global warning: %q", warnings[0])
	}
}

func TestEngine_Verify_AllergySuppression(t *testing.T) {
	e := newTestEngine(t)

	results, warnings := e.Verify(Request{
		Response:  "Raw honey soothes the throat",
		Condition: "sore throat",
		Profile:   &model.UserProfile{Allergies: []string{"honey"}},
	})

	if len(results) != 0 {
		t.Errorf("Expected no results for an allergen, got %d", len(results))
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings for an allergen, got %v", warnings)
	}
}

func TestEngine_Verify_ContraindicationCount(t *testing.T) {
	e := newTestEngine(t)

	// Ginger and turmeric are both contraindicated with gallstones;
	// peppermint is not.
	results, warnings := e.Verify(Request{
		Response:  "Try ginger, turmeric, or peppermint.",
		Condition: "muscle pain",
		Profile:   &model.UserProfile{Conditions: []string{"gallstones"}},
	})

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	contraindicated := 0
	for _, r := range results {
		for _, w := range r.Warnings {
			if strings.Contains(w, "CONTRAINDICATED") {
				contraindicated++
				break
			}
		}
	}
	if contraindicated != 2 {
		t.Errorf("Expected 2 contraindicated results, got %d", contraindicated)
	}
	if len(warnings) != 1 {
		t.Fatalf("Expected exactly 1 global warning, got %v", warnings)
	}
	if warnings[0] != "🚫 2 remedy(s) may be contraindicated for you" {
		t.Errorf("Unexpected global warning: %q", warnings[0])
	}
}

func TestEngine_Verify_ContraindicationWording(t *testing.T) {
	e := newTestEngine(t)

	// The warning repeats the user's own wording, not the table key
	results, _ := e.Verify(Request{
		Response:  "Ginger helps",
		Condition: "nausea",
		Profile:   &model.UserProfile{Conditions: []string{"Gallstones diagnosed 2024"}},
	})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	want := "🚫 CONTRAINDICATED: Avoid ginger with Gallstones diagnosed 2024"
	if len(results[0].Warnings) != 1 || results[0].Warnings[0] != want {
		t.Errorf("Expected warning %q, got %v", want, results[0].Warnings)
	}
}

func TestEngine_Verify_ExplicitConditionWins(t *testing.T) {
	e := newTestEngine(t)

	// Query says headache, caller says nausea; nausea must win
	results, _ := e.Verify(Request{
		Response:  "Ginger should help",
		Query:     "what helps a headache?",
		Condition: "  Nausea ",
	})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Condition != "nausea" {
		t.Errorf("Expected condition nausea, got %q", results[0].Condition)
	}
	if results[0].EvidenceTier != model.TierClinical {
		t.Errorf("Expected the nausea evidence entry, got tier %d", results[0].EvidenceTier)
	}
}

func TestEngine_Verify_ConditionFromQuery(t *testing.T) {
	e := newTestEngine(t)

	results, _ := e.Verify(Request{
		Response: "Chamomile tea before bed works well",
		Query:    "I cannot sleep at night",
	})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Condition != "insomnia" {
		t.Errorf("Expected condition insomnia, got %q", results[0].Condition)
	}
}

func TestEngine_Verify_EmptyResponse(t *testing.T) {
	e := newTestEngine(t)

	results, warnings := e.Verify(Request{Response: "", Query: "help"})
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
}

func TestEngine_Verify_Idempotent(t *testing.T) {
	e := newTestEngine(t)

	req := Request{
		Response:  "Ginger and turmeric both help",
		Condition: "arthritis",
		Profile: &model.UserProfile{
			Medications: []string{"aspirin"},
			Conditions:  []string{"gallstones"},
		},
	}

	r1, w1 := e.Verify(req)
	r2, w2 := e.Verify(req)

	if !reflect.DeepEqual(r1, r2) {
		t.Error("Expected identical results on repeated calls")
	}
	if !reflect.DeepEqual(w1, w2) {
		t.Error("Expected identical warnings on repeated calls")
	}
}

func TestEngine_CheckInteraction_Found(t *testing.T) {
	e := newTestEngine(t)

	w := e.CheckInteraction("Ginger", "Warfarin")
	if w == nil {
		t.Fatal("Expected an interaction warning")
	}
	if w.Herb != "Ginger" || w.Drug != "Warfarin" {
		t.Errorf("Expected names passed through unchanged, got %q/%q", w.Herb, w.Drug)
	}
	if w.Severity != model.SeverityCritical {
		t.Errorf("Expected critical severity, got %q", w.Severity)
	}
	if w.Recommendation != "Avoid Ginger while taking Warfarin" {
		t.Errorf("Unexpected recommendation: %q", w.Recommendation)
	}
	if len(w.Alternatives) == 0 {
		t.Error("Expected alternatives to be suggested")
	}
}

func TestEngine_CheckInteraction_SubstringMatch(t *testing.T) {
	e := newTestEngine(t)

	// Brand-style names match by substring in either direction
	w := e.CheckInteraction("ginger", "blood thinner medication")
	if w == nil {
		t.Fatal("Expected an interaction warning")
	}
	if w.Severity != model.SeverityHigh {
		t.Errorf("Expected high severity, got %q", w.Severity)
	}
}

func TestEngine_CheckInteraction_NoMatch(t *testing.T) {
	e := newTestEngine(t)

	if w := e.CheckInteraction("ginger", "paracetamol"); w != nil {
		t.Errorf("Expected nil for unrelated medication, got %+v", w)
	}
	if w := e.CheckInteraction("dandelion", "warfarin"); w != nil {
		t.Errorf("Expected nil for herb without interaction profile, got %+v", w)
	}
}

func TestEngine_EvidenceFor_TierOrder(t *testing.T) {
	e := newTestEngine(t)

	entries := e.EvidenceFor("muscle pain")
	if len(entries) < 3 {
		t.Fatalf("Expected several entries for muscle pain, got %d", len(entries))
	}
	if entries[0].Herb != "arnica" {
		t.Errorf("Expected strongest evidence (arnica) first, got %q", entries[0].Herb)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Tier < entries[i-1].Tier {
			t.Errorf("Expected tiers in ascending order, got %d before %d", entries[i-1].Tier, entries[i].Tier)
		}
	}
}

func TestEngine_EvidenceFor_UnknownCondition(t *testing.T) {
	e := newTestEngine(t)

	if entries := e.EvidenceFor("quantum flu"); len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestEngine_IsHerbKnown(t *testing.T) {
	e := newTestEngine(t)

	if !e.IsHerbKnown("ginger") {
		t.Error("Expected ginger to be known")
	}
	if !e.IsHerbKnown("  GINGER  ") {
		t.Error("Expected lookup to normalize case and whitespace")
	}
	if e.IsHerbKnown("plutonium") {
		t.Error("Expected plutonium to be unknown")
	}
}
