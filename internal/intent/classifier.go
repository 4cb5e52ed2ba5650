// Package intent triages health queries before any remedy advice is
// produced. Emergencies bypass verification entirely and get routed to
// professional help; everyday complaints go through the full pipeline.
package intent

import (
	"strings"

	"github.com/servvia/trust/internal/model"
)

// Emergency triggers are checked before anything else. A single hit
// wins regardless of what else the query mentions.
var emergencyKeywords = []string{
	"cpr", "not breathing", "no pulse", "heart attack",
	"stroke", "choking", "heimlich", "unconscious",
	"severe bleeding", "overdose", "poisoning",
	"seizure", "anaphylaxis", "cant breathe",
	"chest pain severe", "heart stopped", "drowning",
	"suicide", "self harm", "broken bone", "fracture",
	"snake bite", "head injury",
}

// Everyday complaints suited to home care
var remedyConditions = []string{
	"headache", "cold", "cough", "fever", "sore throat",
	"indigestion", "bloating", "gas", "acidity", "constipation",
	"nausea", "fatigue", "tired", "stress", "anxiety",
	"insomnia", "acne", "dandruff", "hair fall", "joint pain",
	"back pain", "toothache", "skin rash", "itching",
	"minor burn", "sunburn", "immunity", "digestion",
}

// EmergencyDisclaimer is appended to any response for an emergency query
const EmergencyDisclaimer = "\n\n---\n\n" +
	"🚨 **IMPORTANT: This is potentially a medical emergency.**\n\n" +
	"**Call emergency services immediately:**\n" +
	"- India: 112\n" +
	"- US: 911\n" +
	"- UK: 999\n\n" +
	"**The information above is for guidance only. Professional medical help is essential.**"

// Classification is the triage verdict for one query
type Classification struct {
	Intent           model.Intent `json:"intent"`
	MatchedKeyword   string       `json:"matched_keyword,omitempty"` // Trigger that decided the class
	IsEmergency      bool         `json:"is_emergency"`
	ApplyTrustEngine bool         `json:"apply_trust_engine"` // False only for emergencies
}

// Classifier triages queries by keyword. It carries no state beyond the
// two keyword tables and is safe for concurrent use.
type Classifier struct{}

// NewClassifier creates a new intent classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify triages a query. Emergency keywords are checked first and
// disable the trust engine; remedy keywords mark everyday complaints;
// everything else is general health.
func (c *Classifier) Classify(query string) Classification {
	lower := strings.ToLower(strings.TrimSpace(query))

	for _, kw := range emergencyKeywords {
		if strings.Contains(lower, kw) {
			return Classification{
				Intent:           model.IntentEmergency,
				MatchedKeyword:   kw,
				IsEmergency:      true,
				ApplyTrustEngine: false,
			}
		}
	}

	for _, kw := range remedyConditions {
		if strings.Contains(lower, kw) {
			return Classification{
				Intent:           model.IntentHomeRemedy,
				MatchedKeyword:   kw,
				ApplyTrustEngine: true,
			}
		}
	}

	return Classification{
		Intent:           model.IntentGeneralHealth,
		ApplyTrustEngine: true,
	}
}
