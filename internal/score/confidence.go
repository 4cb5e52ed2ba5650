package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/servvia/trust/internal/model"
)

// Component weights of the Safety Confidence Score. The four components
// sum to 1.0 before scaling to the 0-10 range.
const (
	evidenceWeight  = 0.4 // evidence tier
	pubmedWeight    = 0.3 // study support
	mechanismWeight = 0.2 // documented mechanism
	safetyWeight    = 0.1 // contraindication clearance
)

// Calculator computes the Safety Confidence Score (SCS): a 0-10 grade
// decomposing evidence strength, study support, mechanistic plausibility,
// and personal safety for one remedy.
type Calculator struct{}

// NewCalculator creates a new SCS calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate builds the SCS breakdown for one remedy. Each of the user's
// conditions found inside a contraindication text costs 0.03 of the safety
// component and raises a caution carrying that text.
func (c *Calculator) Calculate(tier model.EvidenceTier, pubmedCount int, mechanism string, contraindications, userConditions []string) model.SCSBreakdown {
	evidence := tier.Weight() * evidenceWeight

	var pubmed float64
	switch {
	case pubmedCount >= 5:
		pubmed = 1.0 * pubmedWeight
	case pubmedCount >= 3:
		pubmed = 0.75 * pubmedWeight
	case pubmedCount >= 1:
		pubmed = 0.5 * pubmedWeight
	default:
		pubmed = 0.1 * pubmedWeight
	}

	mech := 0.05
	if mechanism != "" {
		mech = mechanismWeight
	}

	var penalty float64
	var warnings []string
	for _, cond := range userConditions {
		cl := strings.ToLower(cond)
		if cl == "" {
			continue
		}
		for _, contra := range contraindications {
			if strings.Contains(strings.ToLower(contra), cl) {
				penalty += 0.03
				warnings = append(warnings, "Caution: "+contra)
			}
		}
	}
	safety := math.Max(0, safetyWeight-penalty)

	scs := round1((evidence + pubmed + mech + safety) * 10)
	scs = math.Min(10.0, math.Max(0.0, scs))

	level, emoji := confidenceLevel(scs)
	return model.SCSBreakdown{
		Score:           scs,
		ConfidenceLevel: level,
		ConfidenceEmoji: emoji,
		EvidenceTier:    tier,
		EvidenceLabel:   tier.LongLabel(),
		PubMedCount:     pubmedCount,
		SafetyWarnings:  warnings,
	}
}

func confidenceLevel(scs float64) (string, string) {
	switch {
	case scs >= 8:
		return "High", "🟢"
	case scs >= 5:
		return "Moderate", "🟡"
	default:
		return "Low", "🔴"
	}
}

// FormatDisplay renders the one-line SCS summary shown under a remedy
func FormatDisplay(b model.SCSBreakdown) string {
	return fmt.Sprintf("%s SCS: %.1f/10 (%s) | %s | PubMed: %d",
		b.ConfidenceEmoji, b.Score, b.ConfidenceLevel, b.EvidenceLabel, b.PubMedCount)
}
