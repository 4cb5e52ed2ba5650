package score

import (
	"math"

	"github.com/servvia/trust/internal/model"
)

// Scorer grades verified claims from their evidence entry and the safety
// warnings raised against them. The score is the one shown next to each
// remedy in the validation section (1.0-10.0).
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// baseScore is the starting score per evidence tier. Clinical evidence
// starts at 9.0 and decays through the tiers to 1.5 for theoretical
// support; an unrecognized tier starts at 3.0.
func baseScore(tier model.EvidenceTier) float64 {
	switch tier {
	case model.TierClinical:
		return 9.0
	case model.TierMechanistic:
		return 7.5
	case model.TierTraditional:
		return 5.5
	case model.TierAnecdotal:
		return 3.5
	case model.TierTheoretical:
		return 1.5
	default:
		return 3.0
	}
}

// Grade computes the confidence score for a verified claim:
//
//	base(tier) + 0.3 per study (capped at +1.0) + 0.5 for a documented
//	mechanism, capped at 10.0; each warning then costs a full point,
//	with a floor of 1.0.
//
// The warning penalty applies after the cap so a heavily-cited remedy
// still drops when it collides with the user's medications.
func (s *Scorer) Grade(tier model.EvidenceTier, pubmedCount int, mechanism string, warningCount int) float64 {
	score := baseScore(tier)
	score += math.Min(float64(pubmedCount)*0.3, 1.0)
	if mechanism != "" {
		score += 0.5
	}
	score = math.Min(score, 10.0)
	if warningCount > 0 {
		score = math.Max(score-float64(warningCount), 1.0)
	}
	return round1(score)
}

// round1 rounds to one decimal place
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
