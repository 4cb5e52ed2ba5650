package engine

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/servvia/trust/internal/model"
)

// Annotate appends the validation section to the response text. When no
// herbs were found the response passes through unchanged.
func Annotate(response string, results []model.VerificationResult, globalWarnings []string) string {
	return response + FormatValidationSection(results, globalWarnings)
}

// FormatValidationSection renders the verdicts as a markdown block meant to
// follow the generated answer: response-level warnings first, then verified
// remedies with their scores, then unverified suggestions, then the score
// legend. Returns "" when there are no results.
func FormatValidationSection(results []model.VerificationResult, globalWarnings []string) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n---\n\n")
	b.WriteString("**🔬 Scientific Validation (Trust Engine):**\n\n")

	if len(globalWarnings) > 0 {
		for _, w := range globalWarnings {
			b.WriteString(w)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	var verified, unverified []model.VerificationResult
	for _, r := range results {
		if r.IsValid && !r.IsHallucination {
			verified = append(verified, r)
		} else {
			unverified = append(unverified, r)
		}
	}

	if len(verified) > 0 {
		b.WriteString("**Verified Remedies:**\n\n")
		for _, r := range verified {
			fmt.Fprintf(&b, "**%s** %s **%.1f/10**\n", titleCase(r.Herb), scoreEmoji(r.ConfidenceScore), r.ConfidenceScore)
			fmt.Fprintf(&b, "Evidence: %s (%d studies)\n", r.EvidenceLabel, r.PubMedCount)
			fmt.Fprintf(&b, "Mechanism: %s\n", r.Mechanism)
			if r.RecommendedDose != "" {
				fmt.Fprintf(&b, "Dose: %s\n", r.RecommendedDose)
			}
			if r.InteractionNote != "" {
				b.WriteString(r.InteractionNote)
				b.WriteByte('\n')
			}
			for _, w := range r.Warnings {
				if w != r.InteractionNote {
					b.WriteString(w)
					b.WriteByte('\n')
				}
			}
			b.WriteByte('\n')
		}
	}

	if len(unverified) > 0 {
		b.WriteString("**Unverified (Use with Caution):**\n\n")
		for _, r := range unverified {
			fmt.Fprintf(&b, "⚠️ **%s** - %s\n", titleCase(r.Herb), r.HallucinationReason)
			if r.InteractionNote != "" {
				fmt.Fprintf(&b, "   %s\n", r.InteractionNote)
			}
		}
		b.WriteByte('\n')
	}

	b.WriteString("**Confidence Score Legend:**\n\n")
	b.WriteString("| Score | Meaning |\n")
	b.WriteString("|-------|--------|\n")
	b.WriteString("| 🟢 8-10 | Strong clinical evidence |\n")
	b.WriteString("| 🟡 5-7 | Good research support |\n")
	b.WriteString("| 🔴 1-4 | Limited evidence |\n")

	return b.String()
}

func scoreEmoji(score float64) string {
	switch {
	case score >= 8:
		return "🟢"
	case score >= 5:
		return "🟡"
	default:
		return "🔴"
	}
}

// titleCase capitalizes the first letter of each word. Registry names are
// lowercase and space-separated, so this is all display needs.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
