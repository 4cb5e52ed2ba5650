package cli

import (
	"fmt"
	"strings"

	"github.com/servvia/trust/internal/pipeline"
	"github.com/servvia/trust/internal/score"
	"github.com/spf13/cobra"
)

var excludeHerbs []string

// remediesCmd represents the remedies command
var remediesCmd = &cobra.Command{
	Use:   "remedies <condition>",
	Short: "List evidence-backed remedies for a condition",
	Long: `Remedies lists what the knowledge base knows for a condition,
strongest evidence first, with a Safety Confidence Score per option.

Example:
  servvia-trust remedies nausea
  servvia-trust remedies "sore throat" --exclude ginger
  servvia-trust remedies headache --user-condition pregnancy`,
	Args: cobra.ExactArgs(1),
	RunE: runRemedies,
}

func init() {
	rootCmd.AddCommand(remediesCmd)

	remediesCmd.Flags().StringSliceVar(&excludeHerbs, "exclude", nil, "herbs to leave out, e.g. allergens (repeatable)")
	remediesCmd.Flags().StringSliceVar(&userConditions, "user-condition", nil, "existing health condition, for safety scoring (repeatable)")
}

func runRemedies(cmd *cobra.Command, args []string) error {
	condition := strings.ToLower(strings.TrimSpace(args[0]))

	cfg := buildConfig()
	kb, err := pipeline.LoadKnowledge(cfg.Knowledge)
	if err != nil {
		return fmt.Errorf("load knowledge: %w", err)
	}

	calc := score.NewCalculator()

	// Curated records first: they carry scientific names and usage notes
	remedies := kb.Repo().RemediesFor(condition, excludeHerbs...)
	if len(remedies) > 0 {
		fmt.Printf("Remedies for %s:\n\n", condition)
		for i, rem := range remedies {
			b := calc.Calculate(rem.Tier, len(rem.PubMedIDs), rem.Mechanism, rem.Herb.Contraindications, userConditions)

			fmt.Printf("%d. %s", i+1, rem.Herb.Name)
			if rem.Herb.ScientificName != "" {
				fmt.Printf(" (%s)", rem.Herb.ScientificName)
			}
			fmt.Println()
			fmt.Printf("   %s\n", score.FormatDisplay(b))
			if rem.Mechanism != "" {
				fmt.Printf("   Mechanism: %s\n", rem.Mechanism)
			}
			if entry, ok := kb.Evidence(rem.Herb.Name, condition); ok && entry.Dose != "" {
				fmt.Printf("   Dose: %s", entry.Dose)
				if entry.Onset != "" {
					fmt.Printf(" (onset %s)", entry.Onset)
				}
				fmt.Println()
			}
			for _, w := range b.SafetyWarnings {
				fmt.Printf("   %s\n", w)
			}
			fmt.Println()
		}
		return nil
	}

	// Fall back to the evidence table for conditions the curated set
	// does not cover yet
	entries := kb.EvidenceForCondition(condition)
	if len(entries) == 0 {
		fmt.Printf("No remedies on file for %q.\n\n", condition)
		fmt.Printf("Known conditions: %s\n", strings.Join(kb.Conditions(), ", "))
		return nil
	}

	fmt.Printf("Remedies for %s:\n\n", condition)
	n := 0
	for _, entry := range entries {
		if isExcluded(entry.Herb) {
			continue
		}
		n++
		b := calc.Calculate(entry.Tier, len(entry.PubMedIDs), entry.Mechanism, entry.Cautions, userConditions)

		fmt.Printf("%d. %s\n", n, entry.Herb)
		fmt.Printf("   %s\n", score.FormatDisplay(b))
		if entry.Mechanism != "" {
			fmt.Printf("   Mechanism: %s\n", entry.Mechanism)
		}
		if entry.Dose != "" {
			fmt.Printf("   Dose: %s", entry.Dose)
			if entry.Onset != "" {
				fmt.Printf(" (onset %s)", entry.Onset)
			}
			fmt.Println()
		}
		for _, w := range b.SafetyWarnings {
			fmt.Printf("   %s\n", w)
		}
		fmt.Println()
	}

	return nil
}

func isExcluded(herb string) bool {
	for _, e := range excludeHerbs {
		if strings.EqualFold(strings.TrimSpace(e), herb) {
			return true
		}
	}
	return false
}
