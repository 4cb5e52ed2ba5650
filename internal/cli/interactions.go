package cli

import (
	"fmt"
	"strings"

	"github.com/servvia/trust/internal/engine"
	"github.com/servvia/trust/internal/pipeline"
	"github.com/spf13/cobra"
)

// interactionsCmd represents the interactions command
var interactionsCmd = &cobra.Command{
	Use:   "interactions <herb> <medication>",
	Short: "Check a herb against a medication",
	Long: `Interactions looks up the documented interaction profile for a
herb-medication pair: severity, effect, and safer alternatives where
the tables name any.

Example:
  servvia-trust interactions ginger warfarin
  servvia-trust interactions "st johns wort" sertraline`,
	Args: cobra.ExactArgs(2),
	RunE: runInteractions,
}

func init() {
	rootCmd.AddCommand(interactionsCmd)
}

func runInteractions(cmd *cobra.Command, args []string) error {
	herb := strings.ToLower(strings.TrimSpace(args[0]))
	medication := strings.TrimSpace(args[1])

	cfg := buildConfig()
	kb, err := pipeline.LoadKnowledge(cfg.Knowledge)
	if err != nil {
		return fmt.Errorf("load knowledge: %w", err)
	}
	eng := engine.New(kb)

	warning := eng.CheckInteraction(herb, medication)
	if warning == nil {
		if !eng.IsHerbKnown(herb) {
			fmt.Printf("%q is not in the herb registry; no interaction data.\n", herb)
			return nil
		}
		fmt.Printf("No documented interaction between %s and %s.\n\n", herb, medication)
		fmt.Println("Absence of data is not proof of safety. Check with a pharmacist")
		fmt.Println("before combining herbs with prescription medication.")
		return nil
	}

	fmt.Printf("⚠️  %s + %s\n\n", warning.Herb, warning.Drug)
	fmt.Printf("  Severity:       %s\n", warning.Severity)
	fmt.Printf("  Effect:         %s\n", warning.Effect)
	fmt.Printf("  Recommendation: %s\n", warning.Recommendation)
	if len(warning.Alternatives) > 0 {
		fmt.Printf("  Alternatives:   %s\n", strings.Join(warning.Alternatives, ", "))
	}
	fmt.Println()

	return nil
}
