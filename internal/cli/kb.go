package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/servvia/trust/internal/cache"
	"github.com/servvia/trust/internal/pipeline"
	"github.com/servvia/trust/internal/pubmed"
	"github.com/spf13/cobra"
)

var liveSearch bool

// kbCmd groups knowledge-base inspection commands
var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect the evidence knowledge base",
	Long: `Inspect the evidence tables the trust engine verifies against:
table sizes, curated herb records, and per-pair evidence checks with an
optional live PubMed search.`,
}

var kbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base table sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildConfig()
		kb, err := pipeline.LoadKnowledge(cfg.Knowledge)
		if err != nil {
			return fmt.Errorf("load knowledge: %w", err)
		}

		stats := kb.Stats()

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("  Knowledge Base")
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()
		fmt.Printf("  Known herbs:              %d\n", stats.KnownHerbs)
		fmt.Printf("  Evidence pairs:           %d\n", stats.EvidencePairs)
		fmt.Printf("  Conditions:               %d\n", stats.Conditions)
		fmt.Printf("  Interaction profiles:     %d\n", stats.InteractionHerbs)
		fmt.Printf("  Contraindication entries: %d\n", stats.ContraHerbs)
		fmt.Printf("  Curated herbs:            %d\n", stats.CuratedHerbs)
		fmt.Printf("  Curated conditions:       %d\n", stats.CuratedConditions)
		fmt.Printf("  Evidence links:           %d\n", stats.EvidenceLinks)
		fmt.Println()

		return nil
	},
}

var kbHerbCmd = &cobra.Command{
	Use:   "herb <name>",
	Short: "Show the curated record for a herb",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(strings.TrimSpace(args[0]))

		cfg := buildConfig()
		kb, err := pipeline.LoadKnowledge(cfg.Knowledge)
		if err != nil {
			return fmt.Errorf("load knowledge: %w", err)
		}

		herb, ok := kb.Repo().HerbByName(name)
		if !ok {
			if kb.IsKnownHerb(name) {
				fmt.Printf("%s is in the registry but has no curated record yet.\n", name)
				return nil
			}
			return fmt.Errorf("no herb named %q in the knowledge base", name)
		}

		fmt.Printf("%s", herb.Name)
		if herb.ScientificName != "" {
			fmt.Printf(" (%s)", herb.ScientificName)
		}
		fmt.Println()
		fmt.Println()
		if herb.Description != "" {
			fmt.Printf("  %s\n\n", herb.Description)
		}
		if len(herb.Properties) > 0 {
			fmt.Printf("  Properties:        %s\n", strings.Join(herb.Properties, ", "))
		}
		if herb.Usage != "" {
			fmt.Printf("  Usage:             %s\n", herb.Usage)
		}
		if len(herb.Contraindications) > 0 {
			fmt.Printf("  Contraindications: %s\n", strings.Join(herb.Contraindications, "; "))
		}
		if profile, ok := kb.Interaction(herb.Name); ok {
			drugs := make([]string, 0, len(profile.Drugs))
			for _, d := range profile.Drugs {
				drugs = append(drugs, fmt.Sprintf("%s (%s)", d.Drug, d.Severity))
			}
			fmt.Printf("  Interacts with:    %s\n", strings.Join(drugs, ", "))
			if len(profile.Alternatives) > 0 {
				fmt.Printf("  Alternatives:      %s\n", strings.Join(profile.Alternatives, ", "))
			}
		}
		if contra, ok := kb.Contraindication(herb.Name); ok {
			fmt.Printf("  Avoid with:        %s\n", strings.Join(contra.Conditions, ", "))
		}
		fmt.Println()

		return nil
	},
}

var kbValidateCmd = &cobra.Command{
	Use:   "validate <herb> <condition>",
	Short: "Check a herb-condition pair against the tables, optionally against PubMed",
	Long: `Validate reports what the local evidence tables say about a
herb-condition pair. With --live it also searches PubMed for studies
naming both, using the NCBI E-utilities (set NCBI_API_KEY for the
higher request rate).

Live results are informational: verification verdicts always come from
the curated tables.

Example:
  servvia-trust kb validate ginger nausea
  servvia-trust kb validate turmeric "joint pain" --live -v`,
	Args: cobra.ExactArgs(2),
	RunE: runKBValidate,
}

func init() {
	rootCmd.AddCommand(kbCmd)
	kbCmd.AddCommand(kbStatsCmd)
	kbCmd.AddCommand(kbHerbCmd)
	kbCmd.AddCommand(kbValidateCmd)

	kbValidateCmd.Flags().BoolVar(&liveSearch, "live", false, "also search PubMed for supporting studies")
	kbValidateCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the citation/PubMed cache")
	kbValidateCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout for live searches")
}

func runKBValidate(cmd *cobra.Command, args []string) error {
	herb := strings.ToLower(strings.TrimSpace(args[0]))
	condition := strings.ToLower(strings.TrimSpace(args[1]))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := buildConfig()
	kb, err := pipeline.LoadKnowledge(cfg.Knowledge)
	if err != nil {
		return fmt.Errorf("load knowledge: %w", err)
	}

	// Local tables first: they are the source of truth
	entry, onFile := kb.Evidence(herb, condition)
	if onFile {
		fmt.Printf("✓ On file: %s for %s\n\n", herb, condition)
		fmt.Printf("  Evidence:  %s\n", entry.Tier.LongLabel())
		fmt.Printf("  Mechanism: %s\n", entry.Mechanism)
		if len(entry.PubMedIDs) > 0 {
			fmt.Printf("  Studies:   %s\n", strings.Join(entry.PubMedIDs, ", "))
		}
		if entry.Dose != "" {
			fmt.Printf("  Dose:      %s\n", entry.Dose)
		}
		if entry.Onset != "" {
			fmt.Printf("  Onset:     %s\n", entry.Onset)
		}
	} else {
		fmt.Printf("✗ Not on file: no local evidence links %s to %s\n", herb, condition)
	}

	if !liveSearch && !cfg.PubMed.Enabled {
		if !onFile {
			fmt.Println("\nRun with --live to search PubMed for studies.")
		}
		return nil
	}

	cfg.PubMed.APIKey = os.Getenv("NCBI_API_KEY")
	store := cache.FromConfig(cfg.Cache)
	client := pubmed.New(cfg.PubMed, cfg.HTTP, store, time.Duration(cfg.Cache.TTLHours)*time.Hour)

	fmt.Println()
	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Searching PubMed...\n")
	}

	v, err := client.ValidateRemedy(ctx, herb, condition)
	if err != nil {
		return fmt.Errorf("pubmed search: %w", err)
	}

	fmt.Printf("PubMed: %s\n", v.Message)

	if verbose && len(v.PubMedIDs) > 0 {
		articles, err := client.FetchAbstracts(ctx, v.PubMedIDs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ Fetch abstracts: %v\n", err)
		} else {
			fmt.Println()
			for _, a := range articles {
				tags := ""
				if a.IsRCT {
					tags += " [RCT]"
				}
				if a.IsMetaAnalysis {
					tags += " [meta-analysis]"
				}
				fmt.Printf("  %s (%s)%s\n", a.Title, a.Year, tags)
				fmt.Printf("    PMID %s\n", a.PMID)
			}
		}
	}

	fmt.Println("\nLive results are informational only; verification verdicts come")
	fmt.Println("from the curated tables.")

	return nil
}
