package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/servvia/trust/internal/model"
	"github.com/servvia/trust/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	llmProvider  string
	llmModel     string
	llmMaxTokens int
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Generate a remedy answer and verify it in one pass",
	Long: `Ask drafts an answer to a health query with the configured LLM
provider, then runs the draft through the same verification as any
other response: every herb suggestion graded against the evidence
tables, with interaction and contraindication warnings for the user's
profile.

The provider only drafts text. Verdicts come from the knowledge base,
never from the model.

Example:
  servvia-trust ask "How do I stop nausea?" --llm-provider ollama --llm-model llama3.1:8b
  servvia-trust ask "natural headache remedies" --llm-provider openai
  servvia-trust ask "what helps with bloating?" --medication warfarin --check-citations`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	// LLM flags. Zero values mean "defer to the config file".
	askCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider: openai, anthropic, ollama (default from config, else openai)")
	askCmd.Flags().StringVar(&llmModel, "llm-model", "", "model name (empty: provider default)")
	askCmd.Flags().IntVar(&llmMaxTokens, "llm-max-tokens", 0, "response token budget (0: use config)")

	// Profile flags
	askCmd.Flags().StringSliceVar(&allergies, "allergy", nil, "user allergy (repeatable)")
	askCmd.Flags().StringSliceVar(&medications, "medication", nil, "medication the user takes (repeatable)")
	askCmd.Flags().StringSliceVar(&userConditions, "user-condition", nil, "existing health condition (repeatable)")

	// Output flags
	askCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	askCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	askCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	askCmd.Flags().BoolVar(&checkCitations, "check-citations", false, "probe the cited studies for availability")
	askCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the citation/PubMed cache")
	askCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout (generation can be slow)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := buildConfig()
	cfg.LLM.Enabled = true
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if llmMaxTokens > 0 {
		cfg.LLM.MaxTokens = llmMaxTokens
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}

	if err := applyLLMEnv(cfg); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Query:    %s\n", query)
		fmt.Fprintf(os.Stderr, "Provider: %s\n", cfg.LLM.Provider)
		if cfg.LLM.Model != "" {
			fmt.Fprintf(os.Stderr, "Model:    %s\n", cfg.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Generating answer...\n")
	}

	report, err := p.Ask(ctx, pipeline.AskRequest{
		Query:          query,
		Profile:        buildProfile(),
		CheckCitations: checkCitations,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if verbose {
		if report.Generation != nil && report.Generation.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated with %s/%s\n", report.Generation.Provider, report.Generation.Model)
		}
		fmt.Fprintf(os.Stderr, "✓ Verified %d of %d suggestion(s)\n", report.VerifiedCount(), len(report.Results))
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// applyLLMEnv pulls provider credentials from the environment for the
// provider the config names
func applyLLMEnv(cfg *model.Config) error {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}
