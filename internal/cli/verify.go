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
	outJSON        string
	outMD          string
	timeout        time.Duration
	responseFile   string
	queryText      string
	conditionName  string
	checkCitations bool
	noCache        bool
	noFooter       bool

	allergies      []string
	medications    []string
	userConditions []string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [response]",
	Short: "Verify remedy advice against the evidence tables",
	Long: `Verify scans response text for herb suggestions and grades every
one against the evidence knowledge base:
- Evidence tier, mechanism, and study count per suggestion
- Confidence score on a 1-10 scale
- Interaction warnings against the user's medications
- Contraindication warnings against the user's conditions
- Suggestions with no evidence flagged as unverified

Example:
  servvia-trust verify "Try ginger tea." --query "How do I stop nausea?"
  servvia-trust verify --file response.txt --condition nausea --json report.json
  servvia-trust verify "Chamomile helps." --medication warfarin --check-citations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	// Input flags
	verifyCmd.Flags().StringVar(&queryText, "query", "", "the question the response answers (drives intent and condition)")
	verifyCmd.Flags().StringVar(&conditionName, "condition", "", "explicit condition to verify against (skips classification)")
	verifyCmd.Flags().StringVar(&responseFile, "file", "", "read the response text from a file")

	// Profile flags
	verifyCmd.Flags().StringSliceVar(&allergies, "allergy", nil, "user allergy (repeatable)")
	verifyCmd.Flags().StringSliceVar(&medications, "medication", nil, "medication the user takes (repeatable)")
	verifyCmd.Flags().StringSliceVar(&userConditions, "user-condition", nil, "existing health condition (repeatable)")

	// Output flags
	verifyCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	verifyCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	verifyCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Citation flags
	verifyCmd.Flags().BoolVar(&checkCitations, "check-citations", false, "probe the cited studies for availability")
	verifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the citation/PubMed cache")
	verifyCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout (citation checks can be slow)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	response, err := resolveResponse(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := buildConfig()

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying %d bytes of response text\n", len(response))
		if queryText != "" {
			fmt.Fprintf(os.Stderr, "Query: %s\n", queryText)
		}
		fmt.Fprintf(os.Stderr, "Citations: %v\n", checkCitations)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	report, err := p.Verify(ctx, pipeline.Request{
		Query:          queryText,
		Response:       response,
		Condition:      conditionName,
		Profile:        buildProfile(),
		CheckCitations: checkCitations,
	})
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Found %d herb suggestion(s)\n", len(report.Results))
		fmt.Fprintf(os.Stderr, "✓ Verified %d, unverified %d\n", report.VerifiedCount(), report.HallucinationCount())
		if len(report.Citations) > 0 {
			fmt.Fprintf(os.Stderr, "✓ Checked %d citation(s)\n", len(report.Citations))
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// resolveResponse picks the response text from the argument or --file
func resolveResponse(args []string) (string, error) {
	if len(args) == 1 && responseFile != "" {
		return "", fmt.Errorf("provide the response as an argument or with --file, not both")
	}
	if len(args) == 1 {
		return args[0], nil
	}
	if responseFile != "" {
		data, err := os.ReadFile(responseFile)
		if err != nil {
			return "", fmt.Errorf("read response file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return "", fmt.Errorf("provide the response text as an argument or with --file")
}

// buildProfile assembles the user profile from flags, nil when empty
func buildProfile() *model.UserProfile {
	if len(allergies) == 0 && len(medications) == 0 && len(userConditions) == 0 {
		return nil
	}
	return &model.UserProfile{
		Allergies:   allergies,
		Medications: medications,
		Conditions:  userConditions,
	}
}
