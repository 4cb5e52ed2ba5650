package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/servvia/trust/internal/pipeline"
	"github.com/servvia/trust/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	httpProxy    string
	httpsProxy   string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify many responses from a file in parallel",
	Long: `Batch verifies many query/response pairs concurrently:
- Read requests from a JSONL file, one JSON object per line
- Blank lines and lines starting with # are skipped
- Requests run in parallel with a configurable worker count
- Each request gets its own JSON and Markdown report

Request lines look like:
  {"query": "How do I stop nausea?", "response": "Try ginger tea."}
  {"response": "Chamomile helps you sleep.", "condition": "insomnia"}
  {"query": "sore throat?", "response": "Gargle salt water.", "check_citations": true}

Example:
  servvia-trust batch requests.jsonl
  servvia-trust batch requests.jsonl --concurrency 10 --output-dir ./reports
  servvia-trust batch requests.jsonl --check-citations --timeout 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./servvia-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")

	// Per-request flags shared with verify
	batchCmd.Flags().BoolVar(&checkCitations, "check-citations", false, "verify cited PubMed links resolve")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the citation/PubMed cache")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	batchCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  ServVia Trust Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	cfg := buildConfig()
	cfg.Concurrency.Workers = concurrency

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	processor := worker.NewBatchProcessor(p, concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Reading requests...\n")
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Processed %d request(s)\n", len(results))
	fmt.Fprintf(os.Stderr, "\n")

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)

	successCount := 0
	failureCount := 0
	verifiedTotal := 0
	unverifiedTotal := 0

	for _, result := range results {
		label := requestLabel(result)

		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", label, result.Error)
			continue
		}

		verified := result.Report.VerifiedCount()
		verifiedTotal += verified
		unverifiedTotal += len(result.Report.Results) - verified

		slug := sanitizeFilename(fmt.Sprintf("%03d-%s", result.Index+1, label))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: write JSON: %v\n", label, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: write Markdown: %v\n", label, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (verified %d/%d)\n", label, verified, len(result.Report.Results))
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:       %d request(s)\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:     %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:    %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Verified:    %d suggestion(s)\n", verifiedTotal)
	fmt.Fprintf(os.Stderr, "  Unverified:  %d suggestion(s)\n", unverifiedTotal)
	fmt.Fprintf(os.Stderr, "  Output:      %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// requestLabel names a batch result for log lines and report filenames
func requestLabel(result *worker.VerifyResult) string {
	if q := strings.TrimSpace(result.Request.Query); q != "" {
		return q
	}
	if c := strings.TrimSpace(result.Request.Condition); c != "" {
		return c
	}
	return fmt.Sprintf("request %d", result.Index+1)
}

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}

	return s
}
