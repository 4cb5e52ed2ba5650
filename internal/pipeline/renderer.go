package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/servvia/trust/internal/engine"
	"github.com/servvia/trust/internal/intent"
	"github.com/servvia/trust/internal/model"
)

// Renderer writes reports as JSON and Markdown files and prints the
// console summary. The report stays pure data; all presentation,
// including the validation section and the emergency disclaimer, is
// assembled here.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer. includeFooter controls the closing
// disclaimer on Markdown reports.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{
		includeFooter: includeFooter,
	}
}

// Annotated returns the response with the validation section appended,
// plus the emergency disclaimer when the query was triaged as one
func (r *Renderer) Annotated(report *model.Report) string {
	out := engine.Annotate(report.Response, report.Results, report.GlobalWarnings)
	if report.Intent == model.IntentEmergency {
		out += intent.EmergencyDisclaimer
	}
	return out
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// RenderMarkdown writes the report as a Markdown document: query
// context first, then the annotated response, then the citation table
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	b.WriteString("# ServVia Trust Report\n\n")
	fmt.Fprintf(&b, "**Query:** %s\n\n", report.Query)
	if report.Condition != "" {
		fmt.Fprintf(&b, "**Condition:** %s\n\n", report.Condition)
	}
	fmt.Fprintf(&b, "**Intent:** %s\n\n", report.Intent)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", report.GeneratedAt.Format(time.RFC3339))
	if g := report.Generation; g != nil && g.Enabled {
		fmt.Fprintf(&b, "**Model:** %s/%s\n\n", g.Provider, g.Model)
	}

	b.WriteString("---\n\n")
	b.WriteString(r.Annotated(report))
	b.WriteString("\n")

	if len(report.Citations) > 0 {
		b.WriteString("\n## Citations\n\n")
		b.WriteString("| Study | Authority | Status |\n")
		b.WriteString("|-------|-----------|--------|\n")
		for _, c := range report.Citations {
			fmt.Fprintf(&b, "| [%s](%s) | %s | %s |\n", c.ID, c.URL, c.Authority, citationStatus(c))
		}
	}

	if r.includeFooter {
		b.WriteString("\n---\n\n")
		b.WriteString("*Generated by [ServVia Trust](https://github.com/servvia/trust), ")
		b.WriteString("evidence-graded verification of home remedy advice. Not medical advice.*\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// RenderSummary prints the annotated response and a verdict line to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Println(r.Annotated(report))

	if report.Intent == model.IntentEmergency {
		return
	}

	fmt.Println()
	fmt.Printf("Verified: %d  Unverified: %d  Warnings: %d\n",
		report.VerifiedCount(), report.HallucinationCount(), len(report.GlobalWarnings))

	if len(report.Citations) > 0 {
		fmt.Println()
		for _, c := range report.Citations {
			mark := "✓"
			if !c.IsAccessible {
				mark = "✗"
			}
			fmt.Printf("%s %s (%s)\n", mark, c.URL, c.Authority)
		}
	}
}

// citationStatus renders one citation verdict for the Markdown table
func citationStatus(c model.CitationCheck) string {
	switch {
	case c.IsAccessible:
		return fmt.Sprintf("✓ %d", c.StatusCode)
	case c.Error != "":
		return "✗ " + c.Error
	case c.StatusCode != 0:
		return fmt.Sprintf("✗ %d", c.StatusCode)
	default:
		return "✗"
	}
}
