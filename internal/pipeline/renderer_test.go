package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/servvia/trust/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		Query:       "How do I stop nausea?",
		Condition:   "nausea",
		Intent:      model.IntentHomeRemedy,
		Response:    "Try ginger tea.",
		GeneratedAt: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		Results: []model.VerificationResult{
			{
				Herb:            "ginger",
				Condition:       "nausea",
				IsValid:         true,
				ConfidenceScore: 8.5,
				EvidenceTier:    model.TierClinical,
				EvidenceLabel:   "Clinical Trial",
				Mechanism:       "5-HT3 receptor antagonism blocks nausea signals.",
				PubMedCount:     2,
			},
		},
		Citations: []model.CitationCheck{
			{
				ID:           "PMC3016669",
				URL:          "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC3016669/",
				Herb:         "ginger",
				Condition:    "nausea",
				IsAccessible: true,
				StatusCode:   200,
				Authority:    model.AuthorityPrimary,
			},
		},
	}
}

func TestRenderer_Annotated_PassThrough(t *testing.T) {
	r := NewRenderer(true)

	report := &model.Report{
		Intent:   model.IntentGeneralHealth,
		Response: "Drink plenty of water.",
	}

	if got := r.Annotated(report); got != "Drink plenty of water." {
		t.Errorf("Expected response unchanged without results, got %q", got)
	}
}

func TestRenderer_Annotated_WithResults(t *testing.T) {
	r := NewRenderer(true)

	out := r.Annotated(sampleReport())
	if !strings.HasPrefix(out, "Try ginger tea.") {
		t.Errorf("Expected response first, got %q", out)
	}
	if !strings.Contains(out, "Scientific Validation") {
		t.Error("Expected validation section")
	}
	if !strings.Contains(out, "**Ginger**") {
		t.Error("Expected verified remedy in validation section")
	}
}

func TestRenderer_Annotated_Emergency(t *testing.T) {
	r := NewRenderer(true)

	report := &model.Report{
		Intent:   model.IntentEmergency,
		Response: "Call for help now.",
	}

	out := r.Annotated(report)
	if !strings.HasPrefix(out, "Call for help now.") {
		t.Errorf("Expected response first, got %q", out)
	}
	if !strings.Contains(out, "🚨") || !strings.Contains(out, "112") {
		t.Error("Expected emergency disclaimer with hotline numbers")
	}
}

func TestRenderer_RenderJSON(t *testing.T) {
	r := NewRenderer(true)
	path := filepath.Join(t.TempDir(), "report.json")

	if err := r.RenderJSON(sampleReport(), path); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var decoded model.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if decoded.Query != "How do I stop nausea?" {
		t.Errorf("Expected query to round-trip, got %q", decoded.Query)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].Herb != "ginger" {
		t.Errorf("Expected results to round-trip, got %+v", decoded.Results)
	}
	if len(decoded.Citations) != 1 || decoded.Citations[0].ID != "PMC3016669" {
		t.Errorf("Expected citations to round-trip, got %+v", decoded.Citations)
	}
}

func TestRenderer_RenderMarkdown(t *testing.T) {
	r := NewRenderer(true)
	path := filepath.Join(t.TempDir(), "report.md")

	report := sampleReport()
	report.Generation = &model.GenerationMeta{
		Enabled:  true,
		Provider: "ollama",
		Model:    "test-model",
	}

	if err := r.RenderMarkdown(report, path); err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	md := string(data)

	for _, want := range []string{
		"# ServVia Trust Report",
		"**Query:** How do I stop nausea?",
		"**Condition:** nausea",
		"**Intent:** home_remedy",
		"**Generated:** 2026-01-15T10:30:00Z",
		"**Model:** ollama/test-model",
		"## Citations",
		"| [PMC3016669](https://www.ncbi.nlm.nih.gov/pmc/articles/PMC3016669/) | primary | ✓ 200 |",
		"Not medical advice",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}
}

func TestRenderer_RenderMarkdown_NoFooter(t *testing.T) {
	r := NewRenderer(false)
	path := filepath.Join(t.TempDir(), "report.md")

	if err := r.RenderMarkdown(sampleReport(), path); err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	if strings.Contains(string(data), "Not medical advice") {
		t.Error("Expected footer to be omitted")
	}
}

func TestCitationStatus(t *testing.T) {
	tests := []struct {
		name     string
		citation model.CitationCheck
		expected string
	}{
		{"accessible", model.CitationCheck{IsAccessible: true, StatusCode: 200}, "✓ 200"},
		{"transport error", model.CitationCheck{Error: "connection refused"}, "✗ connection refused"},
		{"http error", model.CitationCheck{StatusCode: 404}, "✗ 404"},
		{"unchecked", model.CitationCheck{}, "✗"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := citationStatus(tt.citation); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
