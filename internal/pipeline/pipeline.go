// Package pipeline wires the verification stages together: intent
// triage, optional response generation, claim verification, citation
// checking, and report assembly.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/servvia/trust/internal/cache"
	"github.com/servvia/trust/internal/engine"
	"github.com/servvia/trust/internal/extract"
	"github.com/servvia/trust/internal/intent"
	"github.com/servvia/trust/internal/knowledge"
	"github.com/servvia/trust/internal/llm"
	"github.com/servvia/trust/internal/model"
	"github.com/servvia/trust/internal/validate"
)

// Pipeline orchestrates the complete verification flow
type Pipeline struct {
	kb         *knowledge.Base
	engine     *engine.Engine
	triage     *intent.Classifier
	conditions *extract.ConditionClassifier
	checker    *validate.Checker
	generator  *llm.Generator // nil when generation is disabled
	renderer   *Renderer
	config     *model.Config
}

// NewPipeline creates a pipeline from the given configuration. The
// knowledge tables load fail-fast; a misconfigured LLM provider only
// warns, because verification never depends on generation.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	kb, err := LoadKnowledge(cfg.Knowledge)
	if err != nil {
		return nil, fmt.Errorf("load knowledge: %w", err)
	}

	store := cache.FromConfig(cfg.Cache)

	var generator *llm.Generator
	if cfg.LLM.Enabled && cfg.LLM.Provider != "" {
		g, err := llm.NewGenerator(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			generator = g
		}
	}

	return &Pipeline{
		kb:         kb,
		engine:     engine.New(kb),
		triage:     intent.NewClassifier(),
		conditions: extract.NewConditionClassifier(),
		checker:    validate.NewChecker(cfg, store),
		generator:  generator,
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		config:     cfg,
	}, nil
}

// LoadKnowledge loads the evidence tables from the configured directory,
// falling back to the embedded defaults
func LoadKnowledge(cfg model.KnowledgeConfig) (*knowledge.Base, error) {
	if cfg.Dir != "" {
		return knowledge.LoadDir(cfg.Dir)
	}
	return knowledge.Load()
}

// Engine exposes the trust engine for direct lookups (interactions,
// per-condition evidence)
func (p *Pipeline) Engine() *engine.Engine {
	return p.engine
}

// Knowledge exposes the loaded knowledge base
func (p *Pipeline) Knowledge() *knowledge.Base {
	return p.kb
}

// Request is one verification job: response text to check plus the
// context it runs against. An empty Condition means classify from Query.
type Request struct {
	Query          string             `json:"query"`
	Response       string             `json:"response"`
	Condition      string             `json:"condition,omitempty"`
	Profile        *model.UserProfile `json:"profile,omitempty"`
	CheckCitations bool               `json:"check_citations,omitempty"`
}

// Verify checks caller-supplied response text and assembles the report.
// Emergency queries skip verification entirely; the renderer appends
// the emergency disclaimer when it sees that intent on the report.
func (p *Pipeline) Verify(ctx context.Context, req Request) (*model.Report, error) {
	cls := p.triage.Classify(req.Query)

	report := &model.Report{
		Query:       req.Query,
		Intent:      cls.Intent,
		Response:    req.Response,
		GeneratedAt: time.Now().UTC(),
	}

	if !cls.ApplyTrustEngine {
		return report, nil
	}

	condition := strings.ToLower(strings.TrimSpace(req.Condition))
	if condition == "" {
		condition = p.conditions.Classify(req.Query)
	}
	report.Condition = condition

	// Web-rendered responses get scanned on their visible text only;
	// the report keeps the response verbatim.
	scanText := req.Response
	if extract.LooksLikeHTML(scanText) {
		if text, err := extract.StripHTML(scanText); err == nil && text != "" {
			scanText = text
		}
	}

	results, warnings := p.engine.Verify(engine.Request{
		Response:  scanText,
		Query:     req.Query,
		Condition: condition,
		Profile:   req.Profile,
	})
	report.Results = results
	report.GlobalWarnings = warnings

	if req.CheckCitations {
		if citations := BuildCitations(p.kb, results); len(citations) > 0 {
			report.Citations = p.checker.Check(ctx, citations)
		}
	}

	return report, nil
}

// AskRequest is a full pipeline run: generate an answer for the query,
// then verify the generated text like any other response
type AskRequest struct {
	Query          string
	Profile        *model.UserProfile
	Model          string // Optional override of the configured model
	CheckCitations bool
}

// Ask generates an answer and verifies it. Emergencies still generate
// (the answer becomes general guidance) but skip verification and pick
// up the emergency disclaimer at render time. Provider failures degrade
// to an empty response with the failure recorded in the generation
// metadata.
func (p *Pipeline) Ask(ctx context.Context, req AskRequest) (*model.Report, error) {
	if p.generator == nil || !p.generator.IsEnabled() {
		return nil, fmt.Errorf("ask requires an LLM provider: set llm.provider in the config or pass --llm-provider")
	}

	condition := p.conditions.Classify(req.Query)

	text, meta, err := p.generator.Generate(ctx, llm.GenerateRequest{
		Query:     req.Query,
		Condition: condition,
		Profile:   req.Profile,
		Hints:     p.evidenceHints(condition, req.Profile),
		Model:     req.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	report, err := p.Verify(ctx, Request{
		Query:          req.Query,
		Response:       text,
		Condition:      condition,
		Profile:        req.Profile,
		CheckCitations: req.CheckCitations,
	})
	if err != nil {
		return nil, err
	}
	report.Generation = meta

	return report, nil
}

// evidenceHints builds the prompt allowlist from the evidence table,
// strongest tier first, minus anything the user is allergic to
func (p *Pipeline) evidenceHints(condition string, profile *model.UserProfile) []llm.EvidenceHint {
	var hints []llm.EvidenceHint
	for _, ev := range p.engine.EvidenceFor(condition) {
		if profile.IsAllergicTo(ev.Herb) {
			continue
		}
		hints = append(hints, llm.EvidenceHint{
			Herb:      ev.Herb,
			Tier:      ev.Tier,
			Mechanism: ev.Mechanism,
			Dose:      ev.Dose,
		})
	}
	return hints
}

// BuildCitations collects the PubMed citations behind every
// evidence-backed result, deduplicated by study ID. Unverified claims
// carry no citations to probe.
func BuildCitations(kb *knowledge.Base, results []model.VerificationResult) []model.CitationCheck {
	var citations []model.CitationCheck
	seen := make(map[string]bool)

	for _, r := range results {
		entry, ok := kb.Evidence(r.Herb, r.Condition)
		if !ok {
			continue
		}
		for _, id := range entry.PubMedIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			citations = append(citations, validate.NewCitation(id, r.Herb, r.Condition))
		}
	}

	return citations
}

// RenderReport renders the report to the requested outputs and prints
// the console summary
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(report)

	return nil
}
