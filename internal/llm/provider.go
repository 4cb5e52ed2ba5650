// Package llm generates the response text the trust engine verifies.
// Generation is optional and strictly upstream: a provider drafts the
// remedy answer, the engine grades it, and a dead provider degrades to
// verifying caller-supplied text instead of failing the pipeline.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/servvia/trust/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate drafts a remedy answer for the query, grounded in the
	// supplied evidence hints
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for response generation
type GenerateRequest struct {
	// Query is the user's question
	Query string

	// Condition the query was classified as
	Condition string

	// Profile carries the user's allergies, conditions, and medications
	// so generation avoids known conflicts up front
	Profile *model.UserProfile

	// Hints are the evidence entries the answer should draw from. With
	// strict evidence enabled the prompt forbids suggesting anything else.
	Hints []EvidenceHint

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse contains the provider's output
type GenerateResponse struct {
	// Text is the generated answer, ready for verification
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// EvidenceHint is one evidence-backed remedy offered to the prompt
type EvidenceHint struct {
	Herb      string
	Tier      model.EvidenceTier
	Mechanism string
	Dose      string
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictEvidence constrains suggestions to the hinted evidence
	StrictEvidence bool

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:       "", // Disabled by default
		Model:          "",
		Timeout:        60,
		StrictEvidence: true,
		MaxTokens:      1024,
	}
}

const systemPrompt = "You are a careful home-remedies assistant. Every remedy you " +
	"suggest is verified against an evidence database after you answer, so stay " +
	"with well-documented traditional remedies and never present one as a " +
	"substitute for professional medical care."

// BuildPrompt constructs the default generation prompt. With strict
// evidence the hinted remedies become an allowlist; without hints the
// model is told to stay general.
func BuildPrompt(req GenerateRequest, strictEvidence bool) string {
	prompt := fmt.Sprintf("The user asked: %q\n", req.Query)
	if req.Condition != "" {
		prompt += fmt.Sprintf("The question was classified as being about: %s\n", req.Condition)
	}

	if len(req.Hints) > 0 {
		prompt += "\nEvidence-backed remedies for this condition:\n"
		for _, h := range req.Hints {
			line := fmt.Sprintf("- %s (%s)", h.Herb, h.Tier.Label())
			if h.Mechanism != "" {
				line += ": " + h.Mechanism
			}
			if h.Dose != "" {
				line += " Dose: " + h.Dose
			}
			prompt += line + "\n"
		}
		if strictEvidence {
			prompt += "\nONLY suggest remedies from the list above. Do not invent or add others.\n"
		}
	} else if strictEvidence {
		prompt += "\nNo evidence entries are available for this condition. Say so, suggest general self-care, and recommend seeing a professional if symptoms persist.\n"
	}

	if p := req.Profile; p != nil && !p.IsEmpty() {
		prompt += "\n"
		if len(p.Medications) > 0 {
			prompt += fmt.Sprintf("The user takes: %s. Avoid remedies that interact with these.\n", strings.Join(p.Medications, ", "))
		}
		if len(p.Conditions) > 0 {
			prompt += fmt.Sprintf("The user has these conditions: %s.\n", strings.Join(p.Conditions, ", "))
		}
		if len(p.Allergies) > 0 {
			prompt += fmt.Sprintf("The user is allergic to: %s. Never suggest these.\n", strings.Join(p.Allergies, ", "))
		}
	}

	prompt += "\nAnswer in a few short paragraphs. Include preparation steps and dosage where known."
	return prompt
}
