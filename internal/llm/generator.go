package llm

import (
	"context"
	"fmt"

	"github.com/servvia/trust/internal/model"
)

// Generator wraps a provider with graceful degradation: no provider
// means generation is simply off, and provider failures turn into
// warnings instead of errors so verification of caller-supplied text
// can still proceed.
type Generator struct {
	provider Provider
	config   Config
}

// NewGenerator creates a generator from config. An empty provider name
// yields a disabled generator, not an error.
func NewGenerator(config Config) (*Generator, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Generator{
		provider: provider,
		config:   config,
	}, nil
}

// IsEnabled reports whether a provider is configured
func (g *Generator) IsEnabled() bool {
	return g.provider != nil
}

// ProviderName returns the configured provider's name, or "" when disabled
func (g *Generator) ProviderName() string {
	if g.provider == nil {
		return ""
	}
	return g.provider.Name()
}

// Generate drafts an answer for the query. Returns empty text with nil
// meta when generation is disabled; returns empty text with warning meta
// when the provider is down or errors.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (string, *model.GenerationMeta, error) {
	if g.provider == nil {
		return "", nil, nil
	}

	meta := &model.GenerationMeta{
		Provider: g.provider.Name(),
		Model:    g.config.Model,
	}

	if !g.provider.IsAvailable(ctx) {
		meta.Warnings = append(meta.Warnings,
			"LLM provider not available - check configuration and API keys")
		return "", meta, nil
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		meta.Warnings = append(meta.Warnings, fmt.Sprintf("generation failed: %v", err))
		return "", meta, nil
	}

	meta.Enabled = true
	meta.Model = resp.Model
	meta.Warnings = append(meta.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))

	return resp.Text, meta, nil
}
