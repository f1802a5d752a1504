package ai

import (
	"context"
	"strings"
)

// Provider identifies which completion backend serves a model.
type Provider int

const (
	ProviderUnsupported Provider = iota
	ProviderOpenAI
	ProviderAnthropic
)

func (p Provider) String() string {
	switch p {
	case ProviderOpenAI:
		return "openai"
	case ProviderAnthropic:
		return "anthropic"
	default:
		return "unsupported"
	}
}

// Registry maps model-name prefixes to providers. Resolution happens once
// per request, not inside each provider call.
type Registry struct {
	prefixes map[string]Provider
}

// NewRegistry returns the default model registry: gpt* models route to
// OpenAI, claude* models to Anthropic, everything else is unsupported.
func NewRegistry() *Registry {
	return &Registry{prefixes: map[string]Provider{
		"gpt":    ProviderOpenAI,
		"claude": ProviderAnthropic,
	}}
}

// Register adds or overrides a prefix mapping.
func (r *Registry) Register(prefix string, p Provider) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return
	}
	r.prefixes[prefix] = p
}

// Resolve returns the provider serving the given model name.
func (r *Registry) Resolve(model string) Provider {
	model = strings.ToLower(strings.TrimSpace(model))
	for prefix, p := range r.prefixes {
		if strings.HasPrefix(model, prefix) {
			return p
		}
	}
	return ProviderUnsupported
}

// TextGenerator generates text from a system prompt and user prompt.
// Both provider clients implement this interface.
type TextGenerator interface {
	GenerateText(ctx context.Context, model, systemPrompt, userPrompt string) (string, error)
}
