package ai

import "context"

// UnsupportedReply is the literal assistant reply for models no provider
// serves. It is a successful completion, not an error.
const UnsupportedReply = "Model not supported"

// Router dispatches a completion to the provider serving the model.
type Router struct {
	registry  *Registry
	openai    TextGenerator
	anthropic TextGenerator
}

// NewRouter wires the registry to one generator per provider. Either
// generator may be nil when the backend is not configured; its models then
// fail with an auth-class error.
func NewRouter(registry *Registry, openai, anthropic TextGenerator) *Router {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Router{registry: registry, openai: openai, anthropic: anthropic}
}

// Complete resolves the provider once and forwards the prompt.
func (r *Router) Complete(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	switch r.registry.Resolve(model) {
	case ProviderOpenAI:
		if r.openai == nil {
			return "", &ProviderError{Provider: ProviderOpenAI, Kind: KindAuth, Message: "openai not configured"}
		}
		return r.openai.GenerateText(ctx, model, systemPrompt, userPrompt)
	case ProviderAnthropic:
		if r.anthropic == nil {
			return "", &ProviderError{Provider: ProviderAnthropic, Kind: KindAuth, Message: "anthropic not configured"}
		}
		return r.anthropic.GenerateText(ctx, model, systemPrompt, userPrompt)
	default:
		return UnsupportedReply, nil
	}
}
