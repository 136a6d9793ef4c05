package llm

import (
	"context"

	"go.uber.org/zap"
)

// ProviderFactory builds a Provider for a resolved model. Swappable so
// tests can inject mock providers.
type ProviderFactory func(resolved ResolvedModel) Provider

// Invoker resolves a model key and performs the call, hiding from callers
// whether the provider streamed or fell back to a single blocking call.
type Invoker struct {
	registry *Registry
	factory  ProviderFactory
	logger   *zap.Logger
}

// NewInvoker creates an invoker. A nil factory defaults to the OpenAI
// provider.
func NewInvoker(registry *Registry, factory ProviderFactory, logger *zap.Logger) *Invoker {
	if factory == nil {
		factory = func(resolved ResolvedModel) Provider {
			return NewOpenAIProvider(resolved)
		}
	}
	return &Invoker{registry: registry, factory: factory, logger: logger}
}

// Result carries the completed call's text and its credit cost.
type Result struct {
	Text       string
	CreditCost int
}

// Invoke performs the model call. When streaming is requested and the
// provider supports it, increments flow through onDelta as they arrive; if
// streaming is unsupported or fails to start, the invoker falls back to a
// single blocking call and emits the entire result as one delta. Callers
// must not need to know which path was taken.
func (i *Invoker) Invoke(ctx context.Context, modelKey string, prompt Prompt, options CompletionOptions, streaming bool, onDelta DeltaFunc) (Result, error) {
	resolved, err := i.registry.Resolve(modelKey)
	if err != nil {
		return Result{}, err
	}
	provider := i.factory(resolved)

	if streaming && provider.SupportsStreaming() {
		delivered := false
		text, err := provider.CompleteStream(ctx, prompt, options, func(delta string) {
			delivered = true
			if onDelta != nil {
				onDelta(delta)
			}
		})
		if err == nil {
			return Result{Text: text, CreditCost: resolved.CreditCost}, nil
		}
		// Fall back only when the stream never started delivering; a
		// mid-stream failure would otherwise duplicate already-sent text.
		if delivered || ctx.Err() != nil {
			return Result{}, err
		}
		i.logger.Warn("model stream failed to start, falling back to single-shot call",
			zap.String("model_key", modelKey),
			zap.Error(err))
	}

	text, err := provider.Complete(ctx, prompt, options)
	if err != nil {
		return Result{}, err
	}
	if onDelta != nil {
		onDelta(text)
	}
	return Result{Text: text, CreditCost: resolved.CreditCost}, nil
}
