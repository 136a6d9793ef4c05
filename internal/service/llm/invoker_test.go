package llm

import (
	"context"
	"errors"
	"testing"

	"draftpad-backend/internal/cache"
	"draftpad-backend/internal/config"

	appErrors "draftpad-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	t.Setenv("TEST_MODEL_KEY", "secret")
	return NewRegistry(map[string]config.ModelConfig{
		"standard": {ProviderModel: "test-model", CredentialEnv: "TEST_MODEL_KEY", CreditCost: 5, Streaming: true},
		"free":     {ProviderModel: "test-model-lite", CredentialEnv: "TEST_MODEL_KEY", CreditCost: 0, Streaming: true},
	}, cache.New())
}

func TestInvoker(t *testing.T) {
	ctx := context.Background()
	prompt := Prompt{System: "system", User: "user"}

	t.Run("StreamingDeliversDeltas", func(t *testing.T) {
		mock := NewMockProvider("hello streaming world")
		invoker := NewInvoker(testRegistry(t), func(ResolvedModel) Provider { return mock }, zap.NewNop())

		var deltas []string
		result, err := invoker.Invoke(ctx, "standard", prompt, CompletionOptions{}, true, func(text string) {
			deltas = append(deltas, text)
		})

		require.NoError(t, err)
		assert.Equal(t, "hello streaming world", result.Text)
		assert.Equal(t, 5, result.CreditCost)
		assert.Greater(t, len(deltas), 1)
	})

	t.Run("NonStreamingEmitsSingleDelta", func(t *testing.T) {
		mock := NewMockProvider("full answer")
		mock.SetStreaming(false)
		invoker := NewInvoker(testRegistry(t), func(ResolvedModel) Provider { return mock }, zap.NewNop())

		var deltas []string
		result, err := invoker.Invoke(ctx, "standard", prompt, CompletionOptions{}, true, func(text string) {
			deltas = append(deltas, text)
		})

		require.NoError(t, err)
		assert.Equal(t, "full answer", result.Text)
		require.Len(t, deltas, 1)
		assert.Equal(t, "full answer", deltas[0])
	})

	t.Run("StreamStartFailureFallsBack", func(t *testing.T) {
		mock := &fallbackProvider{response: "recovered"}
		invoker := NewInvoker(testRegistry(t), func(ResolvedModel) Provider { return mock }, zap.NewNop())

		var deltas []string
		result, err := invoker.Invoke(ctx, "standard", prompt, CompletionOptions{}, true, func(text string) {
			deltas = append(deltas, text)
		})

		require.NoError(t, err)
		assert.Equal(t, "recovered", result.Text)
		require.Len(t, deltas, 1)
	})

	t.Run("ProviderErrorIsFatal", func(t *testing.T) {
		mock := NewMockProvider("")
		mock.SetError(errors.New("provider down"))
		invoker := NewInvoker(testRegistry(t), func(ResolvedModel) Provider { return mock }, zap.NewNop())

		_, err := invoker.Invoke(ctx, "standard", prompt, CompletionOptions{}, false, nil)
		require.Error(t, err)
	})

	t.Run("UnknownModelKey", func(t *testing.T) {
		invoker := NewInvoker(testRegistry(t), func(ResolvedModel) Provider { return NewMockProvider("x") }, zap.NewNop())

		_, err := invoker.Invoke(ctx, "missing", prompt, CompletionOptions{}, false, nil)
		require.Error(t, err)
		assert.True(t, appErrors.IsConfiguration(err))
	})
}

func TestRegistry(t *testing.T) {
	t.Run("MissingCredential", func(t *testing.T) {
		registry := NewRegistry(map[string]config.ModelConfig{
			"standard": {ProviderModel: "m", CredentialEnv: "DRAFTPAD_UNSET_CREDENTIAL"},
		}, cache.New())

		_, err := registry.Resolve("standard")
		require.Error(t, err)
		assert.True(t, appErrors.IsConfiguration(err))
	})

	t.Run("CostLookup", func(t *testing.T) {
		registry := testRegistry(t)
		assert.Equal(t, 5, registry.Cost("standard"))
		assert.Equal(t, 0, registry.Cost("free"))
		assert.Equal(t, 0, registry.Cost("unknown"))
	})
}

// fallbackProvider claims streaming support but fails before the first
// delta, exercising the invoker's single-shot fallback.
type fallbackProvider struct {
	response string
}

func (p *fallbackProvider) SupportsStreaming() bool { return true }

func (p *fallbackProvider) Complete(ctx context.Context, prompt Prompt, options CompletionOptions) (string, error) {
	return p.response, nil
}

func (p *fallbackProvider) CompleteStream(ctx context.Context, prompt Prompt, options CompletionOptions, onDelta DeltaFunc) (string, error) {
	return "", errors.New("stream refused")
}
