package llm

import (
	"os"
	"time"

	"draftpad-backend/internal/cache"
	"draftpad-backend/internal/config"

	appErrors "draftpad-backend/pkg/errors"
)

// ResolvedModel is a model-table entry with its credential resolved.
type ResolvedModel struct {
	Key           string
	ProviderModel string
	BaseURL       string
	APIKey        string
	CreditCost    int
	Streaming     bool
}

// Registry resolves logical model keys against the static model table.
// Resolutions are cached briefly so the env lookup does not run per call.
type Registry struct {
	models map[string]config.ModelConfig
	cache  *cache.Cache
}

const resolutionTTL = time.Minute

// NewRegistry creates a registry over the configured model table.
func NewRegistry(models map[string]config.ModelConfig, c *cache.Cache) *Registry {
	return &Registry{models: models, cache: c}
}

// Resolve maps a logical model key to its provider configuration. A missing
// key or credential is a configuration error and fatal to the request.
func (r *Registry) Resolve(key string) (ResolvedModel, error) {
	if cached, ok := r.cache.Get("model:" + key); ok {
		return cached.(ResolvedModel), nil
	}

	model, ok := r.models[key]
	if !ok {
		return ResolvedModel{}, appErrors.NewConfiguration("unknown model key: " + key)
	}

	apiKey := os.Getenv(model.CredentialEnv)
	if apiKey == "" {
		return ResolvedModel{}, appErrors.NewConfiguration("missing credential for model " + key)
	}

	resolved := ResolvedModel{
		Key:           key,
		ProviderModel: model.ProviderModel,
		BaseURL:       model.BaseURL,
		APIKey:        apiKey,
		CreditCost:    model.CreditCost,
		Streaming:     model.Streaming,
	}
	r.cache.Set("model:"+key, resolved, resolutionTTL)
	return resolved, nil
}

// Cost returns the credit cost for a model key without resolving the
// credential. Unknown keys cost zero; billing skips them.
func (r *Registry) Cost(key string) int {
	if model, ok := r.models[key]; ok {
		return model.CreditCost
	}
	return 0
}
