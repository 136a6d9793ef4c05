// Package media implements the reconciler's media ports: cover images
// generated through the OpenAI images API and stored in S3.
package media

import (
	"context"
	"encoding/base64"

	appErrors "draftpad-backend/pkg/errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIImageGenerator generates images through the OpenAI images API.
type OpenAIImageGenerator struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAIImageGenerator creates a generator for the given image model.
func NewOpenAIImageGenerator(apiKey, model string) *OpenAIImageGenerator {
	return &OpenAIImageGenerator{
		model: model,
		opts:  []option.RequestOption{option.WithAPIKey(apiKey)},
	}
}

// Generate implements reconcile.ImageGenerator, returning the raw PNG bytes.
func (g *OpenAIImageGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	client := openai.NewClient(g.opts...)

	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(g.model),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return nil, appErrors.NewUpstream("image generation failed", err)
	}
	if len(resp.Data) == 0 {
		return nil, appErrors.NewUpstream("image generation returned no data", nil)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to decode generated image")
	}
	return data, nil
}
