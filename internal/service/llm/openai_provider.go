package llm

import (
	"context"

	appErrors "draftpad-backend/pkg/errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider implements Provider using the official openai-go SDK
// (chat completions, streaming and single-shot).
type OpenAIProvider struct {
	model  string
	opts   []option.RequestOption
	stream bool
}

// NewOpenAIProvider creates a provider for one resolved model.
func NewOpenAIProvider(resolved ResolvedModel) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(resolved.APIKey)}
	if resolved.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(resolved.BaseURL))
	}
	return &OpenAIProvider{
		model:  resolved.ProviderModel,
		opts:   opts,
		stream: resolved.Streaming,
	}
}

// SupportsStreaming implements Provider.
func (p *OpenAIProvider) SupportsStreaming() bool {
	return p.stream
}

// Complete implements Provider.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt Prompt, options CompletionOptions) (string, error) {
	client := openai.NewClient(p.opts...)

	resp, err := client.Chat.Completions.New(ctx, p.buildParams(prompt, options))
	if err != nil {
		return "", appErrors.NewUpstream("model call failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", appErrors.NewUpstream("model returned no choices", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteStream implements Provider. Each content increment is forwarded
// through onDelta and accumulated into the returned full text.
func (p *OpenAIProvider) CompleteStream(ctx context.Context, prompt Prompt, options CompletionOptions, onDelta DeltaFunc) (string, error) {
	client := openai.NewClient(p.opts...)

	stream := client.Chat.Completions.NewStreaming(ctx, p.buildParams(prompt, options))
	acc := openai.ChatCompletionAccumulator{}

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) > 0 {
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				onDelta(delta)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", appErrors.NewUpstream("model stream failed", err)
	}
	if len(acc.Choices) == 0 {
		return "", appErrors.NewUpstream("model stream returned no choices", nil)
	}
	return acc.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) buildParams(prompt Prompt, options CompletionOptions) openai.ChatCompletionNewParams {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(prompt.System),
	}
	for _, turn := range prompt.History {
		switch turn.Role {
		case "assistant":
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(turn.Text))
		default:
			msgs = append(msgs, openai.UserMessage(turn.Text))
		}
	}
	msgs = append(msgs, openai.UserMessage(prompt.User))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: msgs,
	}
	if options.Temperature > 0 {
		params.Temperature = openai.Float(options.Temperature)
	}
	if options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(options.MaxTokens))
	}
	return params
}
