package llm

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openAIBackend talks to any OpenAI-compatible chat completions endpoint,
// such as NVIDIA's hosted models.
type openAIBackend struct {
	opts Options
}

func (b *openAIBackend) complete(ctx context.Context, apiKey string, req Request) (string, error) {
	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if b.opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(b.opts.BaseURL))
	}
	client := openai.NewClient(clientOpts...)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(b.opts.Model),
		Messages:    messages,
		Temperature: openai.Float(b.opts.Temperature),
	}
	if b.opts.TopP > 0 {
		params.TopP = openai.Float(b.opts.TopP)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
