package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI prompts any OpenAI-compatible chat completions API.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI returns a generator for baseURL (https://api.openai.com/v1 or a
// compatible local server) and model.
func NewOpenAI(baseURL, apiKey, model string, opts ...option.RequestOption) *OpenAI {
	all := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		all = append(all, option.WithBaseURL(baseURL))
	}
	all = append(all, opts...)
	return &OpenAI{client: openai.NewClient(all...), model: model}
}

// Generate sends prompt as a single user message.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
