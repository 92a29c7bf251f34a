package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/foxseedlab/vox/internal/translation"
	"github.com/sashabaranov/go-openai"
)

const openAISystemPrompt = "You translate Turkish speech transcripts into English. Reply with the English translation only."

// OpenAIClient translates with a chat completion model.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, ErrEmptyCredential
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (c *OpenAIClient) Translate(ctx context.Context, req translation.Request) (translation.Response, error) {
	model := c.model
	if req.Model != "" {
		model = req.Model
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openAISystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Inputs},
		},
		Temperature: 0,
	})
	if err != nil {
		return translation.Response{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return translation.Response{}, nil
	}
	return translation.Response{TranslationText: strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
}
