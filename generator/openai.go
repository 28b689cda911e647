package generator

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ragcore/ragcore/ragerrors"
	"github.com/ragcore/ragcore/reliability"
)

// OpenAIGenerator implements Generator against a chat-completions endpoint,
// with every call wrapped in a circuit breaker plus bounded retry.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	breaker *reliability.Breaker
	retry   reliability.RetryPolicy
}

func NewOpenAIGenerator(apiKey, baseURL, model string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		breaker: reliability.NewBreaker(5, 60*time.Second),
		retry:   reliability.NewRetryPolicy(2, 500*time.Millisecond, 5*time.Second),
	}
}

func (g *OpenAIGenerator) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	var resp openai.ChatCompletionResponse
	callErr := g.breaker.Call(func() error {
		return g.retry.Execute(ctx.Done(), func() error {
			var err error
			resp, err = g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model: g.model,
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
					{Role: openai.ChatMessageRoleUser, Content: userPrompt},
				},
				Temperature: float32(temperature),
			})
			return err
		})
	})
	if callErr != nil {
		return "", &ragerrors.ExternalServiceError{Service: "generator", Err: callErr}
	}
	if len(resp.Choices) == 0 {
		return "", &ragerrors.ExternalServiceError{Service: "generator", Err: errEmpty{}}
	}
	return resp.Choices[0].Message.Content, nil
}

type errEmpty struct{}

func (errEmpty) Error() string { return "generator returned no choices" }
