package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/siherrmann/pdfrag/core/generator"
)

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.options.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: float32(g.options.Temperature),
		TopP:        float32(g.options.TopP),
	}

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return rsp.Choices[0].Message.Content, nil
}

func (g *openAIGenerator) Models(ctx context.Context) ([]string, error) {
	rsp, err := g.client.ListModels(ctx)
	if err != nil {
		return nil, classify(err)
	}

	models := make([]string, 0, len(rsp.Models))
	for _, m := range rsp.Models {
		models = append(models, m.ID)
	}
	return models, nil
}

// classify maps client errors onto the generator failure categories
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &generator.StatusError{Code: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &generator.StatusError{Code: reqErr.HTTPStatusCode, Body: body}
	}

	return generator.Classify(err)
}

// NewGenerator creates a generator for any OpenAI compatible chat completion API.
// The URL option is used as base URL, e.g. http://localhost:11434/v1 for Ollama.
// Without a URL option the public OpenAI endpoint is used.
func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	config := openai.DefaultConfig(options.ApiKey)
	if options.URL != "" && options.URL != generator.DefaultURL {
		config.BaseURL = options.URL
	}
	config.HTTPClient = &http.Client{
		Timeout: options.Timeout,
	}

	return &openAIGenerator{
		options: options,
		client:  openai.NewClientWithConfig(config),
	}
}
