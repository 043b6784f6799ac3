package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/siherrmann/pdfrag/core/generator"
)

type ollamaGenerator struct {
	options generator.Options
	client  *http.Client
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (g *ollamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  g.options.Model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: g.options.Temperature,
			TopP:        g.options.TopP,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	body, err := g.do(ctx, http.MethodPost, "/api/generate", payload)
	if err != nil {
		return "", err
	}

	var rsp generateResponse
	if err := json.Unmarshal(body, &rsp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	return rsp.Response, nil
}

func (g *ollamaGenerator) Models(ctx context.Context) ([]string, error) {
	body, err := g.do(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, err
	}

	var rsp tagsResponse
	if err := json.Unmarshal(body, &rsp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	models := make([]string, 0, len(rsp.Models))
	for _, m := range rsp.Models {
		models = append(models, m.Name)
	}
	return models, nil
}

func (g *ollamaGenerator) do(ctx context.Context, method string, path string, payload []byte) ([]byte, error) {
	url := strings.TrimRight(g.options.URL, "/") + path

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rsp, err := g.client.Do(req)
	if err != nil {
		return nil, generator.Classify(err)
	}
	defer rsp.Body.Close()

	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, generator.Classify(err)
	}

	if rsp.StatusCode != http.StatusOK {
		return nil, &generator.StatusError{Code: rsp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// NewGenerator creates a generator for the Ollama /api/generate endpoint
func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	return &ollamaGenerator{
		options: options,
		client: &http.Client{
			Timeout: options.Timeout,
		},
	}
}
