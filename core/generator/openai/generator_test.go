package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siherrmann/pdfrag/core/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Run("Chat completion content is returned", func(t *testing.T) {
		var received map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","model":"llama3.2","choices":[{"index":0,"message":{"role":"assistant","content":"Paris."},"finish_reason":"stop"}]}`))
		}))
		defer server.Close()

		g := NewGenerator(
			generator.WithURL(server.URL+"/v1"),
			generator.WithApiKey("secret"),
			generator.WithModel("llama3.2"),
		)

		answer, err := g.Generate(context.Background(), "Capital of France?")
		require.NoError(t, err)
		assert.Equal(t, "Paris.", answer)
		assert.Equal(t, "llama3.2", received["model"])

		messages, ok := received["messages"].([]interface{})
		require.True(t, ok)
		require.Len(t, messages, 1)
		assert.Equal(t, "Capital of France?", messages[0].(map[string]interface{})["content"])
	})

	t.Run("Api error is a status error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"backend exploded","type":"server_error"}}`))
		}))
		defer server.Close()

		g := NewGenerator(generator.WithURL(server.URL + "/v1"))

		_, err := g.Generate(context.Background(), "prompt")
		var statusErr *generator.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
		assert.Contains(t, statusErr.Body, "backend exploded")
	})

	t.Run("Empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
		}))
		defer server.Close()

		g := NewGenerator(generator.WithURL(server.URL + "/v1"))

		_, err := g.Generate(context.Background(), "prompt")
		assert.ErrorContains(t, err, "no response")
	})

	t.Run("Unreachable backend is unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		g := NewGenerator(generator.WithURL(url + "/v1"))

		_, err := g.Generate(context.Background(), "prompt")
		assert.ErrorIs(t, err, generator.ErrUnavailable)
	})
}

func TestModels(t *testing.T) {
	t.Run("Lists model ids", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/models", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"llama3.2:latest","object":"model"}]}`))
		}))
		defer server.Close()

		g := NewGenerator(generator.WithURL(server.URL + "/v1"))

		models, err := g.Models(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"llama3.2:latest"}, models)
	})
}
