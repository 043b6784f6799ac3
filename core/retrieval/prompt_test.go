package retrieval

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/siherrmann/pdfrag/core/generator"
	"github.com/stretchr/testify/assert"
)

func TestBuildContext(t *testing.T) {
	t.Run("Chunks are ranked and separated by blank lines", func(t *testing.T) {
		context := BuildContext([]string{"first text", "second text"})
		assert.Equal(t, "[Chunk 1]:\nfirst text\n\n[Chunk 2]:\nsecond text", context)
	})

	t.Run("No chunks", func(t *testing.T) {
		assert.Equal(t, "", BuildContext(nil))
	})
}

func TestBuildAnswerPrompt(t *testing.T) {
	prompt := BuildAnswerPrompt("What is RAG?", "[Chunk 1]:\nRAG retrieves context.")

	assert.Contains(t, prompt, "Question: What is RAG?")
	assert.Contains(t, prompt, "Context from the document:\n[Chunk 1]:\nRAG retrieves context.")
	assert.Contains(t, prompt, "based ONLY on the information provided")
	assert.Contains(t, prompt, "say so")
	assert.Contains(t, prompt, "Be concise")
	assert.Contains(t, prompt, "Quote relevant parts")
	assert.Contains(t, prompt, "synthesize them")
	assert.True(t, strings.HasSuffix(prompt, "Answer:"))
}

func TestBuildSummaryPrompt(t *testing.T) {
	prompt := BuildSummaryPrompt("chunk one\n\nchunk two", 250)

	assert.Contains(t, prompt, "approximately 250 words")
	assert.Contains(t, prompt, "Document excerpt:\nchunk one\n\nchunk two")
}

func TestDescribeFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"Timeout", fmt.Errorf("%w: deadline", generator.ErrTimeout), "timed out"},
		{"Unavailable", fmt.Errorf("%w: connection refused", generator.ErrUnavailable), "cannot connect"},
		{"Status", &generator.StatusError{Code: 500, Body: "boom\n"}, "API error: 500 - boom"},
		{"Other", errors.New("something odd"), "something odd"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, DescribeFailure(tc.err), tc.contains)
		})
	}
}
