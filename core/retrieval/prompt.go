package retrieval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/siherrmann/pdfrag/core/generator"
)

// Fixed messages of the terminal branches that are not answers.
const (
	NoInformationMessage      = "I couldn't find any relevant information in the uploaded documents."
	NothingToSummarizeMessage = "No documents found to summarize."
)

// BuildContext labels every chunk text with its 1-based rank and joins them
// with blank lines, keeping retrieval order.
func BuildContext(texts []string) string {
	blocks := make([]string, len(texts))
	for i, text := range texts {
		blocks[i] = fmt.Sprintf("[Chunk %d]:\n%s", i+1, text)
	}
	return strings.Join(blocks, "\n\n")
}

// BuildAnswerPrompt asks the model to answer question from context only
func BuildAnswerPrompt(question string, context string) string {
	return fmt.Sprintf(`You are a helpful AI assistant that answers questions based on provided document context.

Context from the document:
%s

Question: %s

Instructions:
- Answer the question based ONLY on the information provided in the context above
- If the context doesn't contain enough information to answer the question, say so
- Be concise but thorough
- Quote relevant parts of the context when appropriate
- If multiple chunks provide relevant information, synthesize them into a coherent answer

Answer:`, context, question)
}

// BuildSummaryPrompt asks the model for a summary of roughly maxLength words
func BuildSummaryPrompt(content string, maxLength int) string {
	return fmt.Sprintf(`Please provide a comprehensive summary of the following document excerpt.
The summary should be approximately %d words and capture the main points and key information.

Document excerpt:
%s

Summary:`, maxLength, content)
}

// DescribeFailure turns a generation error into a reason a user can act on
func DescribeFailure(err error) string {
	var statusErr *generator.StatusError
	switch {
	case errors.Is(err, generator.ErrTimeout):
		return "the request timed out, the model might be downloading or processing is slow"
	case errors.Is(err, generator.ErrUnavailable):
		return "cannot connect to the language model backend"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("API error: %d - %s", statusErr.Code, strings.TrimSpace(statusErr.Body))
	}
	return err.Error()
}

func generationFailedMessage(err error) string {
	return fmt.Sprintf("Error getting response from the language model: %s. Make sure the backend is running and the model is downloaded.", DescribeFailure(err))
}

func searchFailedMessage(err error) string {
	return fmt.Sprintf("Error searching the uploaded documents: %s.", err.Error())
}

func summaryFailedMessage(err error) string {
	return fmt.Sprintf("Error generating summary: %s", DescribeFailure(err))
}
