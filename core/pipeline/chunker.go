package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/siherrmann/pdfrag/model"
)

// ErrInvalidStride is returned when the overlap consumes a whole chunk.
var ErrInvalidStride = errors.New("chunk overlap leaves no stride")

// wordSampleSize is the number of leading words used to estimate the average word length
const wordSampleSize = 100

// WordChunker creates a chunker that splits text on word boundaries.
// chunkSize and overlap are given in characters and converted to word counts
// using the average word length of the text.
func WordChunker(chunkSize int, overlap int) ChunkFunc {
	return func(text string, source string) ([]*model.Chunk, error) {
		chunks, err := ChunkText(text, chunkSize, overlap)
		if err != nil {
			return nil, err
		}
		for _, chunk := range chunks {
			chunk.Source = source
		}
		return chunks, nil
	}
}

// ChunkText splits text into overlapping chunks of whole words.
// Empty text yields no chunks. The last chunk always ends at the last word.
func ChunkText(text string, chunkSize int, overlap int) ([]*model.Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []*model.Chunk{}, nil
	}

	avgWordLength := averageWordLength(words)
	wordsPerChunk := int(float64(chunkSize) / (avgWordLength + 1))
	wordsOverlap := int(float64(overlap) / (avgWordLength + 1))

	stride := wordsPerChunk - wordsOverlap
	if stride < 1 {
		return nil, fmt.Errorf("%w: %d words per chunk, %d words overlap (chunk size %d, overlap %d, average word length %.2f)",
			ErrInvalidStride, wordsPerChunk, wordsOverlap, chunkSize, overlap, avgWordLength)
	}

	chunks := []*model.Chunk{}
	for start := 0; start < len(words); start += stride {
		end := min(start+wordsPerChunk, len(words))

		chunks = append(chunks, &model.Chunk{
			ChunkID:   len(chunks),
			Text:      strings.Join(words[start:end], " "),
			StartWord: start,
			EndWord:   end,
		})

		if end >= len(words) {
			break
		}
	}

	return chunks, nil
}

// averageWordLength returns the mean rune count of the first words
func averageWordLength(words []string) float64 {
	sample := words[:min(wordSampleSize, len(words))]

	total := 0
	for _, w := range sample {
		total += utf8.RuneCountInString(w)
	}
	return float64(total) / float64(len(sample))
}
