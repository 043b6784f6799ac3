package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrZeroVector is returned when cosine similarity is undefined because a vector has zero norm.
var ErrZeroVector = errors.New("cosine similarity undefined for zero vector")

// Match is a candidate index with its similarity to the query
type Match struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Similarity returns the cosine similarity of two vectors of equal length.
// It returns ErrZeroVector if either vector is all zeros.
func Similarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d and %d", len(a), len(b))
	}

	normA := norm(a)
	normB := norm(b)
	if normA == 0 || normB == 0 {
		return 0, ErrZeroVector
	}

	return dot(a, b) / (normA * normB), nil
}

// FindMostSimilar ranks candidates by cosine similarity to query and returns
// the topK best, highest score first. Equal scores keep the lower index first.
// A zero query is an error, a zero candidate scores 0.
func FindMostSimilar(query []float32, candidates [][]float32, topK int) ([]Match, error) {
	if topK < 0 {
		return nil, fmt.Errorf("top k must not be negative, got %d", topK)
	}

	queryNorm := norm(query)
	if queryNorm == 0 {
		return nil, ErrZeroVector
	}

	matches := make([]Match, len(candidates))
	for i, candidate := range candidates {
		if len(candidate) != len(query) {
			return nil, fmt.Errorf("dimension mismatch at candidate %d: %d and %d", i, len(candidate), len(query))
		}

		score := 0.0
		if candidateNorm := norm(candidate); candidateNorm != 0 {
			score = dot(query, candidate) / (queryNorm * candidateNorm)
		}
		matches[i] = Match{Index: i, Score: score}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches[:min(topK, len(matches))], nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
