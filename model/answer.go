package model

// Outcome tags how a question was terminated.
type Outcome string

const (
	OutcomeAnswered Outcome = "answered"
	OutcomeEmpty    Outcome = "empty"
	OutcomeDegraded Outcome = "degraded"
)

// Answer is the result of answering a question against the index.
// Sources, ContextUsed and RelevanceScores are parallel to the retrieved chunks.
type Answer struct {
	Answer          string    `json:"answer"`
	Sources         []string  `json:"sources"`
	ContextUsed     []string  `json:"context_used"`
	RelevanceScores []float64 `json:"relevance_scores,omitempty"`
	Outcome         Outcome   `json:"outcome"`
}

// NewEmptyAnswer is returned when retrieval found nothing.
func NewEmptyAnswer(message string) *Answer {
	return &Answer{
		Answer:      message,
		Sources:     []string{},
		ContextUsed: []string{},
		Outcome:     OutcomeEmpty,
	}
}

// NewDegradedAnswer carries a failure message instead of an answer.
func NewDegradedAnswer(message string) *Answer {
	return &Answer{
		Answer:      message,
		Sources:     []string{},
		ContextUsed: []string{},
		Outcome:     OutcomeDegraded,
	}
}

// ProcessResult reports the outcome of ingesting one document.
type ProcessResult struct {
	OK         bool   `json:"ok"`
	Message    string `json:"message"`
	ChunkCount int    `json:"chunk_count"`
	PageCount  int    `json:"page_count"`
}
