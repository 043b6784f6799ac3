package model

// Chunk is a contiguous slice of a document's cleaned text.
// StartWord and EndWord are offsets into the whitespace-tokenized word sequence,
// EndWord is exclusive.
type Chunk struct {
	ChunkID   int       `json:"chunk_id"`
	Text      string    `json:"text"`
	StartWord int       `json:"start_word"`
	EndWord   int       `json:"end_word"`
	Source    string    `json:"source"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// WordCount returns the number of words covered by the chunk.
func (c *Chunk) WordCount() int {
	return c.EndWord - c.StartWord
}
