package model

// DistanceCosine is the only metric the index is created with.
const DistanceCosine = "cosine"

// QueryResult is one entry of a similarity search, ordered by ascending distance.
type QueryResult struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Distance float64  `json:"distance"`
	Metadata Metadata `json:"metadata"`
}

// Source returns the source document of the result.
func (r *QueryResult) Source() string {
	return r.Metadata.Source()
}

// Relevance converts the cosine distance into a relevance score.
// Only meaningful for cosine distance.
func (r *QueryResult) Relevance() float64 {
	return 1 - r.Distance
}

// IndexStats is a read-only aggregate view of the index.
type IndexStats struct {
	TotalChunks  int      `json:"total_chunks"`
	TotalSources int      `json:"total_sources"`
	Sources      []string `json:"sources"`
}
