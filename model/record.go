package model

import (
	"fmt"
	"time"

	"github.com/siherrmann/pdfrag/helper"
)

// Metadata keys written for every indexed record.
const (
	MetadataSource      = "source"
	MetadataChunkID     = "chunk_id"
	MetadataIngestedAt  = "ingested_at"
	MetadataIngestionID = "ingestion_id"
)

// IndexedRecord is the persisted form of a chunk inside the vector index.
type IndexedRecord struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	ChunkID    int       `json:"chunk_id"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Metadata   Metadata  `json:"metadata"`
	IngestedAt time.Time `json:"ingested_at"`
}

// RecordID derives the globally unique record id of a chunk.
// Re-ingesting a document produces the same ids.
func RecordID(source string, chunkID int) string {
	return fmt.Sprintf("%s_%d", source, chunkID)
}

// NewIndexedRecord converts an embedded chunk into its persisted form.
func NewIndexedRecord(chunk *Chunk, ingestedAt time.Time) (*IndexedRecord, error) {
	if chunk == nil {
		return nil, helper.NewError("new indexed record", fmt.Errorf("chunk is nil"))
	}
	if chunk.Source == "" {
		return nil, helper.NewError("new indexed record", fmt.Errorf("chunk %d has no source", chunk.ChunkID))
	}
	if len(chunk.Embedding) == 0 {
		return nil, helper.NewError("new indexed record", fmt.Errorf("chunk %d of %s has no embedding", chunk.ChunkID, chunk.Source))
	}

	ingestedAt = ingestedAt.UTC()

	return &IndexedRecord{
		ID:        RecordID(chunk.Source, chunk.ChunkID),
		Source:    chunk.Source,
		ChunkID:   chunk.ChunkID,
		Text:      chunk.Text,
		Embedding: chunk.Embedding,
		Metadata: Metadata{
			MetadataSource:     chunk.Source,
			MetadataChunkID:    chunk.ChunkID,
			MetadataIngestedAt: ingestedAt.Format(time.RFC3339Nano),
		},
		IngestedAt: ingestedAt,
	}, nil
}
