package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID(t *testing.T) {
	t.Run("Id joins source and chunk id", func(t *testing.T) {
		assert.Equal(t, "report.pdf_0", RecordID("report.pdf", 0))
		assert.Equal(t, "report.pdf_12", RecordID("report.pdf", 12))
	})

	t.Run("Id is deterministic", func(t *testing.T) {
		assert.Equal(t, RecordID("a.pdf", 3), RecordID("a.pdf", 3))
		assert.NotEqual(t, RecordID("a.pdf", 3), RecordID("b.pdf", 3))
	})
}

func TestNewIndexedRecord(t *testing.T) {
	ingestedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Embedded chunk becomes a record", func(t *testing.T) {
		chunk := &Chunk{ChunkID: 2, Text: "some text", StartWord: 10, EndWord: 12, Source: "a.pdf", Embedding: []float32{0.1, 0.2}}

		record, err := NewIndexedRecord(chunk, ingestedAt)
		require.NoError(t, err)
		assert.Equal(t, "a.pdf_2", record.ID)
		assert.Equal(t, "some text", record.Text)
		assert.Equal(t, "a.pdf", record.Metadata.Source())
		id, ok := record.Metadata.ChunkID()
		assert.True(t, ok)
		assert.Equal(t, 2, id)
		assert.Equal(t, "2025-03-01T12:00:00Z", record.Metadata[MetadataIngestedAt])
	})

	t.Run("Chunk without embedding is rejected", func(t *testing.T) {
		_, err := NewIndexedRecord(&Chunk{ChunkID: 0, Source: "a.pdf"}, ingestedAt)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no embedding")
	})

	t.Run("Chunk without source is rejected", func(t *testing.T) {
		_, err := NewIndexedRecord(&Chunk{ChunkID: 0, Embedding: []float32{1}}, ingestedAt)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no source")
	})

	t.Run("Nil chunk is rejected", func(t *testing.T) {
		_, err := NewIndexedRecord(nil, ingestedAt)
		assert.Error(t, err)
	})
}

func TestQueryResultRelevance(t *testing.T) {
	t.Run("Relevance is one minus distance", func(t *testing.T) {
		r := &QueryResult{Distance: 0.25, Metadata: Metadata{MetadataSource: "a.pdf"}}
		assert.InDelta(t, 0.75, r.Relevance(), 1e-9)
		assert.Equal(t, "a.pdf", r.Source())
	})
}

func TestAnswerConstructors(t *testing.T) {
	t.Run("Empty answer has empty sources and context", func(t *testing.T) {
		a := NewEmptyAnswer("nothing")
		assert.Equal(t, OutcomeEmpty, a.Outcome)
		assert.NotNil(t, a.Sources)
		assert.Empty(t, a.Sources)
		assert.Empty(t, a.ContextUsed)
	})

	t.Run("Degraded answer carries the message", func(t *testing.T) {
		a := NewDegradedAnswer("backend down")
		assert.Equal(t, OutcomeDegraded, a.Outcome)
		assert.Equal(t, "backend down", a.Answer)
		assert.Empty(t, a.Sources)
	})
}
