package database

import (
	"context"
	"testing"
	"time"

	"github.com/siherrmann/pdfrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeIndexType(t *testing.T) {
	recordsDbHandler := initRecords(t)

	ctx := context.Background()

	t.Run("Change index to HNSW with default params", func(t *testing.T) {
		params := map[string]interface{}{}
		err := recordsDbHandler.ChangeIndexType(ctx, IndexTypeHNSW, params)
		assert.NoError(t, err, "Expected ChangeIndexType to hnsw to not return an error")
	})

	t.Run("Change index to HNSW with custom params", func(t *testing.T) {
		params := map[string]interface{}{
			"m":               32,
			"ef_construction": 128,
		}
		err := recordsDbHandler.ChangeIndexType(ctx, IndexTypeHNSW, params)
		assert.NoError(t, err, "Expected ChangeIndexType to hnsw with custom params to not return an error")
	})

	t.Run("Change index to IVFFlat with default params", func(t *testing.T) {
		params := map[string]interface{}{}
		err := recordsDbHandler.ChangeIndexType(ctx, IndexTypeIVFFlat, params)
		assert.NoError(t, err, "Expected ChangeIndexType to ivfflat to not return an error")
	})

	t.Run("Change index to IVFFlat with custom params", func(t *testing.T) {
		params := map[string]interface{}{
			"lists": 200,
		}
		err := recordsDbHandler.ChangeIndexType(ctx, IndexTypeIVFFlat, params)
		assert.NoError(t, err, "Expected ChangeIndexType to ivfflat with custom params to not return an error")
	})

	t.Run("Change index with unsupported index type", func(t *testing.T) {
		params := map[string]interface{}{}
		err := recordsDbHandler.ChangeIndexType(ctx, "invalid", params)
		assert.Error(t, err, "Expected error when using unsupported index type")
		assert.Contains(t, err.Error(), "unsupported index type", "Expected error message to mention unsupported index type")
	})

	t.Run("Change index with expired context keeps the old index", func(t *testing.T) {
		shortCtx, cancel := context.WithTimeout(ctx, 1*time.Nanosecond)
		defer cancel()
		time.Sleep(10 * time.Millisecond)

		err := recordsDbHandler.ChangeIndexType(shortCtx, IndexTypeHNSW, map[string]interface{}{})
		assert.Error(t, err)

		var exists bool
		err = recordsDbHandler.db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_indexes WHERE indexname = 'idx_records_embedding');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "Vector index should still exist")
	})

	t.Run("Change index back to HNSW and search", func(t *testing.T) {
		params := map[string]interface{}{
			"m":               16,
			"ef_construction": 64,
		}
		err := recordsDbHandler.ChangeIndexType(ctx, IndexTypeHNSW, params)
		require.NoError(t, err)

		record, err := model.NewIndexedRecord(&model.Chunk{ChunkID: 0, Text: "indexed", Source: "i.pdf", Embedding: []float32{0, 0, 1}}, time.Now())
		require.NoError(t, err)
		require.NoError(t, recordsDbHandler.AddRecords(ctx, []*model.IndexedRecord{record}))

		results, err := recordsDbHandler.SearchRecords(ctx, []float32{0, 0, 1}, 1, nil)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "i.pdf_0", results[0].ID)
	})
}
