package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/pdfrag/helper"
	"github.com/siherrmann/pdfrag/model"
	loadSql "github.com/siherrmann/pdfrag/sql"
)

// RecordsDBHandlerFunctions defines the interface for Records database operations.
type RecordsDBHandlerFunctions interface {
	AddRecords(ctx context.Context, records []*model.IndexedRecord) error
	ReplaceSourceRecords(ctx context.Context, source string, records []*model.IndexedRecord) error
	SearchRecords(ctx context.Context, embedding []float32, topK int, filter model.Metadata) ([]*model.QueryResult, error)
	SelectRecords(ctx context.Context, filter model.Metadata, limit int) ([]*model.IndexedRecord, error)
	DeleteRecordsBySource(ctx context.Context, source string) (int, error)
	SelectSources(ctx context.Context) ([]string, error)
	SelectStats(ctx context.Context) (*model.IndexStats, error)
	ClearRecords(ctx context.Context) error
	ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error
}

// RecordsDBHandler handles the vector index stored in the 'records' table
type RecordsDBHandler struct {
	db           *helper.Database
	embeddingDim int
}

// NewRecordsDBHandler creates a new records database handler.
// It initializes the database connection and loads record-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewRecordsDBHandler(db *helper.Database, embeddingDim int, force bool) (*RecordsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	recordsDbHandler := &RecordsDBHandler{
		db:           db,
		embeddingDim: embeddingDim,
	}

	err := loadSql.LoadRecordsSql(recordsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load records sql", err)
	}

	err = recordsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RecordsDBHandler", "embedding_dim", embeddingDim)

	return recordsDbHandler, nil
}

// CreateTable creates the 'records' table in the database.
// If the table already exists, it does not create it again.
// It also creates the source, metadata and vector indexes.
func (h *RecordsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_records($1);`, h.embeddingDim)
	if err != nil {
		return helper.NewError("init records", err)
	}

	h.db.Logger.Info("Checked/created table records")

	return nil
}

// EmbeddingDim returns the vector dimension of the index
func (h *RecordsDBHandler) EmbeddingDim() int {
	return h.embeddingDim
}

// Metric returns the distance metric of the index
func (h *RecordsDBHandler) Metric() string {
	return model.DistanceCosine
}

// AddRecords upserts records in a single transaction.
// A record with an existing id replaces the stored one, so re-ingesting a
// document is idempotent. All records of one call share an ingestion id.
func (h *RecordsDBHandler) AddRecords(ctx context.Context, records []*model.IndexedRecord) error {
	if len(records) == 0 {
		return nil
	}
	return h.writeRecords(ctx, "", records)
}

// ReplaceSourceRecords removes every record of source and stores records in
// their place within one transaction. Searches see either the old or the new
// chunks of source, never a mix. Every record must belong to source.
func (h *RecordsDBHandler) ReplaceSourceRecords(ctx context.Context, source string, records []*model.IndexedRecord) error {
	if source == "" {
		return helper.NewError("validate source", fmt.Errorf("source must not be empty"))
	}
	for _, record := range records {
		if record.Source != source {
			return helper.NewError("validate record", fmt.Errorf("record %s belongs to source %s, not %s", record.ID, record.Source, source))
		}
	}
	return h.writeRecords(ctx, source, records)
}

// writeRecords upserts records in one transaction, after deleting the
// records of replaceSource if it is not empty.
func (h *RecordsDBHandler) writeRecords(ctx context.Context, replaceSource string, records []*model.IndexedRecord) error {
	for _, record := range records {
		if len(record.Embedding) != h.embeddingDim {
			return helper.NewError("validate record", fmt.Errorf("record %s has embedding dimension %d, index expects %d", record.ID, len(record.Embedding), h.embeddingDim))
		}
	}

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	replaced := 0
	if replaceSource != "" {
		err = tx.QueryRowContext(ctx, `SELECT delete_records_by_source($1)`, replaceSource).Scan(&replaced)
		if err != nil {
			return helper.NewError(fmt.Sprintf("delete records of %s", replaceSource), err)
		}
	}

	ingestionID := uuid.New().String()
	now := time.Now().UTC()

	for _, record := range records {
		metadata := model.Metadata{}
		for k, v := range record.Metadata {
			metadata[k] = v
		}
		metadata[model.MetadataSource] = record.Source
		metadata[model.MetadataChunkID] = record.ChunkID
		metadata[model.MetadataIngestionID] = ingestionID

		ingestedAt := record.IngestedAt
		if ingestedAt.IsZero() {
			ingestedAt = now
		}
		if _, ok := metadata[model.MetadataIngestedAt]; !ok {
			metadata[model.MetadataIngestedAt] = ingestedAt.UTC().Format(time.RFC3339Nano)
		}

		_, err := tx.ExecContext(
			ctx,
			`SELECT upsert_record($1, $2, $3, $4, $5, $6, $7)`,
			record.ID,
			record.Source,
			record.ChunkID,
			record.Text,
			pgvector.NewVector(record.Embedding),
			metadata,
			ingestedAt,
		)
		if err != nil {
			return helper.NewError(fmt.Sprintf("upsert record %s", record.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return helper.NewError("commit", err)
	}

	if replaceSource != "" {
		h.db.Logger.Info("Replaced records", "source", replaceSource, "removed", replaced, "count", len(records), "ingestion_id", ingestionID)
	} else {
		h.db.Logger.Info("Added records", "count", len(records), "ingestion_id", ingestionID)
	}

	return nil
}

// SearchRecords returns up to topK records nearest to embedding by cosine distance,
// ascending. Only records whose metadata contains every key/value pair of filter
// are considered. No match yields an empty result.
func (h *RecordsDBHandler) SearchRecords(ctx context.Context, embedding []float32, topK int, filter model.Metadata) ([]*model.QueryResult, error) {
	if topK <= 0 {
		return []*model.QueryResult{}, nil
	}
	if len(embedding) != h.embeddingDim {
		return nil, helper.NewError("validate query", fmt.Errorf("query has embedding dimension %d, index expects %d", len(embedding), h.embeddingDim))
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_records_by_similarity($1, $2, $3)`,
		pgvector.NewVector(embedding),
		topK,
		filter,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	results := []*model.QueryResult{}
	for rows.Next() {
		result := &model.QueryResult{}
		err := rows.Scan(
			&result.ID,
			&result.Text,
			&result.Metadata,
			&result.Distance,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows iteration", err)
	}

	return results, nil
}

// SelectRecords returns up to limit records matching filter in document order
// (source, then chunk id) without a similarity query.
func (h *RecordsDBHandler) SelectRecords(ctx context.Context, filter model.Metadata, limit int) ([]*model.IndexedRecord, error) {
	if limit <= 0 {
		return []*model.IndexedRecord{}, nil
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_records($1, $2)`,
		filter,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	records := []*model.IndexedRecord{}
	for rows.Next() {
		record := &model.IndexedRecord{}
		err := rows.Scan(
			&record.ID,
			&record.Source,
			&record.ChunkID,
			&record.Text,
			&record.Metadata,
			&record.IngestedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows iteration", err)
	}

	return records, nil
}

// DeleteRecordsBySource removes every record of source and returns how many were removed.
// Deleting an unknown source is a no-op.
func (h *RecordsDBHandler) DeleteRecordsBySource(ctx context.Context, source string) (int, error) {
	var deleted int
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT delete_records_by_source($1)`,
		source,
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("exec", err)
	}

	h.db.Logger.Info("Deleted records", "source", source, "count", deleted)

	return deleted, nil
}

// SelectSources returns the distinct sources of all records, sorted
func (h *RecordsDBHandler) SelectSources(ctx context.Context) ([]string, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_sources()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	sources := []string{}
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, helper.NewError("scan", err)
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows iteration", err)
	}

	return sources, nil
}

// SelectStats returns an aggregate view of the index
func (h *RecordsDBHandler) SelectStats(ctx context.Context) (*model.IndexStats, error) {
	stats := &model.IndexStats{}
	err := h.db.Instance.QueryRowContext(ctx, `SELECT * FROM count_records()`).Scan(
		&stats.TotalChunks,
		&stats.TotalSources,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	stats.Sources, err = h.SelectSources(ctx)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// ClearRecords removes all records. The table, its indexes and the
// distance metric are kept.
func (h *RecordsDBHandler) ClearRecords(ctx context.Context) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT clear_records()`)
	if err != nil {
		return helper.NewError("exec", err)
	}

	h.db.Logger.Info("Cleared records")

	return nil
}
