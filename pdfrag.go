package pdfrag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/siherrmann/pdfrag/core/generator"
	"github.com/siherrmann/pdfrag/core/generator/ollama"
	"github.com/siherrmann/pdfrag/core/generator/openai"
	"github.com/siherrmann/pdfrag/core/pipeline"
	"github.com/siherrmann/pdfrag/core/retrieval"
	"github.com/siherrmann/pdfrag/database"
	"github.com/siherrmann/pdfrag/helper"
	"github.com/siherrmann/pdfrag/model"
	loadSql "github.com/siherrmann/pdfrag/sql"
)

// Messages of ProcessDocument
const (
	NoTextMessage  = "No text could be extracted from PDF"
	SuccessMessage = "Success"
)

// PdfRag provides a unified interface to ingestion, the vector index and the answering engine
type PdfRag struct {
	DB       *helper.Database
	Records  *database.RecordsDBHandler
	Pipeline *pipeline.Pipeline
	Engine   *retrieval.Engine
	// Settings
	config model.Config
	// Logging
	log *slog.Logger
}

// NewPdfRag connects to the database, prepares the records table and wires
// loader, embedder, generation backend and engine from config.
// The embedding model is loaded lazily on first use.
func NewPdfRag(dbConfig *helper.DatabaseConfiguration, config model.Config) (*PdfRag, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Logger
	logger := helper.NewLogger(os.Stdout, slog.LevelInfo)

	// Initialize database
	db, err := helper.NewDatabase("pdfrag", dbConfig, logger)
	if err != nil {
		return nil, helper.NewError("open database", err)
	}

	err = loadSql.Init(db.Instance)
	if err != nil {
		db.Close()
		return nil, helper.NewError("initialize database extensions", err)
	}

	// force=false to not reload if functions already exist
	records, err := database.NewRecordsDBHandler(db, config.EmbeddingDim, false)
	if err != nil {
		db.Close()
		return nil, helper.NewError("create records handler", err)
	}

	loader, err := pipeline.NewLoader(config.ExtractMethod, config.ChunkSize, config.ChunkOverlap)
	if err != nil {
		db.Close()
		return nil, helper.NewError("create loader", err)
	}
	embedder := pipeline.DefaultEmbedder(config.EmbeddingModel, config.EmbeddingOnnxPath, config.BatchSize)

	engine := retrieval.NewEngine(records, embedder.EmbedFunc(), NewGenerator(config), logger)

	return &PdfRag{
		DB:       db,
		Records:  records,
		Pipeline: pipeline.NewPipeline(loader, embedder),
		Engine:   engine,
		config:   config,
		log:      logger,
	}, nil
}

// NewGenerator creates the generation backend selected by config
func NewGenerator(config model.Config) generator.Generator {
	opts := []generator.Option{
		generator.WithURL(config.GeneratorURL),
		generator.WithModel(config.GeneratorModel),
		generator.WithApiKey(config.GeneratorAPIKey),
		generator.WithTimeout(config.GeneratorTimeout),
		generator.WithTemperature(config.Temperature),
		generator.WithTopP(config.TopP),
	}

	if config.Generator == model.GeneratorOpenAI {
		return openai.NewGenerator(opts...)
	}
	return ollama.NewGenerator(opts...)
}

// Config returns the settings the instance was created with
func (p *PdfRag) Config() model.Config {
	return p.config
}

// Close releases the embedding model and the database connection
func (p *PdfRag) Close() error {
	if p.Pipeline != nil && p.Pipeline.Embedder != nil {
		if err := p.Pipeline.Embedder.Close(); err != nil {
			p.log.Warn("Closing embedder failed", slog.String("error", err.Error()))
		}
	}
	if p.DB != nil && p.DB.Instance != nil {
		return p.DB.Instance.Close()
	}
	return nil
}

// SetEmbedder replaces the embedding generator for ingestion and questions.
// Its vectors must have the dimension of the records table.
// It is meant for setup and must not be called concurrently with other methods.
func (p *PdfRag) SetEmbedder(embedder *pipeline.Embedder) {
	if p.Pipeline.Embedder != nil {
		if err := p.Pipeline.Embedder.Close(); err != nil {
			p.log.Warn("Closing embedder failed", slog.String("error", err.Error()))
		}
	}
	p.Pipeline.Embedder = embedder
	p.Engine = retrieval.NewEngine(p.Records, embedder.EmbedFunc(), p.Engine.Generator(), p.log)
}

// SetGenerator replaces the generation backend, also while questions are answered
func (p *PdfRag) SetGenerator(gen generator.Generator) {
	p.Engine.SetGenerator(gen)
}

// ProcessDocument extracts, chunks and embeds a PDF and stores its chunks
// under source. Re-processing a source replaces all of its previous chunks.
// Failures are reported in the result, never returned.
func (p *PdfRag) ProcessDocument(ctx context.Context, source string, data []byte) *model.ProcessResult {
	if source == "" {
		return &model.ProcessResult{Message: "source must not be empty"}
	}

	result, err := p.Pipeline.Process(data, source)
	if err != nil {
		p.log.Warn("Processing document failed", slog.String("source", source), slog.String("error", err.Error()))
		return &model.ProcessResult{Message: err.Error()}
	}

	if len(result.Chunks) == 0 {
		p.log.Warn("No text extracted", slog.String("source", source), slog.Int("pages", result.Pages))
		return &model.ProcessResult{Message: NoTextMessage}
	}

	now := time.Now()
	records := make([]*model.IndexedRecord, len(result.Chunks))
	for i, chunk := range result.Chunks {
		record, err := model.NewIndexedRecord(chunk, now)
		if err != nil {
			return &model.ProcessResult{Message: err.Error()}
		}
		records[i] = record
	}

	if err := p.Records.ReplaceSourceRecords(ctx, source, records); err != nil {
		p.log.Error("Storing chunks failed", slog.String("source", source), slog.String("error", err.Error()))
		return &model.ProcessResult{Message: err.Error()}
	}

	p.log.Info("Processed document", slog.String("source", source), slog.Int("chunks", len(records)), slog.Int("pages", result.Pages))

	return &model.ProcessResult{
		OK:         true,
		Message:    SuccessMessage,
		ChunkCount: len(records),
		PageCount:  result.Pages,
	}
}

// AnswerQuestion answers question from the topK most relevant chunks,
// restricted to sourceFilter if it is not empty
func (p *PdfRag) AnswerQuestion(ctx context.Context, question string, topK int, sourceFilter string) *model.Answer {
	return p.Engine.AnswerQuestion(ctx, question, topK, sourceFilter)
}

// SummarizeDocument summarizes sourceFilter, or the whole index, in about maxLength words
func (p *PdfRag) SummarizeDocument(ctx context.Context, sourceFilter string, maxLength int) string {
	return p.Engine.SummarizeDocument(ctx, sourceFilter, maxLength)
}

// DeleteDocument removes all chunks of source and returns how many were removed.
// Deleting an unknown source is not an error.
func (p *PdfRag) DeleteDocument(ctx context.Context, source string) (int, error) {
	deleted, err := p.Records.DeleteRecordsBySource(ctx, source)
	if err != nil {
		return 0, helper.NewError(fmt.Sprintf("delete document %s", source), err)
	}

	p.log.Info("Deleted document", slog.String("source", source), slog.Int("chunks", deleted))

	return deleted, nil
}

// ListSources returns the sources present in the index
func (p *PdfRag) ListSources(ctx context.Context) ([]string, error) {
	return p.Engine.ListDocuments(ctx)
}

// Stats returns the number of chunks and sources in the index
func (p *PdfRag) Stats(ctx context.Context) (*model.IndexStats, error) {
	return p.Records.SelectStats(ctx)
}

// Clear removes every chunk from the index
func (p *PdfRag) Clear(ctx context.Context) error {
	if err := p.Records.ClearRecords(ctx); err != nil {
		return err
	}
	p.log.Info("Cleared index")
	return nil
}

// ChangeIndexType rebuilds the vector index as hnsw or ivfflat
func (p *PdfRag) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return p.Records.ChangeIndexType(ctx, indexType, params)
}

// ProbeBackend lists the models of the generation backend and reports whether
// the configured model is among them. A missing model is logged as a warning.
func (p *PdfRag) ProbeBackend(ctx context.Context) (bool, error) {
	models, err := p.Engine.Generator().Models(ctx)
	if err != nil {
		p.log.Warn("Generation backend not reachable", slog.String("error", retrieval.DescribeFailure(err)))
		return false, helper.NewError("list models", err)
	}

	if !generator.HasModel(models, p.config.GeneratorModel) {
		p.log.Warn("Model not available on generation backend", slog.String("model", p.config.GeneratorModel), slog.Any("available", models))
		return false, nil
	}

	p.log.Info("Generation backend ready", slog.String("model", p.config.GeneratorModel))

	return true, nil
}
