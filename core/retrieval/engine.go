package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/siherrmann/pdfrag/core/generator"
	"github.com/siherrmann/pdfrag/core/pipeline"
	"github.com/siherrmann/pdfrag/helper"
	"github.com/siherrmann/pdfrag/model"
)

const (
	// DefaultTopK is used when a question asks for no positive number of chunks
	DefaultTopK = 5
	// summaryScanLimit chunks are fetched for a summary, summaryChunkCount of them are used
	summaryScanLimit  = 10
	summaryChunkCount = 5

	queryCacheTTL     = 10 * time.Minute
	queryCacheCleanup = 20 * time.Minute
)

// RecordStore is the read side of the vector index used by the engine
type RecordStore interface {
	SearchRecords(ctx context.Context, embedding []float32, topK int, filter model.Metadata) ([]*model.QueryResult, error)
	SelectRecords(ctx context.Context, filter model.Metadata, limit int) ([]*model.IndexedRecord, error)
	SelectSources(ctx context.Context) ([]string, error)
}

// Engine answers questions and summarizes documents from the vector index
type Engine struct {
	records   RecordStore
	embed     pipeline.EmbedFunc
	queries   *cache.Cache
	logger    *slog.Logger

	mu        sync.RWMutex
	generator generator.Generator
}

// NewEngine creates a new answering engine.
// Question embeddings are cached for a few minutes.
func NewEngine(records RecordStore, embed pipeline.EmbedFunc, gen generator.Generator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		records:   records,
		embed:     embed,
		generator: gen,
		queries:   cache.New(queryCacheTTL, queryCacheCleanup),
		logger:    logger,
	}
}

// SetGenerator replaces the generation backend.
// It is safe to call while questions are being answered.
func (e *Engine) SetGenerator(gen generator.Generator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generator = gen
}

// Generator returns the generation backend
func (e *Engine) Generator() generator.Generator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generator
}

// EmbedQuestion returns the embedding of question, from cache if possible
func (e *Engine) EmbedQuestion(question string) ([]float32, error) {
	if cached, ok := e.queries.Get(question); ok {
		return cached.([]float32), nil
	}

	embedding, err := e.embed(question)
	if err != nil {
		return nil, helper.NewError("embed question", err)
	}

	e.queries.SetDefault(question, embedding)
	return embedding, nil
}

// Retrieve returns the topK chunks closest to question, restricted to
// sourceFilter if it is not empty.
func (e *Engine) Retrieve(ctx context.Context, question string, topK int, sourceFilter string) ([]*model.QueryResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	embedding, err := e.EmbedQuestion(question)
	if err != nil {
		return nil, err
	}

	results, err := e.records.SearchRecords(ctx, embedding, topK, sourceMetadata(sourceFilter))
	if err != nil {
		return nil, helper.NewError("search records", err)
	}

	return results, nil
}

// AnswerQuestion answers question from the topK most relevant chunks.
// It never fails: an empty retrieval yields NoInformationMessage and a
// failing search or generation backend yields a degraded answer carrying
// the reason.
func (e *Engine) AnswerQuestion(ctx context.Context, question string, topK int, sourceFilter string) *model.Answer {
	results, err := e.Retrieve(ctx, question, topK, sourceFilter)
	if err != nil {
		e.logger.Error("Retrieval failed", slog.String("error", err.Error()))
		return model.NewDegradedAnswer(searchFailedMessage(err))
	}

	if len(results) == 0 {
		e.logger.Info("No relevant chunks found", slog.String("source_filter", sourceFilter))
		return model.NewEmptyAnswer(NoInformationMessage)
	}

	texts := make([]string, len(results))
	sources := make([]string, len(results))
	scores := make([]float64, len(results))
	for i, result := range results {
		texts[i] = result.Text
		sources[i] = result.Source()
		scores[i] = result.Relevance()
	}

	prompt := BuildAnswerPrompt(question, BuildContext(texts))

	answer, err := e.Generator().Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("Generation failed", slog.String("error", err.Error()))
		return model.NewDegradedAnswer(generationFailedMessage(err))
	}

	return &model.Answer{
		Answer:          answer,
		Sources:         sources,
		ContextUsed:     texts,
		RelevanceScores: scores,
		Outcome:         model.OutcomeAnswered,
	}
}

// SummarizeDocument summarizes the first chunks of sourceFilter, or of the
// whole index if it is empty, in about maxLength words. Failures are
// returned as a message instead of an error.
func (e *Engine) SummarizeDocument(ctx context.Context, sourceFilter string, maxLength int) string {
	records, err := e.records.SelectRecords(ctx, sourceMetadata(sourceFilter), summaryScanLimit)
	if err != nil {
		e.logger.Error("Selecting records for summary failed", slog.String("error", err.Error()))
		return summaryFailedMessage(err)
	}

	if len(records) == 0 {
		return NothingToSummarizeMessage
	}

	texts := make([]string, 0, summaryChunkCount)
	for _, record := range records[:min(summaryChunkCount, len(records))] {
		texts = append(texts, record.Text)
	}

	summary, err := e.Generator().Generate(ctx, BuildSummaryPrompt(strings.Join(texts, "\n\n"), maxLength))
	if err != nil {
		e.logger.Warn("Summary generation failed", slog.String("error", err.Error()))
		return summaryFailedMessage(err)
	}

	return summary
}

// ListDocuments returns the sources present in the index
func (e *Engine) ListDocuments(ctx context.Context) ([]string, error) {
	sources, err := e.records.SelectSources(ctx)
	if err != nil {
		return nil, helper.NewError("select sources", err)
	}
	return sources, nil
}

func sourceMetadata(source string) model.Metadata {
	if source == "" {
		return nil
	}
	return model.Metadata{model.MetadataSource: source}
}

