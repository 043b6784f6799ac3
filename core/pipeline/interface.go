package pipeline

import (
	"github.com/siherrmann/pdfrag/helper"
	"github.com/siherrmann/pdfrag/model"
)

// ExtractFunc turns raw document bytes into text and reports the page count
type ExtractFunc func(data []byte) (text string, pages int, err error)

// ChunkFunc splits cleaned text into chunks owned by source
type ChunkFunc func(text string, source string) ([]*model.Chunk, error)

// EmbedFunc generates the embedding for a single text
type EmbedFunc func(text string) ([]float32, error)

// BatchEmbedFunc generates embeddings for several texts.
// The returned vectors must be index-aligned with the input.
type BatchEmbedFunc func(texts []string) ([][]float32, error)

// Pipeline combines the document loader and the embedding generator
type Pipeline struct {
	Loader   *Loader
	Embedder *Embedder
}

// NewPipeline creates a new processing pipeline
func NewPipeline(loader *Loader, embedder *Embedder) *Pipeline {
	return &Pipeline{
		Loader:   loader,
		Embedder: embedder,
	}
}

// ProcessingResult contains the embedded chunks of one document
type ProcessingResult struct {
	Chunks []*model.Chunk
	Pages  int
}

// Process loads a document and attaches embeddings to all of its chunks.
// A document without extractable text yields a result with zero chunks.
func (p *Pipeline) Process(data []byte, source string) (*ProcessingResult, error) {
	chunks, pages, err := p.Loader.LoadAndProcess(data, source)
	if err != nil {
		return nil, err
	}

	result := &ProcessingResult{Chunks: chunks, Pages: pages}
	if len(chunks) == 0 {
		return result, nil
	}

	if err := p.Embedder.EncodeChunks(chunks); err != nil {
		return nil, helper.NewError("encode chunks", err)
	}

	return result, nil
}
