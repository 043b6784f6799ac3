package pipeline

import (
	"fmt"
	"os"

	"github.com/siherrmann/pdfrag/helper"
	"github.com/siherrmann/pdfrag/model"
)

// Loader turns PDF documents into cleaned, chunked text
type Loader struct {
	Extractor ExtractFunc
	Chunker   ChunkFunc
}

// NewLoader creates a loader for the given extraction method and chunk sizing.
// chunkSize and overlap are in characters.
func NewLoader(method string, chunkSize int, overlap int) (*Loader, error) {
	if chunkSize <= 0 {
		return nil, helper.NewError("new loader", fmt.Errorf("chunk size must be positive, got %d", chunkSize))
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, helper.NewError("new loader", fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidStride, overlap, chunkSize))
	}

	extractor, err := NewExtractor(method)
	if err != nil {
		return nil, helper.NewError("new loader", err)
	}

	return &Loader{
		Extractor: extractor,
		Chunker:   WordChunker(chunkSize, overlap),
	}, nil
}

// LoadAndProcess extracts, cleans and chunks a document and stamps every chunk
// with source. It returns the chunks and the page count of the document.
// A document without text yields zero chunks and no error.
func (l *Loader) LoadAndProcess(data []byte, source string) ([]*model.Chunk, int, error) {
	text, pages, err := l.Extractor(data)
	if err != nil {
		return nil, 0, helper.NewError("extract text", err)
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return []*model.Chunk{}, pages, nil
	}

	chunks, err := l.Chunker(cleaned, source)
	if err != nil {
		return nil, pages, helper.NewError("chunk text", err)
	}

	return chunks, pages, nil
}

// LoadFile reads a PDF from disk and processes it with the path as source
func (l *Loader) LoadFile(path string) ([]*model.Chunk, int, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, 0, helper.NewError("read file", err)
	}
	return l.LoadAndProcess(data, path)
}
