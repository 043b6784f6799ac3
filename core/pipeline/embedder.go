package pipeline

import (
	"fmt"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/siherrmann/pdfrag/helper"
	"github.com/siherrmann/pdfrag/model"
)

// DefaultBatchSize is used when no positive batch size is given
const DefaultBatchSize = 32

// Embedder maps texts to dense vectors in batches.
// The underlying model is created on first use and reused afterwards.
type Embedder struct {
	batchSize int

	mu      sync.Mutex
	once    sync.Once
	load    func() (BatchEmbedFunc, func() error, error)
	embed   BatchEmbedFunc
	destroy func() error
	loadErr error
}

// NewEmbedder wraps an existing batch embedding function
func NewEmbedder(embed BatchEmbedFunc, batchSize int) *Embedder {
	return newLazyEmbedder(func() (BatchEmbedFunc, func() error, error) {
		return embed, nil, nil
	}, batchSize)
}

// prepareModel downloads a model, replaced in tests
var prepareModel = helper.PrepareModel

// DefaultEmbedder creates an embedder using a sentence transformer model through hugot.
// onnxPath selects the ONNX file inside the model repository, which is required
// when the repository ships more than one.
// The model is downloaded and loaded on the first call that needs an embedding.
func DefaultEmbedder(modelName string, onnxPath string, batchSize int) *Embedder {
	return newLazyEmbedder(func() (BatchEmbedFunc, func() error, error) {
		return loadSentenceTransformer(modelName, onnxPath)
	}, batchSize)
}

func newLazyEmbedder(load func() (BatchEmbedFunc, func() error, error), batchSize int) *Embedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Embedder{
		batchSize: batchSize,
		load:      load,
	}
}

func loadSentenceTransformer(modelName string, onnxPath string) (BatchEmbedFunc, func() error, error) {
	// Prepare model (download if needed)
	modelPath, err := prepareModel(modelName, onnxPath)
	if err != nil {
		return nil, nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	embed := func(texts []string) ([][]float32, error) {
		result, err := sentencePipeline.RunPipeline(texts)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		return result.Embeddings, nil
	}

	return embed, session.Destroy, nil
}

func (e *Embedder) init() error {
	e.once.Do(func() {
		e.embed, e.destroy, e.loadErr = e.load()
	})
	return e.loadErr
}

// EncodeText generates the embedding of a single text
func (e *Embedder) EncodeText(text string) ([]float32, error) {
	embeddings, err := e.EncodeBatch([]string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EncodeBatch generates embeddings for texts in batches of the configured size.
// The result is index-aligned with texts whatever the batch size.
func (e *Embedder) EncodeBatch(texts []string) ([][]float32, error) {
	if err := e.init(); err != nil {
		return nil, helper.NewError("load embedding model", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))

		batch, err := e.embed(texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: got %d embeddings for %d texts", len(batch), end-start)
		}
		embeddings = append(embeddings, batch...)
	}

	return embeddings, nil
}

// EncodeChunks attaches an embedding to every chunk in place.
// Order and all other fields are left untouched.
func (e *Embedder) EncodeChunks(chunks []*model.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := e.EncodeBatch(texts)
	if err != nil {
		return err
	}

	for i, chunk := range chunks {
		chunk.Embedding = embeddings[i]
	}
	return nil
}

// EmbedFunc exposes the embedder as a single text embedding function
func (e *Embedder) EmbedFunc() EmbedFunc {
	return e.EncodeText
}

// Close releases the model session if one was created
func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroy == nil {
		return nil
	}
	err := e.destroy()
	e.destroy = nil
	return err
}
