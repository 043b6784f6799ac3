package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/siherrmann/pdfrag"
	"github.com/siherrmann/pdfrag/database"
	"github.com/siherrmann/pdfrag/helper"
	"github.com/siherrmann/pdfrag/model"
)

var (
	title   = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
)

type cli struct {
	Config string `help:"YAML configuration file, environment variables override it." type:"existingfile"`

	// Overrides of the file and environment configuration, zero values keep it
	ExtractMethod string        `help:"Text extraction method (fast or layout)"`
	ChunkSize     int           `help:"Chunk size in characters"`
	ChunkOverlap  int           `help:"Chunk overlap in characters" default:"-1"`
	Generator     string        `help:"Generation backend (ollama or openai)"`
	URL           string        `help:"Generation backend URL" name:"url"`
	Model         string        `help:"Generation model"`
	Timeout       time.Duration `help:"Generation request timeout"`

	Ingest    ingestCmd    `cmd:"" help:"Ingest PDF files into the index."`
	Ask       askCmd       `cmd:"" help:"Answer a question from the indexed documents."`
	Summarize summarizeCmd `cmd:"" help:"Summarize an indexed document."`
	Delete    deleteCmd    `cmd:"" help:"Remove a document from the index."`
	List      listCmd      `cmd:"" help:"List indexed documents."`
	Stats     statsCmd     `cmd:"" help:"Show index statistics."`
	Clear     clearCmd     `cmd:"" help:"Remove every document from the index."`
	Index     indexCmd     `cmd:"" help:"Rebuild the vector index with another type."`
	Probe     probeCmd     `cmd:"" help:"Check that the generation backend serves the configured model."`
}

func (c *cli) config() (model.Config, error) {
	config, err := model.NewConfig(c.Config)
	if err != nil {
		return config, err
	}

	if c.ExtractMethod != "" {
		config.ExtractMethod = c.ExtractMethod
	}
	if c.ChunkSize > 0 {
		config.ChunkSize = c.ChunkSize
	}
	if c.ChunkOverlap >= 0 {
		config.ChunkOverlap = c.ChunkOverlap
	}
	if c.Generator != "" {
		config.Generator = c.Generator
	}
	if c.URL != "" {
		config.GeneratorURL = c.URL
	}
	if c.Model != "" {
		config.GeneratorModel = c.Model
	}
	if c.Timeout > 0 {
		config.GeneratorTimeout = c.Timeout
	}

	return config, config.Validate()
}

type ingestCmd struct {
	Paths  []string `arg:"" type:"existingfile" help:"PDF files to ingest."`
	Source string   `help:"Source name for a single file, defaults to the file name."`
}

func (c *ingestCmd) Run(ctx context.Context, rag *pdfrag.PdfRag) error {
	if c.Source != "" && len(c.Paths) > 1 {
		return fmt.Errorf("--source can only be used with a single file")
	}

	failed := 0
	for _, path := range c.Paths {
		data, err := os.ReadFile(path) // #nosec G304
		if err != nil {
			return helper.NewError("read file", err)
		}

		source := c.Source
		if source == "" {
			source = filepath.Base(path)
		}

		result := rag.ProcessDocument(ctx, source, data)
		if !result.OK {
			failed++
			failure.Printf("✗ %s: %s\n", source, result.Message)
			continue
		}
		success.Printf("✓ %s: %d chunks from %d pages\n", source, result.ChunkCount, result.PageCount)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(c.Paths))
	}
	return nil
}

type askCmd struct {
	Question string `arg:"" help:"Question to answer."`
	TopK     int    `help:"Number of chunks used as context." default:"5"`
	Source   string `help:"Only use chunks of this document."`
}

func (c *askCmd) Run(ctx context.Context, rag *pdfrag.PdfRag) error {
	answer := rag.AnswerQuestion(ctx, c.Question, c.TopK, c.Source)

	title.Println("Answer")
	fmt.Println(answer.Answer)

	if answer.Outcome == model.OutcomeDegraded {
		return fmt.Errorf("question could not be answered")
	}

	if len(answer.Sources) > 0 {
		fmt.Println()
		title.Println("Sources")
		for i, source := range answer.Sources {
			fmt.Printf("%d. %s (relevance %.3f)\n", i+1, source, answer.RelevanceScores[i])
		}
	}
	return nil
}

type summarizeCmd struct {
	Source    string `arg:"" optional:"" help:"Document to summarize, all documents if empty."`
	MaxLength int    `help:"Approximate summary length in words." default:"300"`
}

func (c *summarizeCmd) Run(ctx context.Context, rag *pdfrag.PdfRag) error {
	title.Println("Summary")
	fmt.Println(rag.SummarizeDocument(ctx, c.Source, c.MaxLength))
	return nil
}

type deleteCmd struct {
	Source string `arg:"" help:"Document to remove."`
}

func (c *deleteCmd) Run(ctx context.Context, rag *pdfrag.PdfRag) error {
	deleted, err := rag.DeleteDocument(ctx, c.Source)
	if err != nil {
		return err
	}
	success.Printf("✓ Removed %d chunks of %s\n", deleted, c.Source)
	return nil
}

type listCmd struct{}

func (c *listCmd) Run(ctx context.Context, rag *pdfrag.PdfRag) error {
	sources, err := rag.ListSources(ctx)
	if err != nil {
		return err
	}
	for _, source := range sources {
		fmt.Println(source)
	}
	return nil
}

type statsCmd struct{}

func (c *statsCmd) Run(ctx context.Context, rag *pdfrag.PdfRag) error {
	stats, err := rag.Stats(ctx)
	if err != nil {
		return err
	}
	title.Println("Index")
	fmt.Printf("Chunks:    %d\n", stats.TotalChunks)
	fmt.Printf("Documents: %d\n", stats.TotalSources)
	if len(stats.Sources) > 0 {
		fmt.Printf("Sources:   %s\n", strings.Join(stats.Sources, ", "))
	}
	return nil
}

type clearCmd struct {
	Yes bool `help:"Confirm removing every document." short:"y"`
}

func (c *clearCmd) Run(ctx context.Context, rag *pdfrag.PdfRag) error {
	if !c.Yes {
		return fmt.Errorf("refusing to clear the index without --yes")
	}
	if err := rag.Clear(ctx); err != nil {
		return err
	}
	success.Println("✓ Index cleared")
	return nil
}

type indexCmd struct {
	Type           string `arg:"" enum:"hnsw,ivfflat" help:"Index type (hnsw or ivfflat)."`
	M              int    `help:"HNSW max connections per layer." default:"16"`
	EfConstruction int    `help:"HNSW candidate list size during build." default:"64"`
	Lists          int    `help:"IVFFlat number of lists." default:"100"`
}

func (c *indexCmd) Run(ctx context.Context, rag *pdfrag.PdfRag) error {
	params := map[string]interface{}{"lists": c.Lists}
	if c.Type == database.IndexTypeHNSW {
		params = map[string]interface{}{"m": c.M, "ef_construction": c.EfConstruction}
	}

	if err := rag.ChangeIndexType(ctx, c.Type, params); err != nil {
		return err
	}
	success.Printf("✓ Vector index is now %s\n", c.Type)
	return nil
}

type probeCmd struct{}

func (c *probeCmd) Run(ctx context.Context, rag *pdfrag.PdfRag) error {
	available, err := rag.ProbeBackend(ctx)
	if err != nil {
		return err
	}

	modelName := rag.Config().GeneratorModel
	if !available {
		return fmt.Errorf("model %s is not available, pull it first", modelName)
	}
	success.Printf("✓ Model %s is available\n", modelName)
	return nil
}

func main() {
	// Parse inputs
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("pdfrag"),
		kong.Description("Ask questions about PDF documents."),
		kong.UsageOnError(),
	)

	config, err := c.config()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		log.Fatalf("invalid database configuration: %v", err)
	}

	rag, err := pdfrag.NewPdfRag(dbConfig, config)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer rag.Close()

	ctx := context.Background()
	kctx.BindTo(ctx, (*context.Context)(nil))

	err = kctx.Run(rag)
	if err != nil {
		failure.Fprintf(os.Stderr, "error: %v\n", err)
		rag.Close()
		os.Exit(1)
	}
}
