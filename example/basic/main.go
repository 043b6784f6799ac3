package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/siherrmann/pdfrag"
	"github.com/siherrmann/pdfrag/helper"
	"github.com/siherrmann/pdfrag/model"
)

var samplePages = [][]string{
	{
		"Retrieval augmented generation combines search with a language model.",
		"Documents are split into chunks and every chunk is embedded as a vector.",
		"Questions are embedded the same way and compared by cosine similarity.",
	},
	{
		"PostgreSQL with the pgvector extension stores the chunk vectors.",
		"An HNSW index keeps nearest neighbour search fast for large collections.",
		"The closest chunks become the context the model answers from.",
	},
}

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	rag, err := pdfrag.NewPdfRag(dbConfig, model.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to create pdfrag: %v", err)
	}
	defer rag.Close()

	ctx := context.Background()

	// Answers need a running Ollama with the model pulled
	if available, err := rag.ProbeBackend(ctx); err != nil || !available {
		fmt.Println("Generation backend not ready, answers will explain the failure")
	}

	// Ingest the PDF given as argument or a generated sample
	source := "sample.pdf"
	data := helper.BuildTestPDF(samplePages...)
	if len(os.Args) > 1 {
		data, err = os.ReadFile(os.Args[1])
		if err != nil {
			log.Fatalf("Failed to read %s: %v", os.Args[1], err)
		}
		source = filepath.Base(os.Args[1])
	}

	fmt.Printf("Ingesting %s...\n", source)
	result := rag.ProcessDocument(ctx, source, data)
	if !result.OK {
		log.Fatalf("Failed to process document: %s", result.Message)
	}
	fmt.Printf("Inserted %d chunks from %d pages\n", result.ChunkCount, result.PageCount)

	question := "How are the chunk vectors stored?"
	fmt.Printf("\nQuestion: %s\n", question)

	answer := rag.AnswerQuestion(ctx, question, 3, source)
	fmt.Printf("Answer (%s): %s\n", answer.Outcome, answer.Answer)
	for i, text := range answer.ContextUsed {
		fmt.Printf("\n--- Chunk %d (%s, relevance %.4f) ---\n%s\n", i+1, answer.Sources[i], answer.RelevanceScores[i], text)
	}

	fmt.Printf("\nSummary: %s\n", rag.SummarizeDocument(ctx, source, 50))

	fmt.Println("\nBasic example completed successfully!")
}
