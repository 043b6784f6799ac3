package model

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/siherrmann/pdfrag/helper"
	"gopkg.in/yaml.v3"
)

// Extraction methods understood by the document loader.
const (
	ExtractMethodFast   = "fast"
	ExtractMethodLayout = "layout"
)

// Generation backends.
const (
	GeneratorOllama = "ollama"
	GeneratorOpenAI = "openai"
)

// Config holds the settings of the answering pipeline.
type Config struct {
	// Embeddings
	EmbeddingModel    string `json:"embedding_model" yaml:"embedding_model"`
	EmbeddingOnnxPath string `json:"embedding_onnx_path" yaml:"embedding_onnx_path"`
	EmbeddingDim      int    `json:"embedding_dim" yaml:"embedding_dim" validate:"gt=0"`
	BatchSize         int    `json:"batch_size" yaml:"batch_size" validate:"gt=0"`

	// Loader
	ChunkSize     int    `json:"chunk_size" yaml:"chunk_size" validate:"gt=0"`
	ChunkOverlap  int    `json:"chunk_overlap" yaml:"chunk_overlap" validate:"gte=0,ltfield=ChunkSize"`
	ExtractMethod string `json:"extract_method" yaml:"extract_method" validate:"oneof=fast layout"`

	// Generation backend
	Generator        string        `json:"generator" yaml:"generator" validate:"oneof=ollama openai"`
	GeneratorURL     string        `json:"generator_url" yaml:"generator_url"`
	GeneratorModel   string        `json:"generator_model" yaml:"generator_model"`
	GeneratorAPIKey  string        `json:"-" yaml:"generator_api_key"`
	GeneratorTimeout time.Duration `json:"generator_timeout" yaml:"generator_timeout" validate:"gt=0"`
	Temperature      float64       `json:"temperature" yaml:"temperature"`
	TopP             float64       `json:"top_p" yaml:"top_p"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		EmbeddingModel:    "sentence-transformers/all-MiniLM-L6-v2",
		EmbeddingOnnxPath: "onnx/model.onnx",
		EmbeddingDim:      384,
		BatchSize:         32,
		ChunkSize:         1000,
		ChunkOverlap:      200,
		ExtractMethod:     ExtractMethodLayout,
		Generator:         GeneratorOllama,
		GeneratorURL:      "http://localhost:11434",
		GeneratorModel:    "llama3.2",
		GeneratorTimeout:  120 * time.Second,
		Temperature:       0.7,
		TopP:              0.9,
	}
}

// LoadConfigFile reads a YAML file over DefaultConfig. Keys missing in the
// file keep their default.
func LoadConfigFile(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return config, helper.NewError("read config file", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, helper.NewError("parse config file", err)
	}

	return config, nil
}

// NewConfig loads the YAML file at path, if path is not empty, and applies
// environment overrides on top.
func NewConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path != "" {
		var err error
		config, err = LoadConfigFile(path)
		if err != nil {
			return config, err
		}
	}
	return applyEnv(config)
}

// NewConfigFromEnv starts from DefaultConfig and applies environment overrides.
// A .env file in the working directory is loaded first if present.
func NewConfigFromEnv() (Config, error) {
	return applyEnv(DefaultConfig())
}

func applyEnv(config Config) (Config, error) {
	_ = godotenv.Load()

	setString(&config.EmbeddingModel, "RAG_EMBEDDING_MODEL")
	setString(&config.EmbeddingOnnxPath, "RAG_EMBEDDING_ONNX_PATH")
	setString(&config.ExtractMethod, "RAG_EXTRACT_METHOD")
	setString(&config.Generator, "RAG_GENERATOR")
	setString(&config.GeneratorURL, "OLLAMA_URL")
	setString(&config.GeneratorModel, "OLLAMA_MODEL")
	setString(&config.GeneratorAPIKey, "RAG_GENERATOR_API_KEY")

	ints := map[string]*int{
		"RAG_EMBEDDING_DIM": &config.EmbeddingDim,
		"RAG_BATCH_SIZE":    &config.BatchSize,
		"RAG_CHUNK_SIZE":    &config.ChunkSize,
		"RAG_CHUNK_OVERLAP": &config.ChunkOverlap,
	}
	for key, target := range ints {
		if v := os.Getenv(key); v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				return config, helper.NewError("parse "+key, err)
			}
			*target = i
		}
	}

	floats := map[string]*float64{
		"RAG_TEMPERATURE": &config.Temperature,
		"RAG_TOP_P":       &config.TopP,
	}
	for key, target := range floats {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return config, helper.NewError("parse "+key, err)
			}
			*target = f
		}
	}

	if v := os.Getenv("RAG_GENERATOR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return config, helper.NewError("parse RAG_GENERATOR_TIMEOUT", err)
		}
		config.GeneratorTimeout = d
	}

	return config, config.Validate()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var configFieldNames = map[string]string{
	"EmbeddingDim":     "embedding dimension",
	"BatchSize":        "batch size",
	"ChunkSize":        "chunk size",
	"ChunkOverlap":     "chunk overlap",
	"ExtractMethod":    "extract method",
	"Generator":        "generator",
	"GeneratorTimeout": "generator timeout",
}

// Validate rejects configurations that can never work.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return helper.NewError("validate config", err)
	}

	fe := fieldErrors[0]
	name := configFieldNames[fe.StructField()]
	switch fe.Tag() {
	case "oneof":
		err = fmt.Errorf("unknown %s %q, expected one of %s", name, fe.Value(), fe.Param())
	case "gt":
		err = fmt.Errorf("%s must be positive, got %v", name, fe.Value())
	case "gte":
		err = fmt.Errorf("%s must not be negative, got %v", name, fe.Value())
	case "ltfield":
		err = fmt.Errorf("%s must be smaller than the chunk size %d, got %v", name, c.ChunkSize, fe.Value())
	default:
		err = fmt.Errorf("%s is invalid: %s", name, fe.Error())
	}
	return helper.NewError("validate config", err)
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}
