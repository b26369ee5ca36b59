// Package config provides YAML-based configuration for hrai.
// Configuration is loaded with a layered precedence: defaults → YAML file → env vars.
// Environment variables always win, so deployments driven purely by env keep working.
//
// File search order:
//  1. --config CLI flag (explicit path)
//  2. HRAI_CONFIG environment variable
//  3. ~/.hrai/config.yaml
//  4. ./hrai.yaml
//
// If no file is found the system runs entirely from env vars.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration structure.
type Config struct {
	// Embedding configures the query embedding provider.
	Embedding EmbeddingConfig `yaml:"embedding"`

	Ollama OllamaConfig `yaml:"ollama"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Gemini GeminiConfig `yaml:"gemini"`

	// Qdrant configures the vector search service connection.
	Qdrant QdrantConfig `yaml:"qdrant"`

	// Database configures the relational candidate store.
	Database DatabaseConfig `yaml:"database"`

	// Server configures the HTTP server.
	Server ServerConfig `yaml:"server"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Search configures the retrieval and ranking pipeline.
	Search SearchConfig `yaml:"search"`
}

// EmbeddingConfig holds query embedding settings.
type EmbeddingConfig struct {
	// Provider selects the backend: gemini, openai, ollama.
	Provider string `yaml:"provider"`
	// Model is the embedding model name. Must match the model the index was built with.
	Model string `yaml:"model"`
	// Dimensions overrides the embedding vector size.
	Dimensions int `yaml:"dimensions"`
	// APIKey is the embedding API key. Prefer env var EMBEDDING_API_KEY.
	APIKey string `yaml:"api_key"`
	// Endpoint is the embedding API endpoint.
	Endpoint string `yaml:"endpoint"`
}

// OllamaConfig holds Ollama settings.
type OllamaConfig struct {
	Host string `yaml:"host"`
}

// OpenAIConfig holds OpenAI settings.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key. Prefer env var OPENAI_API_KEY.
	APIKey string `yaml:"api_key"`
}

// GeminiConfig holds Google Gemini settings.
type GeminiConfig struct {
	// APIKey is the Google API key. Prefer env var GOOGLE_API_KEY.
	APIKey string `yaml:"api_key"`
}

// QdrantConfig holds Qdrant vector store settings.
type QdrantConfig struct {
	// Host is the Qdrant server hostname. Semantic search is disabled when empty.
	Host string `yaml:"host"`
	// Port is the Qdrant gRPC port.
	Port int `yaml:"port"`
	// Collection holds the candidate embeddings.
	Collection string `yaml:"collection"`
	// APIKey is the Qdrant API key. Prefer env var QDRANT_API_KEY.
	APIKey string `yaml:"api_key"`
	// TLS enables TLS for the Qdrant connection.
	TLS bool `yaml:"tls"`
}

// DatabaseConfig holds relational store settings.
type DatabaseConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// APIKey is the Bearer token for API authentication. Prefer env var HRAI_API_KEY.
	APIKey string `yaml:"api_key"`
	// RateLimit is the sustained search requests per second allowed per client IP.
	RateLimit float64 `yaml:"rate_limit"`
	// RateBurst is the per-IP burst size.
	RateBurst int `yaml:"rate_burst"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is the log output format: json, text.
	Format string `yaml:"format"`
}

// SearchConfig holds search pipeline settings.
type SearchConfig struct {
	// VectorTimeout bounds a single vector search call.
	VectorTimeout time.Duration `yaml:"vector_timeout"`
	// StoreTimeout bounds a single relational store call.
	StoreTimeout time.Duration `yaml:"store_timeout"`
	// MaxPageSize is the largest accepted page_size.
	MaxPageSize int `yaml:"max_page_size"`
	// MaxWindow caps page*page_size, bounding deep-page cost.
	MaxWindow int `yaml:"max_window"`
	// SemanticOrder is the result order for semantic mode: retrieval or score.
	SemanticOrder string `yaml:"semantic_order"`
	// DirectoryOrder is the result order for directory mode: retrieval or score.
	DirectoryOrder string `yaml:"directory_order"`
}

// envMapping maps YAML config fields to their corresponding env var names.
// Only non-empty YAML values are applied; env vars always take precedence.
var envMapping = []struct {
	envKey string
	value  func(*Config) string
}{
	{"EMBEDDING_PROVIDER", func(c *Config) string { return c.Embedding.Provider }},
	{"EMBEDDING_MODEL", func(c *Config) string { return c.Embedding.Model }},
	{"EMBEDDING_DIMENSIONS", func(c *Config) string { return intStr(c.Embedding.Dimensions) }},
	{"EMBEDDING_API_KEY", func(c *Config) string { return c.Embedding.APIKey }},
	{"EMBEDDING_ENDPOINT", func(c *Config) string { return c.Embedding.Endpoint }},
	{"OLLAMA_HOST", func(c *Config) string { return c.Ollama.Host }},
	{"OPENAI_API_KEY", func(c *Config) string { return c.OpenAI.APIKey }},
	{"GOOGLE_API_KEY", func(c *Config) string { return c.Gemini.APIKey }},
	{"QDRANT_HOST", func(c *Config) string { return c.Qdrant.Host }},
	{"QDRANT_PORT", func(c *Config) string { return intStr(c.Qdrant.Port) }},
	{"QDRANT_COLLECTION", func(c *Config) string { return c.Qdrant.Collection }},
	{"QDRANT_API_KEY", func(c *Config) string { return c.Qdrant.APIKey }},
	{"QDRANT_TLS", func(c *Config) string { return boolStr(c.Qdrant.TLS) }},
	{"HRAI_DB", func(c *Config) string { return c.Database.Path }},
	{"HRAI_HOST", func(c *Config) string { return c.Server.Host }},
	{"HRAI_PORT", func(c *Config) string { return intStr(c.Server.Port) }},
	{"HRAI_API_KEY", func(c *Config) string { return c.Server.APIKey }},
	{"HRAI_RATE_LIMIT", func(c *Config) string { return floatStr(c.Server.RateLimit) }},
	{"HRAI_RATE_BURST", func(c *Config) string { return intStr(c.Server.RateBurst) }},
	{"LOG_LEVEL", func(c *Config) string { return c.Logging.Level }},
	{"LOG_FORMAT", func(c *Config) string { return c.Logging.Format }},
	{"SEARCH_VECTOR_TIMEOUT", func(c *Config) string { return durationStr(c.Search.VectorTimeout) }},
	{"SEARCH_STORE_TIMEOUT", func(c *Config) string { return durationStr(c.Search.StoreTimeout) }},
	{"SEARCH_MAX_PAGE_SIZE", func(c *Config) string { return intStr(c.Search.MaxPageSize) }},
	{"SEARCH_MAX_WINDOW", func(c *Config) string { return intStr(c.Search.MaxWindow) }},
	{"SEARCH_SEMANTIC_ORDER", func(c *Config) string { return c.Search.SemanticOrder }},
	{"SEARCH_DIRECTORY_ORDER", func(c *Config) string { return c.Search.DirectoryOrder }},
}

// Load reads a YAML config file and applies non-empty values as environment
// variables. Existing env vars are never overwritten (env always wins).
// Returns the path that was loaded, or empty string if no file was found.
func Load(explicitPath string, log *slog.Logger) (string, error) {
	path := resolveConfigPath(explicitPath)
	if path == "" {
		log.Debug("config: no YAML config file found, using env vars only")
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	applied := 0
	for _, m := range envMapping {
		yamlVal := m.value(&cfg)
		if yamlVal == "" {
			continue
		}
		if os.Getenv(m.envKey) != "" {
			continue
		}
		if err := os.Setenv(m.envKey, yamlVal); err != nil {
			return "", fmt.Errorf("config: set %s: %w", m.envKey, err)
		}
		applied++
	}

	log.Info("config: loaded YAML config",
		slog.String("path", path),
		slog.Int("keys_applied", applied),
	)

	return path, nil
}

// resolveConfigPath returns the first config file path that exists.
// An explicit path that does not exist resolves to nothing rather than
// falling through to the defaults.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		if fileExists(explicit) {
			return explicit
		}
		return ""
	}

	if envPath := os.Getenv("HRAI_CONFIG"); envPath != "" && fileExists(envPath) {
		return envPath
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".hrai", "config.yaml")
		if fileExists(p) {
			return p
		}
	}

	if fileExists("hrai.yaml") {
		return "hrai.yaml"
	}

	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// intStr converts an int to string, returning "" for zero values.
func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

// floatStr converts a float64 to its shortest string form, returning "" for zero.
func floatStr(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// durationStr renders a duration in time.ParseDuration form, returning "" for zero.
func durationStr(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

// boolStr converts a bool to string, returning "" for false.
func boolStr(v bool) string {
	if !v {
		return ""
	}
	return "true"
}
