package embedder

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// chatModelFragments identify generation models that are not embedding
// models. A query embedded with one of these will not match the index.
var chatModelFragments = []string{
	"gpt-4",
	"gpt-3.5",
	"gpt-35",
	"o1",
	"o3",
	"gemini-1",
	"gemini-2",
	"llama3",
	"llama-3",
	"mistral",
	"mixtral",
	"gemma",
	"phi3",
	"claude",
	"deepseek",
	"qwen",
}

// looksLikeChatModel reports whether model resembles a chat/completion model
// rather than a dedicated embedding model.
func looksLikeChatModel(model string) bool {
	lower := strings.ToLower(model)
	if strings.Contains(lower, "embed") {
		return false
	}
	for _, fragment := range chatModelFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// ValidateForSearch is a pre-flight check run before the vector index is
// wired. It returns an error when the embedding backend cannot possibly work
// (unknown backend, missing credentials) and logs a warning when
// EMBEDDING_MODEL looks like a chat model or differs from the model the
// index is built with.
func ValidateForSearch(log *slog.Logger) error {
	backend := Backend()
	switch backend {
	case BackendGemini:
		if firstEnv("EMBEDDING_API_KEY", "GOOGLE_API_KEY") == "" {
			return fmt.Errorf("embedder: semantic search needs an API key, set GOOGLE_API_KEY or EMBEDDING_API_KEY")
		}
	case BackendOpenAI:
		if firstEnv("EMBEDDING_API_KEY", "OPENAI_API_KEY") == "" {
			return fmt.Errorf("embedder: semantic search needs an API key, set OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
	case BackendOllama:
	default:
		return fmt.Errorf("embedder: unknown backend %q, valid values: gemini, openai, ollama", backend)
	}

	model := os.Getenv("EMBEDDING_MODEL")
	if model == "" {
		return nil
	}
	if looksLikeChatModel(model) {
		log.Warn("embedder: EMBEDDING_MODEL looks like a chat model, not an embedding model",
			slog.String("model", model),
			slog.String("hint", "use a dedicated embedding model e.g. text-embedding-004"),
		)
	} else if backend == BackendGemini && model != defaultGeminiModel {
		log.Warn("embedder: EMBEDDING_MODEL differs from the model the candidate index is built with",
			slog.String("model", model),
			slog.String("index_model", defaultGeminiModel),
		)
	}
	return nil
}
