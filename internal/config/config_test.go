package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// unsetEnv clears keys for the duration of the test and restores them afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_NoFile(t *testing.T) {
	t.Parallel()

	path, err := Load("/nonexistent/path/config.yaml", discardLog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	cfgPath := writeConfig(t, `
embedding:
  provider: gemini
  model: text-embedding-004
  dimensions: 768
qdrant:
  host: qdrant.internal
  port: 6334
  collection: candidates
  tls: true
database:
  path: /var/lib/hrai/candidates.db
server:
  port: 9090
  rate_limit: 2.5
  rate_burst: 5
logging:
  level: debug
  format: text
search:
  vector_timeout: 2s
  store_timeout: 1500ms
  max_page_size: 50
  max_window: 2000
  semantic_order: score
  directory_order: retrieval
`)

	checks := map[string]string{
		"EMBEDDING_PROVIDER":     "gemini",
		"EMBEDDING_MODEL":        "text-embedding-004",
		"EMBEDDING_DIMENSIONS":   "768",
		"QDRANT_HOST":            "qdrant.internal",
		"QDRANT_PORT":            "6334",
		"QDRANT_COLLECTION":      "candidates",
		"QDRANT_TLS":             "true",
		"HRAI_DB":                "/var/lib/hrai/candidates.db",
		"HRAI_PORT":              "9090",
		"HRAI_RATE_LIMIT":        "2.5",
		"HRAI_RATE_BURST":        "5",
		"LOG_LEVEL":              "debug",
		"LOG_FORMAT":             "text",
		"SEARCH_VECTOR_TIMEOUT":  "2s",
		"SEARCH_STORE_TIMEOUT":   "1.5s",
		"SEARCH_MAX_PAGE_SIZE":   "50",
		"SEARCH_MAX_WINDOW":      "2000",
		"SEARCH_SEMANTIC_ORDER":  "score",
		"SEARCH_DIRECTORY_ORDER": "retrieval",
	}
	keys := make([]string, 0, len(checks)+1)
	for k := range checks {
		keys = append(keys, k)
	}
	unsetEnv(t, append(keys, "HRAI_API_KEY")...)

	loaded, err := Load(cfgPath, discardLog)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfgPath {
		t.Errorf("loaded path: got %q, want %q", loaded, cfgPath)
	}

	for k, want := range checks {
		if got := os.Getenv(k); got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
	if _, ok := os.LookupEnv("HRAI_API_KEY"); ok {
		t.Error("HRAI_API_KEY set although absent from YAML")
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	cfgPath := writeConfig(t, `
embedding:
  provider: ollama
search:
  max_page_size: 10
`)

	t.Setenv("EMBEDDING_PROVIDER", "gemini")
	t.Setenv("SEARCH_MAX_PAGE_SIZE", "100")

	if _, err := Load(cfgPath, discardLog); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := os.Getenv("EMBEDDING_PROVIDER"); got != "gemini" {
		t.Errorf("EMBEDDING_PROVIDER: expected env override %q, got %q", "gemini", got)
	}
	if got := os.Getenv("SEARCH_MAX_PAGE_SIZE"); got != "100" {
		t.Errorf("SEARCH_MAX_PAGE_SIZE: expected env override %q, got %q", "100", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, "{{invalid yaml")
	if _, err := Load(cfgPath, discardLog); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestResolveConfigPath_EnvVar(t *testing.T) {
	cfgPath := writeConfig(t, "logging:\n  level: info\n")
	t.Setenv("HRAI_CONFIG", cfgPath)

	if got := resolveConfigPath(""); got != cfgPath {
		t.Errorf("resolveConfigPath() = %q, want %q", got, cfgPath)
	}
	if got := resolveConfigPath("/does/not/exist.yaml"); got != "" {
		t.Errorf("missing explicit path resolved to %q, want empty", got)
	}
}

func TestScalarStr(t *testing.T) {
	t.Parallel()

	if got := floatStr(0); got != "" {
		t.Errorf("floatStr(0) = %q", got)
	}
	if got := floatStr(10); got != "10" {
		t.Errorf("floatStr(10) = %q", got)
	}
	if got := floatStr(0.25); got != "0.25" {
		t.Errorf("floatStr(0.25) = %q", got)
	}
	if got := durationStr(0); got != "" {
		t.Errorf("durationStr(0) = %q", got)
	}
	if got := durationStr(5 * time.Second); got != "5s" {
		t.Errorf("durationStr(5s) = %q", got)
	}
	if got := intStr(0); got != "" {
		t.Errorf("intStr(0) = %q", got)
	}
	if got := boolStr(true); got != "true" {
		t.Errorf("boolStr(true) = %q", got)
	}
}
