// Package audit logs a sanitised record of every CLI command invocation:
// the command, the config file it resolved, and the operational env state.
//
// Secrets are logged as presence/absence only, never their values.
package audit

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// auditEntry is one env var included in the audit record.
type auditEntry struct {
	key    string
	secret bool
}

// auditKeys is the ordered list of env vars included in every audit entry.
var auditKeys = []auditEntry{
	{"EMBEDDING_PROVIDER", false},
	{"EMBEDDING_MODEL", false},
	{"EMBEDDING_DIMENSIONS", false},
	{"EMBEDDING_ENDPOINT", false},
	{"EMBEDDING_API_KEY", true},
	{"OLLAMA_HOST", false},
	{"OPENAI_API_KEY", true},
	{"GOOGLE_API_KEY", true},
	{"QDRANT_HOST", false},
	{"QDRANT_PORT", false},
	{"QDRANT_COLLECTION", false},
	{"QDRANT_TLS", false},
	{"QDRANT_API_KEY", true},
	{"HRAI_DB", false},
	{"HRAI_HOST", false},
	{"HRAI_PORT", false},
	{"HRAI_API_KEY", true},
	{"HRAI_RATE_LIMIT", false},
	{"HRAI_RATE_BURST", false},
	{"SEARCH_VECTOR_TIMEOUT", false},
	{"SEARCH_STORE_TIMEOUT", false},
	{"SEARCH_MAX_PAGE_SIZE", false},
	{"SEARCH_MAX_WINDOW", false},
	{"SEARCH_SEMANTIC_ORDER", false},
	{"SEARCH_DIRECTORY_ORDER", false},
	{"LOG_LEVEL", false},
	{"LOG_FORMAT", false},
}

// secretEnvKeys is the set of audited keys whose values must never be logged.
var secretEnvKeys = func() map[string]bool {
	m := make(map[string]bool)
	for _, e := range auditKeys {
		if e.secret {
			m[e.key] = true
		}
	}
	return m
}()

// LogCommandStart emits one structured audit entry when a CLI command begins.
// The env state is grouped under "env".
func LogCommandStart(ctx context.Context, log *slog.Logger, command, configPath string) {
	env := make([]any, 0, len(auditKeys))
	for _, e := range auditKeys {
		env = append(env, slog.String(e.key, SanitiseKey(e.key, os.Getenv(e.key))))
	}

	log.LogAttrs(ctx, slog.LevelInfo, "audit: command start",
		slog.String("command", command),
		slog.String("config_file", sanitiseConfigPath(configPath)),
		slog.Group("env", env...),
	)
}

// SanitiseKey returns "set" or "unset" for known secret keys, or the value
// (or "unset") for everything else. Safe to use in log messages.
func SanitiseKey(key, value string) string {
	if secretEnvKeys[key] {
		return presence(value)
	}
	if value == "" {
		return "unset"
	}
	return value
}

func presence(v string) string {
	if v != "" {
		return "set"
	}
	return "unset"
}

// sanitiseConfigPath returns the config path with the home directory
// abbreviated to "~", or "none" if no file was loaded.
func sanitiseConfigPath(p string) string {
	if p == "" {
		return "none"
	}
	home, err := os.UserHomeDir()
	if err == nil && home != "" && strings.HasPrefix(p, home) {
		return "~" + p[len(home):]
	}
	return p
}
