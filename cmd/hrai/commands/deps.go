package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/hrai-go/internal/embedder"
	"github.com/54b3r/hrai-go/internal/search"
	"github.com/54b3r/hrai-go/internal/server"
	"github.com/54b3r/hrai-go/internal/store"
	"github.com/54b3r/hrai-go/internal/vectordb"
)

// defaultCollection is the Qdrant collection holding candidate embeddings.
const defaultCollection = "candidates"

// deps bundles the long-lived collaborators shared by the serve and one-shot
// commands.
type deps struct {
	engine *search.Engine
	store  *store.SQLiteStore
	// qdrant is nil when semantic search is disabled.
	qdrant *vectordb.QdrantStore
}

// Close releases the vector service connection and the database.
func (d *deps) Close() {
	if d.qdrant != nil {
		_ = d.qdrant.Close()
	}
	if d.store != nil {
		_ = d.store.Close()
	}
}

// pingers returns the readiness probes for every wired dependency.
func (d *deps) pingers() []server.Pinger {
	p := []server.Pinger{server.NewStorePinger(d.store)}
	if d.qdrant != nil {
		p = append(p, server.NewQdrantPinger(d.qdrant.Client()))
	}
	return p
}

// buildDeps opens the candidate store, wires semantic search when
// QDRANT_HOST is set, and constructs the engine. reg receives the search
// metrics; nil leaves them unregistered.
func buildDeps(ctx context.Context, log *slog.Logger, reg prometheus.Registerer) (*deps, error) {
	db, err := openStore(log)
	if err != nil {
		return nil, err
	}
	d := &deps{store: db}

	semantic, err := buildSemantic(ctx, log, d)
	if err != nil {
		d.Close()
		return nil, err
	}

	semanticOrder, err := search.ParseOrder(os.Getenv("SEARCH_SEMANTIC_ORDER"), search.OrderRetrieval)
	if err != nil {
		d.Close()
		return nil, err
	}
	directoryOrder, err := search.ParseOrder(os.Getenv("SEARCH_DIRECTORY_ORDER"), search.OrderByScore)
	if err != nil {
		d.Close()
		return nil, err
	}

	engine, err := search.NewEngine(search.EngineConfig{
		Semantic:       semantic,
		Directory:      search.NewDirectoryRetriever(db),
		Hydrator:       search.NewHydrator(db),
		VectorTimeout:  getEnvDuration("SEARCH_VECTOR_TIMEOUT", 0),
		StoreTimeout:   getEnvDuration("SEARCH_STORE_TIMEOUT", 0),
		MaxPageSize:    getEnvInt("SEARCH_MAX_PAGE_SIZE", search.DefaultMaxPageSize),
		MaxWindow:      getEnvInt("SEARCH_MAX_WINDOW", search.DefaultMaxWindow),
		SemanticOrder:  semanticOrder,
		DirectoryOrder: directoryOrder,
		Metrics:        search.NewMetrics(reg),
	})
	if err != nil {
		d.Close()
		return nil, err
	}
	d.engine = engine
	return d, nil
}

// openStore opens the SQLite candidate database at HRAI_DB, falling back to
// ~/.hrai/candidates.db.
func openStore(log *slog.Logger) (*store.SQLiteStore, error) {
	path := os.Getenv("HRAI_DB")
	if path == "" {
		var err error
		if path, err = store.DefaultDBPath(); err != nil {
			return nil, err
		}
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	log.Info("store: opened", slog.String("path", path))
	return db, nil
}

// buildSemantic wires the embedder, the Qdrant connection and the vector
// retriever. An unset QDRANT_HOST disables semantic search; a set but
// unusable configuration is an error.
func buildSemantic(ctx context.Context, log *slog.Logger, d *deps) (search.Retriever, error) {
	host := os.Getenv("QDRANT_HOST")
	if host == "" {
		log.Info("semantic search disabled", slog.String("reason", "QDRANT_HOST not set"))
		return nil, nil
	}

	if err := embedder.ValidateForSearch(log); err != nil {
		return nil, err
	}
	emb, err := embedder.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}

	port := getEnvInt("QDRANT_PORT", 6334)
	collection := getEnvOrDefault("QDRANT_COLLECTION", defaultCollection)
	qs, err := vectordb.NewQdrantStore(ctx, &vectordb.QdrantConfig{
		Host:       host,
		Port:       port,
		Collection: collection,
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     getEnvBool("QDRANT_TLS"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
	}
	d.qdrant = qs

	index, err := vectordb.NewIndex(emb, qs)
	if err != nil {
		return nil, err
	}

	log.Info("semantic search enabled",
		slog.String("embedding_provider", embedder.Backend()),
		slog.String("qdrant_host", host),
		slog.Int("qdrant_port", port),
		slog.String("collection", collection),
	)
	return search.NewSemanticRetriever(index), nil
}
