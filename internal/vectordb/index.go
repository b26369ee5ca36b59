package vectordb

import (
	"context"
	"fmt"
)

// Index is the vector search service as seen by the search pipeline: it
// embeds the query text and delegates the filtered top-k search to the
// underlying store.
type Index struct {
	// embedder converts query text to a dense vector.
	embedder Embedder

	// points performs the vector similarity search.
	points pointSearcher
}

// NewIndex constructs an Index from the given Embedder and QdrantStore.
func NewIndex(embedder Embedder, store *QdrantStore) (*Index, error) {
	if store == nil {
		return nil, fmt.Errorf("vectordb: store must not be nil")
	}
	return newIndex(embedder, store)
}

func newIndex(embedder Embedder, points pointSearcher) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("vectordb: embedder must not be nil")
	}
	if points == nil {
		return nil, fmt.Errorf("vectordb: store must not be nil")
	}
	return &Index{embedder: embedder, points: points}, nil
}

// Search embeds query and returns up to topK matches in similarity order.
// A nil filter searches the whole collection.
func (ix *Index) Search(ctx context.Context, query string, filter *Filter, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("vectordb: topK must be positive, got %d", topK)
	}

	embeddings, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("vectordb: embedding query failed: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("vectordb: embedder returned empty result for query")
	}

	matches, err := ix.points.Query(ctx, embeddings[0], filter, topK)
	if err != nil {
		return nil, fmt.Errorf("vectordb: vector search failed: %w", err)
	}
	return matches, nil
}
