package search

import (
	"context"

	"github.com/54b3r/hrai-go/internal/candidate"
	"github.com/54b3r/hrai-go/internal/vectordb"
)

// Hit is one retrieved candidate before hydration.
type Hit struct {
	// ID is the candidate identifier.
	ID int64

	// RawScore is the vector similarity. Always 0 in directory mode.
	RawScore float64

	// Metadata is the vector point payload. Nil in directory mode.
	Metadata map[string]string
}

// Retriever produces the hits for exactly the requested page, in retrieval
// order. Both retrieval paths sit behind it so the engine can treat their
// incompatible pagination models uniformly.
type Retriever interface {
	Retrieve(ctx context.Context, req Request) ([]Hit, error)
}

// VectorSearcher is the vector search service. *vectordb.Index satisfies it.
type VectorSearcher interface {
	Search(ctx context.Context, query string, filter *vectordb.Filter, topK int) ([]vectordb.Match, error)
}

// IDScanner pages through candidate IDs in the relational store.
// *store.SQLiteStore satisfies it.
type IDScanner interface {
	ScanIDs(ctx context.Context, site string, offset, limit int) ([]int64, error)
}

// RecordFetcher loads full candidate records by ID in one round trip.
// *store.SQLiteStore satisfies it.
type RecordFetcher interface {
	FetchByIDs(ctx context.Context, ids []int64) (map[int64]*candidate.Record, error)
}
