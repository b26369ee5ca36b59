// Package vectordb adapts the external vector search service for candidate
// retrieval. A query text is embedded, searched against the candidate
// collection with an optional metadata filter, and returned as ordered
// (candidate ID, similarity) matches. This package never writes to the index.
package vectordb

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrMalformedResponse is returned when the vector service answers with a
// shape the adapter cannot interpret (non-integer point IDs, NaN scores).
var ErrMalformedResponse = errors.New("vectordb: malformed response")

// Match is a single similarity hit returned by the vector service.
type Match struct {
	// ID is the candidate identifier stored as the point ID.
	ID int64

	// Score is the raw similarity reported by the service.
	Score float64

	// Metadata holds the point payload rendered as strings. List values are
	// joined with commas.
	Metadata map[string]string
}

// Filter is an "attribute ∈ set" predicate over a point metadata field.
// A nil *Filter means no filtering.
type Filter struct {
	// Field is the metadata key (e.g. "municipios").
	Field string

	// Values is the accepted set. A point matches when any of its values for
	// Field is in Values.
	Values []string
}

// String renders the filter in the Mongo-style notation used by most vector
// services, e.g. {"municipios":{"$in":["Manizales"]}}. It is used for logs.
func (f *Filter) String() string {
	if f == nil {
		return "none"
	}
	b, err := json.Marshal(map[string]map[string][]string{f.Field: {"$in": f.Values}})
	if err != nil {
		return "invalid"
	}
	return string(b)
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// pointSearcher runs a filtered nearest-neighbour query for a vector.
// *QdrantStore satisfies it; tests inject a fake.
type pointSearcher interface {
	Query(ctx context.Context, vector []float32, filter *Filter, topK int) ([]Match, error)
}
