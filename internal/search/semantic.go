package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/54b3r/hrai-go/internal/candidate"
	"github.com/54b3r/hrai-go/internal/vectordb"
)

// SiteField is the multi-valued point payload field holding the sites a
// candidate is associated with.
const SiteField = "municipios"

// SemanticRetriever answers query-text requests from the vector search
// service.
//
// The service only supports a top-k cutoff, not an offset, so page p of size
// s is served by requesting top_k = p*s and slicing [(p-1)*s, p*s) locally.
// Cost therefore grows linearly with the page number; deep pages are
// expensive and DefaultMaxPageSize is the only bound on a single call.
type SemanticRetriever struct {
	index VectorSearcher
}

// NewSemanticRetriever returns a retriever backed by index.
func NewSemanticRetriever(index VectorSearcher) *SemanticRetriever {
	return &SemanticRetriever{index: index}
}

// Retrieve returns the hits of the requested page in similarity order.
func (r *SemanticRetriever) Retrieve(ctx context.Context, req Request) ([]Hit, error) {
	matches, err := r.index.Search(ctx, strings.TrimSpace(req.Query), siteFilter(req.Site), req.window())
	if err != nil {
		return nil, fmt.Errorf("search: vector retrieval: %w", err)
	}

	hits := make([]Hit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, Hit{ID: m.ID, RawScore: m.Score, Metadata: m.Metadata})
	}
	return pageSlice(hits, req.offset(), req.PageSize), nil
}

// siteFilter turns a site name into an IN predicate over SiteField. The
// "all sites" sentinel and unknown names yield no filter.
func siteFilter(name string) *vectordb.Filter {
	site, ok := candidate.ParseSite(name)
	if !ok {
		return nil
	}
	return &vectordb.Filter{Field: SiteField, Values: []string{string(site)}}
}

// pageSlice returns items[offset:offset+size] clipped to the slice bounds.
func pageSlice[T any](items []T, offset, size int) []T {
	if offset >= len(items) {
		return nil
	}
	end := min(offset+size, len(items))
	return items[offset:end]
}
