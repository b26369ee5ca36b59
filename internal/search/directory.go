package search

import (
	"context"
	"fmt"
)

// DirectoryRetriever answers empty-query requests by paging through the
// relational store in primary key order. Hits carry a neutral raw score of 0.
type DirectoryRetriever struct {
	store IDScanner
}

// NewDirectoryRetriever returns a retriever backed by store.
func NewDirectoryRetriever(store IDScanner) *DirectoryRetriever {
	return &DirectoryRetriever{store: store}
}

// Retrieve returns the IDs of the requested page.
func (r *DirectoryRetriever) Retrieve(ctx context.Context, req Request) ([]Hit, error) {
	ids, err := r.store.ScanIDs(ctx, req.Site, req.offset(), req.PageSize)
	if err != nil {
		return nil, fmt.Errorf("search: directory scan: %w", err)
	}

	hits := make([]Hit, 0, len(ids))
	for _, id := range ids {
		hits = append(hits, Hit{ID: id})
	}
	return hits, nil
}
