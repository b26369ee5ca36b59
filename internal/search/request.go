// Package search is the hybrid candidate retrieval and ranking engine.
//
// A request with query text is answered by the vector search service
// (semantic mode); a request without one pages through the relational store
// (directory mode). Either way the retrieved IDs are hydrated into full
// candidate records in retrieval order, re-scored with deterministic
// credential bonuses and assembled into a page.
package search

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidRequest is returned for requests that can never be served, such
// as a non-positive page or page size. It is the only error Engine.Search
// returns besides caller cancellation.
var ErrInvalidRequest = errors.New("search: invalid request")

// Page size limits.
const (
	// DefaultPageSize is used by callers that do not set a size.
	DefaultPageSize = 25

	// DefaultMaxPageSize bounds page_size so one request cannot ask the
	// vector service for an unbounded top_k.
	DefaultMaxPageSize = 100

	// DefaultMaxWindow bounds page*page_size, the top_k a semantic request
	// sends to the vector service and the deepest row a directory scan
	// reaches.
	DefaultMaxWindow = 10000
)

// Mode is the retrieval path chosen for a request.
type Mode int

const (
	// ModeDirectory pages through the relational store; no query text.
	ModeDirectory Mode = iota
	// ModeSemantic queries the vector search service with the query text.
	ModeSemantic
)

// String returns the lowercase mode name used in logs, metrics and JSON.
func (m Mode) String() string {
	if m == ModeSemantic {
		return "semantic"
	}
	return "directory"
}

// Request is one search call. Site is a location name; empty, "Todos" or an
// unrecognised name mean no location filter.
type Request struct {
	Query    string `json:"query"`
	Site     string `json:"site,omitempty"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// SelectMode picks semantic mode iff the query has non-blank text.
func SelectMode(req Request) Mode {
	if strings.TrimSpace(req.Query) != "" {
		return ModeSemantic
	}
	return ModeDirectory
}

// Validate checks paging against DefaultMaxPageSize and DefaultMaxWindow.
func (r Request) Validate() error {
	return r.validate(DefaultMaxPageSize, DefaultMaxWindow)
}

func (r Request) validate(maxPageSize, maxWindow int) error {
	if r.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidRequest, r.Page)
	}
	if r.PageSize < 1 {
		return fmt.Errorf("%w: page_size must be >= 1, got %d", ErrInvalidRequest, r.PageSize)
	}
	if maxPageSize > 0 && r.PageSize > maxPageSize {
		return fmt.Errorf("%w: page_size must be <= %d, got %d", ErrInvalidRequest, maxPageSize, r.PageSize)
	}
	if r.Page > math.MaxInt/r.PageSize {
		return fmt.Errorf("%w: page %d is out of range", ErrInvalidRequest, r.Page)
	}
	if maxWindow > 0 && r.window() > maxWindow {
		return fmt.Errorf("%w: page*page_size must be <= %d, got %d", ErrInvalidRequest, maxWindow, r.window())
	}
	return nil
}

// offset is the number of results preceding the requested page.
func (r Request) offset() int {
	return (r.Page - 1) * r.PageSize
}

// window is the number of results up to and including the requested page.
func (r Request) window() int {
	return r.Page * r.PageSize
}

// Order is a per-mode result ordering policy.
type Order string

const (
	// OrderRetrieval keeps the order the retriever produced.
	OrderRetrieval Order = "retrieval"
	// OrderByScore sorts by final score descending, ties by candidate ID
	// ascending.
	OrderByScore Order = "score"
)

// ParseOrder validates an order policy name. Empty yields fallback.
func ParseOrder(s string, fallback Order) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return fallback, nil
	case OrderRetrieval:
		return OrderRetrieval, nil
	case OrderByScore:
		return OrderByScore, nil
	default:
		return "", fmt.Errorf("search: unknown order policy %q, valid values: retrieval, score", s)
	}
}
