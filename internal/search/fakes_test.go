package search

import (
	"context"
	"sync"

	"github.com/54b3r/hrai-go/internal/candidate"
	"github.com/54b3r/hrai-go/internal/vectordb"
)

// fakeIndex is a VectorSearcher holding a fixed relevance-ordered result list.
// It honours topK and records every call.
type fakeIndex struct {
	mu      sync.Mutex
	matches []vectordb.Match
	err     error
	block   bool

	calls  int
	query  string
	filter *vectordb.Filter
	topK   int
}

func (f *fakeIndex) Search(ctx context.Context, query string, filter *vectordb.Filter, topK int) ([]vectordb.Match, error) {
	f.mu.Lock()
	f.calls++
	f.query, f.filter, f.topK = query, filter, topK
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.matches[:min(topK, len(f.matches))], nil
}

// rankedMatches returns n matches with IDs 1..n and strictly decreasing scores.
func rankedMatches(n int) []vectordb.Match {
	out := make([]vectordb.Match, n)
	for i := range out {
		out[i] = vectordb.Match{ID: int64(i + 1), Score: 0.99 - float64(i)*0.001}
	}
	return out
}

// fakeScanner is an IDScanner over a fixed ID list.
type fakeScanner struct {
	ids    []int64
	err    error
	site   string
	offset int
	limit  int
}

func (f *fakeScanner) ScanIDs(_ context.Context, site string, offset, limit int) ([]int64, error) {
	f.site, f.offset, f.limit = site, offset, limit
	if f.err != nil {
		return nil, f.err
	}
	return pageSlice(f.ids, offset, limit), nil
}

// fakeFetcher is a RecordFetcher over an in-memory map.
type fakeFetcher struct {
	records map[int64]*candidate.Record
	err     error
	calls   int
	gotIDs  []int64
}

func (f *fakeFetcher) FetchByIDs(_ context.Context, ids []int64) (map[int64]*candidate.Record, error) {
	f.calls++
	f.gotIDs = append([]int64(nil), ids...)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int64]*candidate.Record, len(ids))
	for _, id := range ids {
		if r, ok := f.records[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func recordsFor(ids ...int64) map[int64]*candidate.Record {
	out := make(map[int64]*candidate.Record, len(ids))
	for _, id := range ids {
		out[id] = &candidate.Record{ID: id, FullName: "Candidato"}
	}
	return out
}
