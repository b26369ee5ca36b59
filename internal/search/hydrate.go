package search

import (
	"context"
	"fmt"

	"github.com/54b3r/hrai-go/internal/candidate"
)

// Hydrated is a hit resolved to its full candidate record.
type Hydrated struct {
	Hit    Hit
	Record *candidate.Record
}

// Hydrator resolves hits into candidate records with a single batched store
// lookup.
type Hydrator struct {
	store RecordFetcher
}

// NewHydrator returns a hydrator backed by store.
func NewHydrator(store RecordFetcher) *Hydrator {
	return &Hydrator{store: store}
}

// Hydrate returns the hydrated hits in exactly the input order. Hits whose ID
// has no record are left out and reported in missing; that is a
// store/index drift signal, not an error. A repeated ID keeps only its first
// occurrence.
func (h *Hydrator) Hydrate(ctx context.Context, hits []Hit) (hydrated []Hydrated, missing []int64, err error) {
	if len(hits) == 0 {
		return nil, nil, nil
	}

	ids := make([]int64, 0, len(hits))
	seen := make(map[int64]bool, len(hits))
	for _, hit := range hits {
		if !seen[hit.ID] {
			seen[hit.ID] = true
			ids = append(ids, hit.ID)
		}
	}

	records, err := h.store.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("search: hydrate %d ids: %w", len(ids), err)
	}

	hydrated = make([]Hydrated, 0, len(ids))
	emitted := make(map[int64]bool, len(ids))
	for _, hit := range hits {
		if emitted[hit.ID] {
			continue
		}
		emitted[hit.ID] = true

		rec, ok := records[hit.ID]
		if !ok || rec == nil {
			missing = append(missing, hit.ID)
			continue
		}
		hydrated = append(hydrated, Hydrated{Hit: hit, Record: rec})
	}
	return hydrated, missing, nil
}
