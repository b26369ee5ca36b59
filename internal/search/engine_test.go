package search

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/54b3r/hrai-go/internal/candidate"
	"github.com/54b3r/hrai-go/internal/store"
	"github.com/54b3r/hrai-go/internal/vectordb"
)

// newTestStore opens an in-memory store seeded with recs.
func newTestStore(t *testing.T, recs ...*candidate.Record) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	for _, r := range recs {
		if err := s.Insert(t.Context(), r); err != nil {
			t.Fatalf("insert %d: %v", r.ID, err)
		}
	}
	return s
}

func person(id int64, postgrad, experience string, sites ...candidate.Site) *candidate.Record {
	return &candidate.Record{
		ID:       id,
		FullName: "Candidato",
		Email:    "c@example.com",
		Profile:  &candidate.AcademicProfile{PostgraduateTitle: postgrad, HasExperience: experience},
		Sites:    candidate.SiteSetOf(sites...),
	}
}

// newTestEngine wires an engine over the real store and a fake index.
func newTestEngine(t *testing.T, s *store.SQLiteStore, idx VectorSearcher, reg prometheus.Registerer) *Engine {
	t.Helper()
	cfg := EngineConfig{
		Directory:     NewDirectoryRetriever(s),
		Hydrator:      NewHydrator(s),
		VectorTimeout: 50 * time.Millisecond,
		Metrics:       NewMetrics(reg),
	}
	if idx != nil {
		cfg.Semantic = NewSemanticRetriever(idx)
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	return e
}

func TestEngine_DirectoryAllSitesSortedByScore(t *testing.T) {
	t.Parallel()

	s := newTestStore(t,
		person(1, "", "No", "Manizales"),
		person(2, "Doctorado en Física", "", "Neira"),
		person(3, "Maestría en Educación", "Sí"),
		person(4, "", "si", "Manizales"),
		person(5, "PhD", "true", "Samaná"),
		person(6, "Magíster", "no"),
	)
	e := newTestEngine(t, s, nil, nil)

	page, err := e.Search(t.Context(), Request{Query: "", Site: "Todos", Page: 1, PageSize: 25})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if page.Mode != "directory" {
		t.Errorf("mode = %q, want directory", page.Mode)
	}
	// Finals: 5=0.25 2=0.2 3=0.15 4=0.05 1=0 6=0 ("Magíster" has no "magister" substring).
	if ids := resultIDs(page.Results); !reflect.DeepEqual(ids, []int64{5, 2, 3, 4, 1, 6}) {
		t.Errorf("ids = %v, want [5 2 3 4 1 6]", ids)
	}
	for _, r := range page.Results {
		if r.RawScore != 0 {
			t.Errorf("directory result %d has raw score %v", r.ID, r.RawScore)
		}
	}
}

func TestEngine_DirectorySiteFilterAndPaging(t *testing.T) {
	t.Parallel()

	var recs []*candidate.Record
	for id := int64(1); id <= 12; id++ {
		site := candidate.Site("Neira")
		if id%2 == 0 {
			site = "Manizales"
		}
		recs = append(recs, person(id, "", "", site))
	}
	e := newTestEngine(t, newTestStore(t, recs...), nil, nil)

	page, err := e.Search(t.Context(), Request{Site: "manizales", Page: 2, PageSize: 4})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if ids := resultIDs(page.Results); !reflect.DeepEqual(ids, []int64{10, 12}) {
		t.Errorf("ids = %v, want [10 12]", ids)
	}
}

func TestEngine_SemanticFilterAndOrder(t *testing.T) {
	t.Parallel()

	s := newTestStore(t,
		person(10, "", "", "Manizales"),
		person(20, "Doctorado", "Sí", "Manizales"),
		person(30, "", "", "Manizales"),
	)
	idx := &fakeIndex{matches: []vectordb.Match{{ID: 30, Score: 0.9}, {ID: 10, Score: 0.8}, {ID: 20, Score: 0.7}}}
	e := newTestEngine(t, s, idx, nil)

	page, err := e.Search(t.Context(), Request{Query: "docente en IA", Site: "Manizales", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if idx.topK != 10 {
		t.Errorf("topK = %d, want 10", idx.topK)
	}
	if got, want := idx.filter.String(), `{"municipios":{"$in":["Manizales"]}}`; got != want {
		t.Errorf("filter = %s, want %s", got, want)
	}
	if ids := resultIDs(page.Results); !reflect.DeepEqual(ids, []int64{30, 10, 20}) {
		t.Errorf("ids = %v, want relevance order [30 10 20]", ids)
	}
	if got := page.Results[2].FinalScore; got != 0.95 {
		t.Errorf("final score of 20 = %v, want 0.95", got)
	}
}

func TestEngine_SemanticScoreOrderPolicy(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, person(1, "", ""), person(2, "Doctorado", ""))
	idx := &fakeIndex{matches: []vectordb.Match{{ID: 1, Score: 0.8}, {ID: 2, Score: 0.7}}}
	e, err := NewEngine(EngineConfig{
		Semantic:      NewSemanticRetriever(idx),
		Directory:     NewDirectoryRetriever(s),
		Hydrator:      NewHydrator(s),
		SemanticOrder: OrderByScore,
	})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	page, err := e.Search(t.Context(), Request{Query: "q", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if ids := resultIDs(page.Results); !reflect.DeepEqual(ids, []int64{2, 1}) {
		t.Errorf("ids = %v, want re-ranked [2 1]", ids)
	}
}

func TestEngine_DoctorateWithExperienceBonuses(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, person(7, "Doctorado en Educación", "Sí"))
	idx := &fakeIndex{matches: []vectordb.Match{{ID: 7, Score: 0.6}}}
	e := newTestEngine(t, s, idx, nil)

	page, err := e.Search(t.Context(), Request{Query: "pedagogía", Page: 1, PageSize: 5})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(page.Results) != 1 {
		t.Fatalf("len = %d, want 1", len(page.Results))
	}
	r := page.Results[0]
	if !reflect.DeepEqual(r.Bonuses, []string{BonusDoctorate, BonusExperience}) {
		t.Errorf("bonuses = %v", r.Bonuses)
	}
	if r.RawScore != 0.6 || r.FinalScore != 0.85 {
		t.Errorf("raw/final = %v/%v, want 0.6/0.85", r.RawScore, r.FinalScore)
	}

	idx.matches[0].Score = 0.9
	page, err = e.Search(t.Context(), Request{Query: "pedagogía", Page: 1, PageSize: 5})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if got := page.Results[0].FinalScore; got != 1 {
		t.Errorf("final = %v, want clamped 1", got)
	}
}

func TestEngine_VectorTimeoutFailsSoft(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	e := newTestEngine(t, newTestStore(t, person(1, "", "")), &fakeIndex{block: true}, reg)

	page, err := e.Search(t.Context(), Request{Query: "q", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Search() error = %v, want empty page", err)
	}
	if page == nil || page.Results == nil || len(page.Results) != 0 {
		t.Fatalf("page = %+v, want empty non-nil results", page)
	}
	if got := testutil.ToFloat64(e.metrics.requests.WithLabelValues("semantic", outcomeDegraded)); got != 1 {
		t.Errorf("degraded counter = %v, want 1", got)
	}
}

func TestEngine_VectorErrorsFailSoft(t *testing.T) {
	t.Parallel()

	for _, serr := range []error{
		errors.New("rpc error: code = Unavailable"),
		vectordb.ErrMalformedResponse,
		context.DeadlineExceeded,
	} {
		e := newTestEngine(t, newTestStore(t, person(1, "", "")), &fakeIndex{err: serr}, nil)
		page, err := e.Search(t.Context(), Request{Query: "q", Page: 1, PageSize: 10})
		if err != nil || len(page.Results) != 0 {
			t.Errorf("%v: page=%+v err=%v, want empty page", serr, page, err)
		}
	}
}

func TestEngine_HydrationMissDropsCandidate(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	s := newTestStore(t, person(1, "", ""), person(2, "", ""))
	idx := &fakeIndex{matches: []vectordb.Match{{ID: 2, Score: 0.9}, {ID: 42, Score: 0.8}, {ID: 1, Score: 0.7}}}
	e := newTestEngine(t, s, idx, reg)

	page, err := e.Search(t.Context(), Request{Query: "q", Page: 1, PageSize: 3})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if ids := resultIDs(page.Results); !reflect.DeepEqual(ids, []int64{2, 1}) {
		t.Errorf("ids = %v, want [2 1] without 42", ids)
	}
	if got := testutil.ToFloat64(e.metrics.hydrationMisses); got != 1 {
		t.Errorf("hydration misses = %v, want 1", got)
	}
}

func TestEngine_DeepSemanticPage(t *testing.T) {
	t.Parallel()

	var recs []*candidate.Record
	for id := int64(1); id <= 80; id++ {
		recs = append(recs, person(id, "", ""))
	}
	idx := &fakeIndex{matches: rankedMatches(100)}
	e := newTestEngine(t, newTestStore(t, recs...), idx, nil)

	page, err := e.Search(t.Context(), Request{Query: "q", Page: 3, PageSize: 25})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if idx.topK != 75 {
		t.Errorf("topK = %d, want 75", idx.topK)
	}
	want := make([]int64, 0, 25)
	for id := int64(51); id <= 75; id++ {
		want = append(want, id)
	}
	if ids := resultIDs(page.Results); !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want 51..75", ids)
	}
}

func TestEngine_InvalidRequest(t *testing.T) {
	t.Parallel()

	idx := &fakeIndex{}
	e := newTestEngine(t, newTestStore(t), idx, nil)
	for _, req := range []Request{
		{Query: "q", Page: 0, PageSize: 10},
		{Page: 1, PageSize: 0},
		{Page: 1, PageSize: 101},
	} {
		if _, err := e.Search(t.Context(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("%+v: error = %v, want ErrInvalidRequest", req, err)
		}
	}
	if idx.calls != 0 {
		t.Errorf("vector service called %d times for invalid requests", idx.calls)
	}
}

func TestEngine_PageBeyondWindowRejected(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, person(1, "", ""), person(2, "", ""), person(3, "", ""))
	idx := &fakeIndex{matches: rankedMatches(3)}
	e := newTestEngine(t, s, idx, nil)

	for _, req := range []Request{
		{Page: 1 << 62, PageSize: 4},
		{Query: "q", Page: 1 << 62, PageSize: 4},
		{Page: 2501, PageSize: 4},
	} {
		page, err := e.Search(t.Context(), req)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("%+v: error = %v, want ErrInvalidRequest", req, err)
		}
		if page != nil {
			t.Errorf("%+v: got %d results, want none", req, len(page.Results))
		}
	}
	if idx.calls != 0 {
		t.Errorf("vector service called %d times for out-of-range pages", idx.calls)
	}
}

func TestEngine_ConfiguredMaxWindow(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, person(1, "", ""), person(2, "", ""))
	e, err := NewEngine(EngineConfig{
		Directory: NewDirectoryRetriever(s),
		Hydrator:  NewHydrator(s),
		MaxWindow: 20,
	})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	if _, err := e.Search(t.Context(), Request{Page: 3, PageSize: 10}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("page 3 x 10: error = %v, want ErrInvalidRequest", err)
	}
	page, err := e.Search(t.Context(), Request{Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("page 2 x 10: %v", err)
	}
	if len(page.Results) != 0 {
		t.Errorf("page 2 x 10: got %v, want empty", resultIDs(page.Results))
	}
}

func TestEngine_CallerCancellationPropagates(t *testing.T) {
	t.Parallel()

	e, err := NewEngine(EngineConfig{
		Semantic:      NewSemanticRetriever(&fakeIndex{block: true}),
		Directory:     NewDirectoryRetriever(&fakeScanner{}),
		Hydrator:      NewHydrator(&fakeFetcher{}),
		VectorTimeout: time.Minute,
	})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(10*time.Millisecond, cancel)

	if _, err := e.Search(ctx, Request{Query: "q", Page: 1, PageSize: 10}); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestEngine_HydrationErrorFailsSoft(t *testing.T) {
	t.Parallel()

	e, err := NewEngine(EngineConfig{
		Directory: NewDirectoryRetriever(&fakeScanner{ids: []int64{1, 2}}),
		Hydrator:  NewHydrator(&fakeFetcher{err: errors.New("database is locked")}),
	})
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	page, err := e.Search(t.Context(), Request{Page: 1, PageSize: 10})
	if err != nil || len(page.Results) != 0 {
		t.Fatalf("page=%+v err=%v, want empty page", page, err)
	}
}

func TestEngine_SemanticDisabled(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newTestStore(t, person(1, "", "")), nil, nil)
	if e.SemanticEnabled() {
		t.Fatal("SemanticEnabled() = true without a vector retriever")
	}
	page, err := e.Search(t.Context(), Request{Query: "q", Page: 1, PageSize: 10})
	if err != nil || len(page.Results) != 0 {
		t.Fatalf("page=%+v err=%v, want empty page", page, err)
	}
}

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(EngineConfig{Hydrator: NewHydrator(&fakeFetcher{})}); err == nil {
		t.Error("missing directory retriever: expected error")
	}
	if _, err := NewEngine(EngineConfig{Directory: NewDirectoryRetriever(&fakeScanner{})}); err == nil {
		t.Error("missing hydrator: expected error")
	}
}
