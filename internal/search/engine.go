package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/54b3r/hrai-go/internal/logging"
	"github.com/54b3r/hrai-go/internal/tracing"
)

// defaultCallTimeout bounds each external call when no timeout is configured.
const defaultCallTimeout = 5 * time.Second

// EngineConfig wires the engine's collaborators and policies.
type EngineConfig struct {
	// Semantic serves query-text requests. Nil disables semantic search:
	// such requests get an empty page.
	Semantic Retriever

	// Directory serves empty-query requests. Required.
	Directory Retriever

	// Hydrator resolves hits into records. Required.
	Hydrator *Hydrator

	// VectorTimeout bounds the semantic retrieval call (default 5s).
	VectorTimeout time.Duration

	// StoreTimeout bounds the directory scan and hydration calls (default 5s).
	StoreTimeout time.Duration

	// MaxPageSize caps Request.PageSize (default DefaultMaxPageSize).
	MaxPageSize int

	// MaxWindow caps Page*PageSize (default DefaultMaxWindow).
	MaxWindow int

	// SemanticOrder is the result order in semantic mode
	// (default OrderRetrieval).
	SemanticOrder Order

	// DirectoryOrder is the result order in directory mode
	// (default OrderByScore).
	DirectoryOrder Order

	// Metrics receives pipeline metrics. Nil creates unregistered ones.
	Metrics *Metrics
}

// Engine runs the search pipeline: select mode, retrieve, hydrate, score,
// assemble. It holds no per-request state and is safe for concurrent use.
type Engine struct {
	semantic       Retriever
	directory      Retriever
	hydrator       *Hydrator
	vectorTimeout  time.Duration
	storeTimeout   time.Duration
	maxPageSize    int
	maxWindow      int
	semanticOrder  Order
	directoryOrder Order
	metrics        *Metrics
}

// NewEngine validates cfg and applies defaults.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Directory == nil {
		return nil, fmt.Errorf("search: directory retriever must not be nil")
	}
	if cfg.Hydrator == nil {
		return nil, fmt.Errorf("search: hydrator must not be nil")
	}

	e := &Engine{
		semantic:       cfg.Semantic,
		directory:      cfg.Directory,
		hydrator:       cfg.Hydrator,
		vectorTimeout:  cfg.VectorTimeout,
		storeTimeout:   cfg.StoreTimeout,
		maxPageSize:    cfg.MaxPageSize,
		maxWindow:      cfg.MaxWindow,
		semanticOrder:  cfg.SemanticOrder,
		directoryOrder: cfg.DirectoryOrder,
		metrics:        cfg.Metrics,
	}
	if e.vectorTimeout <= 0 {
		e.vectorTimeout = defaultCallTimeout
	}
	if e.storeTimeout <= 0 {
		e.storeTimeout = defaultCallTimeout
	}
	if e.maxPageSize <= 0 {
		e.maxPageSize = DefaultMaxPageSize
	}
	if e.maxWindow <= 0 {
		e.maxWindow = DefaultMaxWindow
	}
	if e.semanticOrder == "" {
		e.semanticOrder = OrderRetrieval
	}
	if e.directoryOrder == "" {
		e.directoryOrder = OrderByScore
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}
	return e, nil
}

// SemanticEnabled reports whether a vector retriever is wired.
func (e *Engine) SemanticEnabled() bool {
	return e.semantic != nil
}

// Search runs one request. Retrieval and hydration failures degrade to an
// empty page; only an invalid request (ErrInvalidRequest) or cancellation of
// ctx by the caller produce an error.
func (e *Engine) Search(ctx context.Context, req Request) (*Page, error) {
	mode := SelectMode(req)
	log := logging.FromContext(ctx).With(
		slog.String("mode", mode.String()),
		slog.String("site", req.Site),
		slog.Int("page", req.Page),
		slog.Int("page_size", req.PageSize),
	)

	if err := req.validate(e.maxPageSize, e.maxWindow); err != nil {
		e.metrics.requests.WithLabelValues(mode.String(), outcomeInvalid).Inc()
		return nil, err
	}

	ctx, span := tracing.Start(ctx, "search.Search",
		attribute.String("search.mode", mode.String()),
		attribute.String("search.site", req.Site),
		attribute.Int("search.page", req.Page),
		attribute.Int("search.page_size", req.PageSize),
	)
	start := time.Now()
	page, err := e.run(ctx, log, mode, req)
	tracing.End(span, err)
	if err != nil {
		e.metrics.requests.WithLabelValues(mode.String(), outcomeCanceled).Inc()
		return nil, err
	}

	e.metrics.results.Observe(float64(len(page.Results)))
	log.Info("search: completed",
		slog.Int("results", len(page.Results)),
		slog.Duration("duration", time.Since(start)),
	)
	return page, nil
}

func (e *Engine) run(ctx context.Context, log *slog.Logger, mode Mode, req Request) (*Page, error) {
	page := &Page{Mode: mode.String(), Page: req.Page, PageSize: req.PageSize, Results: []Result{}}

	hits, err := e.retrieve(ctx, mode, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("search: retrieval failed, returning empty page", slog.String("error", err.Error()))
		e.metrics.requests.WithLabelValues(mode.String(), outcomeDegraded).Inc()
		return page, nil
	}

	hydrated, err := e.hydrate(ctx, log, hits)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("search: hydration failed, returning empty page", slog.String("error", err.Error()))
		e.metrics.requests.WithLabelValues(mode.String(), outcomeDegraded).Inc()
		return page, nil
	}

	order := e.semanticOrder
	if mode == ModeDirectory {
		order = e.directoryOrder
	}
	_, span := tracing.Start(ctx, "search.rank", attribute.String("search.order", string(order)))
	results := Assemble(ScoreAll(hydrated), order)
	tracing.End(span, nil)

	page.Results = pageSlice(results, 0, req.PageSize)
	e.metrics.requests.WithLabelValues(mode.String(), outcomeOK).Inc()
	return page, nil
}

// retrieve dispatches to the retriever for mode under the matching timeout.
func (e *Engine) retrieve(ctx context.Context, mode Mode, req Request) (hits []Hit, err error) {
	retriever, timeout, stage := e.directory, e.storeTimeout, "directory"
	if mode == ModeSemantic {
		retriever, timeout, stage = e.semantic, e.vectorTimeout, "semantic"
	}
	if retriever == nil {
		return nil, errors.New("search: semantic search is not configured")
	}

	ctx, span := tracing.Start(ctx, "search.retrieve."+stage)
	defer func() {
		span.SetAttributes(attribute.Int("search.hits", len(hits)))
		tracing.End(span, err)
	}()
	defer e.observe(stage, time.Now())

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return retriever.Retrieve(ctx, req)
}

// hydrate resolves hits under the store timeout and logs every miss.
func (e *Engine) hydrate(ctx context.Context, log *slog.Logger, hits []Hit) (hydrated []Hydrated, err error) {
	ctx, span := tracing.Start(ctx, "search.hydrate", attribute.Int("search.hits", len(hits)))
	defer func() { tracing.End(span, err) }()
	defer e.observe("hydrate", time.Now())

	ctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()

	hydrated, missing, err := e.hydrator.Hydrate(ctx, hits)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		log.Warn("search: hydration miss, candidate not in store", slog.Int64("candidate_id", id))
	}
	e.metrics.hydrationMisses.Add(float64(len(missing)))
	return hydrated, nil
}

func (e *Engine) observe(stage string, start time.Time) {
	e.metrics.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
