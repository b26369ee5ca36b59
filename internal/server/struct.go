package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/hrai-go/internal/search"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, slog.Default is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	Pingers []Pinger
	// RateLimit is the sustained per-IP request rate on /api/search
	// (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on the candidate data routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// MetricsRegistry receives the server's collectors. Defaults to
	// prometheus.DefaultRegisterer.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs GET /metrics. Defaults to prometheus.DefaultGatherer.
	MetricsGatherer prometheus.Gatherer
}

// searcher runs one search request. *search.Engine satisfies it; tests
// inject a fake.
type searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Page, error)
}

// documentLocator resolves a candidate's CV link.
// *store.SQLiteStore satisfies it.
type documentLocator interface {
	DocumentURL(ctx context.Context, id int64) (string, error)
}

// Server is the HTTP front end of the search engine.
type Server struct {
	// engine answers POST /api/search.
	engine searcher
	// docs answers GET /api/cv/{id}.
	docs documentLocator
	// cfg holds the resolved server configuration.
	cfg *Config
	// handler is the fully wrapped root handler.
	handler http.Handler
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the HTTP collectors.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// searchRequest is the JSON body of POST /api/search. Paging fields are
// pointers so an explicit 0 reaches validation instead of taking a default.
type searchRequest struct {
	Query          string `json:"query"`
	Site           string `json:"site"`
	// LocationFilter is accepted as an alias for Site; Site wins when both are set.
	LocationFilter string `json:"location_filter"`
	Page           *int   `json:"page"`
	PageSize       *int   `json:"page_size"`
}

// toRequest applies the paging defaults to omitted fields.
func (b searchRequest) toRequest() search.Request {
	req := search.Request{
		Query:    b.Query,
		Site:     b.Site,
		Page:     1,
		PageSize: search.DefaultPageSize,
	}
	if req.Site == "" {
		req.Site = b.LocationFilter
	}
	if b.Page != nil {
		req.Page = *b.Page
	}
	if b.PageSize != nil {
		req.PageSize = *b.PageSize
	}
	return req
}

// sitesResponse is the JSON response for GET /api/sites.
type sitesResponse struct {
	// All is the sentinel site name meaning "no location filter".
	All string `json:"all"`
	// Sites is the closed site enumeration in canonical order.
	Sites []string `json:"sites"`
}
