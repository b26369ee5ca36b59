package vectordb

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantConfig holds connection parameters for a Qdrant vector store instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the Qdrant collection holding candidate vectors.
	Collection string

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantStore queries candidate vectors held in a Qdrant collection.
type QdrantStore struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration for this store.
	cfg *QdrantConfig
}

// NewQdrantStore connects to Qdrant and verifies that the target collection
// exists. The collection is provisioned elsewhere; a missing collection is a
// configuration error.
func NewQdrantStore(ctx context.Context, cfg *QdrantConfig) (*QdrantStore, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant: collection name must not be empty")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	store := &QdrantStore{client: client, cfg: cfg}
	if err := store.checkCollection(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return store, nil
}

// checkCollection fails when the configured collection does not exist.
func (s *QdrantStore) checkCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("qdrant: collection %q does not exist", s.cfg.Collection)
	}
	return nil
}

// Query returns the topK points nearest to vector, restricted by filter.
// Results keep the service's similarity order.
func (s *QdrantStore) Query(ctx context.Context, vector []float32, filter *Filter, topK int) ([]Match, error) {
	limit := uint64(topK) //nolint:gosec // topK is validated positive by callers
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.Collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         toQdrantFilter(filter),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search failed: %w", err)
	}
	return toMatches(results)
}

// Client exposes the gRPC client for readiness probes.
func (s *QdrantStore) Client() *qdrant.Client {
	return s.client
}

// Close closes the underlying Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// toQdrantFilter converts an "attribute ∈ set" predicate into a keyword
// match condition. Keyword matching on an array payload field succeeds when
// any element matches.
func toQdrantFilter(f *Filter) *qdrant.Filter {
	if f == nil || f.Field == "" || len(f.Values) == 0 {
		return nil
	}
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchKeywords(f.Field, f.Values...),
		},
	}
}

// toMatches validates and converts scored points. Any point without an
// integer ID or with a non-finite score makes the whole response malformed.
func toMatches(points []*qdrant.ScoredPoint) ([]Match, error) {
	matches := make([]Match, 0, len(points))
	for i, p := range points {
		if p == nil {
			return nil, fmt.Errorf("%w: point %d is nil", ErrMalformedResponse, i)
		}
		id, err := pointID(p.GetId())
		if err != nil {
			return nil, fmt.Errorf("%w: point %d: %v", ErrMalformedResponse, i, err)
		}
		score := float64(p.GetScore())
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, fmt.Errorf("%w: point %d has non-finite score", ErrMalformedResponse, i)
		}

		m := Match{ID: id, Score: score, Metadata: make(map[string]string, len(p.GetPayload()))}
		for k, v := range p.GetPayload() {
			m.Metadata[k] = valueString(v)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// pointID extracts a candidate ID from a numeric point ID.
func pointID(id *qdrant.PointId) (int64, error) {
	if id == nil {
		return 0, fmt.Errorf("missing id")
	}
	switch opt := id.GetPointIdOptions().(type) {
	case *qdrant.PointId_Num:
		if opt.Num > math.MaxInt64 {
			return 0, fmt.Errorf("id %d overflows int64", opt.Num)
		}
		return int64(opt.Num), nil
	case *qdrant.PointId_Uuid:
		return 0, fmt.Errorf("uuid id %q is not a candidate id", opt.Uuid)
	default:
		return 0, fmt.Errorf("missing id")
	}
}

// valueString renders a payload value as a string.
func valueString(v *qdrant.Value) string {
	switch k := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return k.StringValue
	case *qdrant.Value_IntegerValue:
		return strconv.FormatInt(k.IntegerValue, 10)
	case *qdrant.Value_DoubleValue:
		return strconv.FormatFloat(k.DoubleValue, 'f', -1, 64)
	case *qdrant.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	case *qdrant.Value_ListValue:
		parts := make([]string, 0, len(k.ListValue.GetValues()))
		for _, item := range k.ListValue.GetValues() {
			parts = append(parts, valueString(item))
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}
