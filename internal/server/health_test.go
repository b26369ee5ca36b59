package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/54b3r/hrai-go/internal/store"
)

// fakePinger is a test double for the Pinger interface.
type fakePinger struct {
	name string
	err  error
}

func (f *fakePinger) Name() string                 { return f.name }
func (f *fakePinger) Ping(_ context.Context) error { return f.err }

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil, nil, withPingers(&fakePinger{name: "qdrant", err: errors.New("down")}))
	w := doRequest(t, s.Handler(), http.MethodGet, "/api/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, liveness must not depend on pingers", w.Code)
	}
	var body healthResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Version == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestHandleReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pingers   []Pinger
		wantCode  int
		wantReady bool
		wantFails int
	}{
		{name: "no pingers", wantCode: http.StatusOK, wantReady: true},
		{
			name:      "all healthy",
			pingers:   []Pinger{&fakePinger{name: "qdrant"}, &fakePinger{name: "sqlite"}},
			wantCode:  http.StatusOK,
			wantReady: true,
		},
		{
			name:      "vector service down",
			pingers:   []Pinger{&fakePinger{name: "qdrant", err: errors.New("connection refused")}, &fakePinger{name: "sqlite"}},
			wantCode:  http.StatusServiceUnavailable,
			wantFails: 1,
		},
		{
			name:      "all down",
			pingers:   []Pinger{&fakePinger{name: "qdrant", err: errors.New("a")}, &fakePinger{name: "sqlite", err: errors.New("b")}},
			wantCode:  http.StatusServiceUnavailable,
			wantFails: 2,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s, _ := newTestServer(t, nil, nil, withPingers(tc.pingers...))
			w := doRequest(t, s.Handler(), http.MethodGet, "/api/ready", "")
			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantCode)
			}

			var body readyResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Ready != tc.wantReady {
				t.Errorf("ready = %v, want %v", body.Ready, tc.wantReady)
			}
			if len(body.Checks) != len(tc.pingers) {
				t.Fatalf("checks = %d, want %d (every pinger probed)", len(body.Checks), len(tc.pingers))
			}
			fails := 0
			for i, c := range body.Checks {
				if c.Name != tc.pingers[i].Name() {
					t.Errorf("check %d name = %q, want %q", i, c.Name, tc.pingers[i].Name())
				}
				if !c.OK {
					fails++
					if c.Error == "" {
						t.Errorf("failed check %q has no error text", c.Name)
					}
				}
			}
			if fails != tc.wantFails {
				t.Errorf("failed checks = %d, want %d", fails, tc.wantFails)
			}
		})
	}
}

func TestStorePinger(t *testing.T) {
	t.Parallel()

	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	p := NewStorePinger(db)
	if p.Name() != "sqlite" {
		t.Errorf("name = %q", p.Name())
	}
	if err := p.Ping(t.Context()); err != nil {
		t.Errorf("Ping() on open store: %v", err)
	}

	_ = db.Close()
	if err := p.Ping(t.Context()); err == nil {
		t.Error("Ping() on closed store: expected error")
	}
}
