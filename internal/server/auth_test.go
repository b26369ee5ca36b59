package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// okHandler is a trivial downstream handler.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		apiKey        string
		header        string
		want          int
		wantChallenge bool
	}{
		{name: "disabled", apiKey: "", header: "", want: http.StatusOK},
		{name: "missing header", apiKey: "secret", header: "", want: http.StatusUnauthorized, wantChallenge: true},
		{name: "wrong token", apiKey: "secret", header: "Bearer wrong", want: http.StatusUnauthorized, wantChallenge: true},
		{name: "prefix of key", apiKey: "secret", header: "Bearer secre", want: http.StatusUnauthorized, wantChallenge: true},
		{name: "basic scheme", apiKey: "secret", header: "Basic dXNlcjpwYXNz", want: http.StatusUnauthorized, wantChallenge: true},
		{name: "correct", apiKey: "secret", header: "Bearer secret", want: http.StatusOK},
		{name: "lowercase scheme", apiKey: "secret", header: "bearer secret", want: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/api/search", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			authMiddleware(tc.apiKey, okHandler).ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
			if got := w.Header().Get("WWW-Authenticate") != ""; got != tc.wantChallenge {
				t.Errorf("WWW-Authenticate present = %v, want %v", got, tc.wantChallenge)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header string
		want   string
	}{
		{"Bearer mytoken", "mytoken"},
		{"BEARER mytoken", "mytoken"},
		{"Bearer  spaced ", "spaced"},
		{"Basic dXNlcjpwYXNz", ""},
		{"", ""},
		{"Bearer", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := bearerToken(req); got != tc.want {
			t.Errorf("header=%q: got %q, want %q", tc.header, got, tc.want)
		}
	}
}
