package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/54b3r/hrai-go/internal/candidate"
	"github.com/54b3r/hrai-go/internal/logging"
	"github.com/54b3r/hrai-go/internal/search"
	"github.com/54b3r/hrai-go/internal/store"
)

// maxSearchBody caps the POST /api/search request body.
const maxSearchBody = 16 << 10

// handleSearch handles POST /api/search. Omitted page and page_size default
// to 1 and search.DefaultPageSize; explicit zeros and negatives are rejected
// by the engine.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var body searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBody)).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	page, err := s.engine.Search(r.Context(), body.toRequest())
	switch {
	case errors.Is(err, search.ErrInvalidRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		if r.Context().Err() != nil {
			log.Info("search: client went away", slog.Any("error", err))
			return
		}
		log.Error("search: failed", slog.Any("error", err))
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, page, log)
}

// handleSites handles GET /api/sites.
func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sitesResponse{
		All:   candidate.AllSites,
		Sites: candidate.SiteNames(),
	}, logging.FromContext(r.Context()))
}

// handleCV handles GET /api/cv/{id} by redirecting to the candidate's CV.
func (s *Server) handleCV(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid candidate id", http.StatusBadRequest)
		return
	}

	url, err := s.docs.DocumentURL(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "CV not found", http.StatusNotFound)
		return
	case err != nil:
		log.Error("cv: lookup failed", slog.Int64("candidate_id", id), slog.Any("error", err))
		http.Error(w, "CV lookup failed", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encode response", slog.Any("error", err))
	}
}
