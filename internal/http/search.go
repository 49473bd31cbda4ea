package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/yeymeap/MovieRate/internal/domain"
	"github.com/yeymeap/MovieRate/internal/metrics"
)

type candidateResponse struct {
	TMDBID      string   `json:"tmdbId"`
	Title       string   `json:"title"`
	PosterURL   string   `json:"posterUrl"`
	Overview    string   `json:"overview"`
	ReleaseDate string   `json:"releaseDate"`
	Genres      []string `json:"genres"`
}

func toCandidateResponses(candidates []domain.Candidate) []candidateResponse {
	payload := make([]candidateResponse, 0, len(candidates))
	for _, c := range candidates {
		genres := c.Genres
		if genres == nil {
			genres = []string{}
		}
		payload = append(payload, candidateResponse{
			TMDBID:      c.TMDBID,
			Title:       c.Title,
			PosterURL:   c.PosterURL,
			Overview:    c.Overview,
			ReleaseDate: c.ReleaseDate,
			Genres:      genres,
		})
	}
	return payload
}

// handleSearch proxies the external catalog. An upstream failure is logged
// and answered with an empty result set so typing in the client never
// surfaces a hard error.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.cfg.TMDBTimeoutSecs)*time.Second)
	defer cancel()

	metrics.SearchesIssued.Inc()
	candidates, err := s.gateway.Search(ctx, query)
	if err != nil {
		s.logger.Warn("external search failed", "query", query, "error", err)
		candidates = nil
	}
	s.respondJSON(w, http.StatusOK, toCandidateResponses(candidates))
}
