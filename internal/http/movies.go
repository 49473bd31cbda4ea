package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yeymeap/MovieRate/internal/domain"
	"github.com/yeymeap/MovieRate/internal/reconcile"
	"github.com/yeymeap/MovieRate/internal/repository"
)

type movieResponse struct {
	ID            string    `json:"id"`
	ListID        string    `json:"listId"`
	TMDBID        string    `json:"tmdbId"`
	Title         string    `json:"title"`
	PosterURL     string    `json:"posterUrl"`
	Category      string    `json:"category"`
	ReleaseDate   string    `json:"releaseDate"`
	AddedBy       string    `json:"addedBy"`
	AddedAt       time.Time `json:"addedAt"`
	Rating        int       `json:"rating"`
	WatchedStatus string    `json:"watchedStatus"`
}

func toMovieResponse(movie *domain.Movie) movieResponse {
	return movieResponse{
		ID:            movie.ID,
		ListID:        movie.ListID,
		TMDBID:        movie.TMDBID,
		Title:         movie.Title,
		PosterURL:     movie.PosterURL,
		Category:      movie.Category,
		ReleaseDate:   movie.ReleaseDate,
		AddedBy:       movie.AddedBy,
		AddedAt:       movie.AddedAt,
		Rating:        movie.Rating,
		WatchedStatus: movie.WatchedStatus.String(),
	}
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if _, ok := s.authorizeList(w, r, listID); !ok {
		return
	}

	sortKey, err := reconcile.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown sort key")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	movies, err := s.engine.LoadMovies(ctx, listID, currentUserID(ctx))
	if err != nil {
		s.logger.Error("failed to load movies", "list_id", listID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}

	movies = reconcile.Project(movies, r.URL.Query().Get("q"), sortKey)

	payload := make([]movieResponse, 0, len(movies))
	for _, movie := range movies {
		payload = append(payload, toMovieResponse(movie))
	}
	s.respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleAddMovie(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if _, ok := s.authorizeList(w, r, listID); !ok {
		return
	}

	var req struct {
		TMDBID      string   `json:"tmdbId"`
		Title       string   `json:"title"`
		PosterURL   string   `json:"posterUrl"`
		Overview    string   `json:"overview"`
		ReleaseDate string   `json:"releaseDate"`
		Genres      []string `json:"genres"`
	}
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	req.TMDBID = strings.TrimSpace(req.TMDBID)
	req.Title = strings.TrimSpace(req.Title)
	if req.TMDBID == "" || req.Title == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "tmdbId and title are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	entry, err := s.repo.Movies.Insert(ctx, repository.MovieCreateParams{
		ListID:      listID,
		TMDBID:      req.TMDBID,
		Title:       req.Title,
		PosterURL:   req.PosterURL,
		Category:    strings.Join(req.Genres, ", "),
		ReleaseDate: req.ReleaseDate,
		AddedBy:     currentUserID(ctx),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.respondError(w, http.StatusConflict, "ALREADY_IN_LIST", fmt.Sprintf("%s is already in this list.", req.Title))
			return
		}
		s.logger.Error("failed to add movie", "list_id", listID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}

	w.Header().Set("Location", "/movies/"+entry.ID)
	s.respondJSON(w, http.StatusCreated, toMovieResponse(&domain.Movie{CatalogEntry: entry}))
}

// loadMovieForUpdate resolves a movie id and authorizes the acting user
// against the list the movie belongs to.
func (s *Server) loadMovieForUpdate(w http.ResponseWriter, r *http.Request) (domain.CatalogEntry, bool) {
	movieID := chi.URLParam(r, "movieID")

	entry, err := s.repo.Movies.Get(r.Context(), movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "MOVIE_NOT_FOUND", "Movie not found")
			return domain.CatalogEntry{}, false
		}
		s.logger.Error("failed to load movie", "movie_id", movieID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return domain.CatalogEntry{}, false
	}

	if _, ok := s.authorizeList(w, r, entry.ListID); !ok {
		return domain.CatalogEntry{}, false
	}
	return entry, true
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.loadMovieForUpdate(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.repo.Movies.Delete(ctx, entry.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "MOVIE_NOT_FOUND", "Movie not found")
			return
		}
		s.logger.Error("failed to delete movie", "movie_id", entry.ID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateRating(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.loadMovieForUpdate(w, r)
	if !ok {
		return
	}

	var req struct {
		Rating int `json:"rating"`
	}
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.engine.UpdateRating(ctx, entry.ID, currentUserID(ctx), req.Rating); err != nil {
		if errors.Is(err, reconcile.ErrInvalidRating) {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Rating must be between 0 and 10")
			return
		}
		s.logger.Error("failed to update rating", "movie_id", entry.ID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.loadMovieForUpdate(w, r)
	if !ok {
		return
	}

	var req struct {
		WatchedStatus string `json:"watchedStatus"`
	}
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	status, err := domain.ParseWatchedStatus(req.WatchedStatus)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unknown watched status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.engine.UpdateWatchedStatus(ctx, entry.ID, currentUserID(ctx), status); err != nil {
		s.logger.Error("failed to update watched status", "movie_id", entry.ID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
