// Package reconcile joins the shared movie catalog of a list with the acting
// user's private overlay data (rating, watched status) into a single Movie
// view, and writes edits back through to the overlay store.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yeymeap/MovieRate/internal/domain"
	"github.com/yeymeap/MovieRate/internal/metrics"
)

// ErrInvalidRating rejects ratings outside the 0..10 scale.
var ErrInvalidRating = errors.New("reconcile: rating must be between 0 and 10")

// CatalogStore is the slice of the catalog adapter the engine needs.
type CatalogStore interface {
	ListByList(ctx context.Context, listID string) ([]domain.CatalogEntry, error)
}

// OverlayStore is the slice of the per-user data adapter the engine needs.
// The upserts set only the named field so sibling fields written concurrently
// are never clobbered.
type OverlayStore interface {
	GetForMovies(ctx context.Context, movieIDs []string, userID string) (map[string]domain.OverlayRecord, error)
	UpsertRating(ctx context.Context, movieID, userID string, rating int) (domain.OverlayRecord, error)
	UpsertStatus(ctx context.Context, movieID, userID string, status domain.WatchedStatus) (domain.OverlayRecord, error)
}

// Engine performs the catalog/overlay join and the write-through paths.
type Engine struct {
	catalog      CatalogStore
	overlay      OverlayStore
	logger       *slog.Logger
	notify       func()
	writeTimeout time.Duration
}

// Option customizes an Engine.
type Option func(*Engine)

// WithWriteTimeout bounds detached write-through calls.
func WithWriteTimeout(d time.Duration) Option {
	return func(e *Engine) { e.writeTimeout = d }
}

// NewEngine constructs an Engine over the given store adapters.
func NewEngine(catalog CatalogStore, overlay OverlayStore, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		catalog:      catalog,
		overlay:      overlay,
		logger:       logger,
		writeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnChange registers a callback fired after every successful rating/status
// mutation, so dependent views can recompute. The callback is fire-and-forget;
// a panic inside it is recovered and logged, never propagated to the caller.
func (e *Engine) OnChange(fn func()) {
	e.notify = fn
}

// LoadMovies joins the list's catalog entries with the acting user's overlay
// records. Movies without a record get defaults (rating 0, Unwatched) and no
// record is persisted for them. An overlay fetch failure degrades every movie
// to defaults rather than failing the load.
//
// The join is eventually consistent per call: no transaction spans the two
// fetches, so a record created in between is not guaranteed visible.
func (e *Engine) LoadMovies(ctx context.Context, listID, userID string) ([]*domain.Movie, error) {
	entries, err := e.catalog.ListByList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
	}

	overlays, err := e.overlay.GetForMovies(ctx, ids, userID)
	if err != nil {
		e.logger.Warn("overlay fetch failed, serving defaults", "list_id", listID, "user_id", userID, "error", err)
		overlays = nil
	}

	movies := make([]*domain.Movie, 0, len(entries))
	for _, entry := range entries {
		movie := &domain.Movie{CatalogEntry: entry}
		if record, ok := overlays[entry.ID]; ok {
			movie.Rating = record.Rating
			movie.WatchedStatus = record.WatchedStatus
		}
		e.Attach(movie, userID)
		movies = append(movies, movie)
	}
	return movies, nil
}

// Attach wires a movie's mutation callbacks to the write-through paths for
// the given user. Writes run detached from any request context so a finished
// request cannot cancel them mid-flight.
func (e *Engine) Attach(movie *domain.Movie, userID string) *domain.Movie {
	movie.OnRatingChange(func(rating int) {
		ctx, cancel := context.WithTimeout(context.Background(), e.writeTimeout)
		defer cancel()
		_ = e.UpdateRating(ctx, movie.ID, userID, rating)
	})
	movie.OnStatusChange(func(status domain.WatchedStatus) {
		ctx, cancel := context.WithTimeout(context.Background(), e.writeTimeout)
		defer cancel()
		_ = e.UpdateWatchedStatus(ctx, movie.ID, userID, status)
	})
	return movie
}

// UpdateRating persists a rating for (movie, user). Store failures are logged
// and swallowed: the caller's in-memory view already reflects the edit, and
// the next load reconciles. Only validation errors are returned.
func (e *Engine) UpdateRating(ctx context.Context, movieID, userID string, rating int) error {
	if rating < 0 || rating > 10 {
		return ErrInvalidRating
	}
	if _, err := e.overlay.UpsertRating(ctx, movieID, userID, rating); err != nil {
		metrics.OverlayWriteFailures.Inc()
		e.logger.Warn("rating write-through failed", "movie_id", movieID, "user_id", userID, "error", err)
		return nil
	}
	e.fireChanged()
	return nil
}

// UpdateWatchedStatus persists a watched status for (movie, user) with the
// same failure policy as UpdateRating.
func (e *Engine) UpdateWatchedStatus(ctx context.Context, movieID, userID string, status domain.WatchedStatus) error {
	if _, err := e.overlay.UpsertStatus(ctx, movieID, userID, status); err != nil {
		metrics.OverlayWriteFailures.Inc()
		e.logger.Warn("status write-through failed", "movie_id", movieID, "user_id", userID, "error", err)
		return nil
	}
	e.fireChanged()
	return nil
}

func (e *Engine) fireChanged() {
	fn := e.notify
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("change callback panicked", "panic", r)
		}
	}()
	fn()
}
