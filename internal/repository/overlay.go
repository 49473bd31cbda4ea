package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeymeap/MovieRate/internal/domain"
)

// OverlayRepository stores per-user movie data: one member's private rating
// and watched status for one catalog entry, unique on (movie_id, user_id).
type OverlayRepository struct {
	pool *pgxpool.Pool
}

const overlayColumns = `id, movie_id, user_id, rating, watched_status`

// Get fetches the overlay record for one (movie, user) pair.
func (r *OverlayRepository) Get(ctx context.Context, movieID, userID string) (domain.OverlayRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM movie_user_data WHERE movie_id = $1 AND user_id = $2`, overlayColumns)
	record, err := scanOverlay(r.pool.QueryRow(ctx, query, movieID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.OverlayRecord{}, ErrNotFound
		}
		return domain.OverlayRecord{}, err
	}
	return record, nil
}

// GetForMovies batch-fetches one user's overlay records for a set of movies,
// keyed by movie id. Movies without a record are simply absent from the map.
func (r *OverlayRepository) GetForMovies(ctx context.Context, movieIDs []string, userID string) (map[string]domain.OverlayRecord, error) {
	records := make(map[string]domain.OverlayRecord, len(movieIDs))
	if len(movieIDs) == 0 {
		return records, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM movie_user_data WHERE movie_id = ANY($1) AND user_id = $2`, overlayColumns)
	rows, err := r.pool.Query(ctx, query, movieIDs, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanOverlay(rows)
		if err != nil {
			return nil, err
		}
		records[record.MovieID] = record
	}
	return records, rows.Err()
}

// UpsertRating sets only the rating field in a single atomic statement,
// creating the record with a default watched status when absent. A concurrent
// status write can never be clobbered because the sibling column is untouched.
func (r *OverlayRepository) UpsertRating(ctx context.Context, movieID, userID string, rating int) (domain.OverlayRecord, error) {
	query := fmt.Sprintf(`
        INSERT INTO movie_user_data (movie_id, user_id, rating)
        VALUES ($1, $2, $3)
        ON CONFLICT (movie_id, user_id)
        DO UPDATE SET rating = EXCLUDED.rating
        RETURNING %s
    `, overlayColumns)
	record, err := scanOverlay(r.pool.QueryRow(ctx, query, movieID, userID, rating))
	if err != nil {
		return domain.OverlayRecord{}, fmt.Errorf("upsert rating: %w", err)
	}
	return record, nil
}

// UpsertStatus is the watched-status counterpart of UpsertRating.
func (r *OverlayRepository) UpsertStatus(ctx context.Context, movieID, userID string, status domain.WatchedStatus) (domain.OverlayRecord, error) {
	query := fmt.Sprintf(`
        INSERT INTO movie_user_data (movie_id, user_id, watched_status)
        VALUES ($1, $2, $3)
        ON CONFLICT (movie_id, user_id)
        DO UPDATE SET watched_status = EXCLUDED.watched_status
        RETURNING %s
    `, overlayColumns)
	record, err := scanOverlay(r.pool.QueryRow(ctx, query, movieID, userID, status.String()))
	if err != nil {
		return domain.OverlayRecord{}, fmt.Errorf("upsert status: %w", err)
	}
	return record, nil
}

func scanOverlay(row pgx.Row) (domain.OverlayRecord, error) {
	var record domain.OverlayRecord
	var status string
	if err := row.Scan(&record.ID, &record.MovieID, &record.UserID, &record.Rating, &status); err != nil {
		return domain.OverlayRecord{}, err
	}
	parsed, err := domain.ParseWatchedStatus(status)
	if err != nil {
		return domain.OverlayRecord{}, err
	}
	record.WatchedStatus = parsed
	return record, nil
}
