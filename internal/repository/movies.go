package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeymeap/MovieRate/internal/domain"
)

// MoviesRepository provides persistence helpers for catalog entries, the
// movies shared by every member of a list.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id,
    list_id,
    tmdb_id,
    title,
    poster_url,
    category,
    release_date,
    added_by,
    added_at
`

// MovieCreateParams bundles the fields required to add a movie to a list.
type MovieCreateParams struct {
	ListID      string
	TMDBID      string
	Title       string
	PosterURL   string
	Category    string
	ReleaseDate string
	AddedBy     string
}

// Insert adds a movie to a list. A TMDB reference already present in the same
// list violates the (list_id, tmdb_id) constraint and returns ErrDuplicate.
func (r *MoviesRepository) Insert(ctx context.Context, params MovieCreateParams) (domain.CatalogEntry, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (list_id, tmdb_id, title, poster_url, category, release_date, added_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query,
		params.ListID,
		params.TMDBID,
		params.Title,
		params.PosterURL,
		params.Category,
		params.ReleaseDate,
		params.AddedBy,
	)
	entry, err := scanCatalogEntry(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.CatalogEntry{}, ErrDuplicate
		}
		return domain.CatalogEntry{}, fmt.Errorf("insert movie: %w", err)
	}
	return entry, nil
}

// ListByList fetches all catalog entries of a list in insertion order.
func (r *MoviesRepository) ListByList(ctx context.Context, listID string) ([]domain.CatalogEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE list_id = $1 ORDER BY added_at, id`, movieColumns)
	rows, err := r.pool.Query(ctx, query, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.CatalogEntry
	for rows.Next() {
		entry, err := scanCatalogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Get fetches a catalog entry by id.
func (r *MoviesRepository) Get(ctx context.Context, id string) (domain.CatalogEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	entry, err := scanCatalogEntry(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.CatalogEntry{}, ErrNotFound
		}
		return domain.CatalogEntry{}, err
	}
	return entry, nil
}

// ExistsByTMDBRef reports whether the list already contains the TMDB reference.
func (r *MoviesRepository) ExistsByTMDBRef(ctx context.Context, listID, tmdbID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM movies WHERE list_id = $1 AND tmdb_id = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, listID, tmdbID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Delete removes a catalog entry; overlay rows cascade in the schema.
func (r *MoviesRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCatalogEntry(row pgx.Row) (domain.CatalogEntry, error) {
	var entry domain.CatalogEntry
	err := row.Scan(
		&entry.ID,
		&entry.ListID,
		&entry.TMDBID,
		&entry.Title,
		&entry.PosterURL,
		&entry.Category,
		&entry.ReleaseDate,
		&entry.AddedBy,
		&entry.AddedAt,
	)
	return entry, err
}
