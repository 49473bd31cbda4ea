package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeymeap/MovieRate/internal/domain"
)

// ProfilesRepository resolves member identities. Profiles are written by the
// auth provider; Create exists as a provisioning hook for dev and tests.
type ProfilesRepository struct {
	pool *pgxpool.Pool
}

// Get fetches a profile by id.
func (r *ProfilesRepository) Get(ctx context.Context, id string) (domain.Profile, error) {
	const query = `SELECT id, email, display_name FROM profiles WHERE id = $1`
	return scanProfileRow(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches a profile by email, case-insensitively.
func (r *ProfilesRepository) GetByEmail(ctx context.Context, email string) (domain.Profile, error) {
	const query = `SELECT id, email, display_name FROM profiles WHERE lower(email) = lower($1)`
	return scanProfileRow(r.pool.QueryRow(ctx, query, strings.TrimSpace(email)))
}

// GetByIDs batch-resolves profiles for a set of user ids in one query.
// Unknown ids are simply absent from the result.
func (r *ProfilesRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, email, display_name FROM profiles WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.DisplayName); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Create inserts a profile row.
func (r *ProfilesRepository) Create(ctx context.Context, email, displayName string) (domain.Profile, error) {
	const query = `
        INSERT INTO profiles (email, display_name)
        VALUES ($1, $2)
        RETURNING id, email, display_name
    `
	profile, err := scanProfileRow(r.pool.QueryRow(ctx, query, strings.TrimSpace(email), displayName))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Profile{}, ErrDuplicate
		}
		return domain.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

func scanProfileRow(row pgx.Row) (domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(&p.ID, &p.Email, &p.DisplayName); err != nil {
		if err == pgx.ErrNoRows {
			return domain.Profile{}, ErrNotFound
		}
		return domain.Profile{}, err
	}
	return p, nil
}
