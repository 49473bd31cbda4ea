package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yeymeap/MovieRate/internal/domain"
)

// ListsRepository provides persistence helpers for watch-lists and their
// membership rows.
type ListsRepository struct {
	pool *pgxpool.Pool
}

// ListCreateParams bundles the fields required to create a list.
type ListCreateParams struct {
	Name    string
	OwnerID string
}

// Create inserts a new list row and returns the stored entity.
func (r *ListsRepository) Create(ctx context.Context, params ListCreateParams) (domain.List, error) {
	const query = `
        INSERT INTO lists (name, owner_id)
        VALUES ($1, $2)
        RETURNING id, name, owner_id, created_at
    `
	var list domain.List
	err := r.pool.QueryRow(ctx, query, params.Name, params.OwnerID).Scan(
		&list.ID,
		&list.Name,
		&list.OwnerID,
		&list.CreatedAt,
	)
	if err != nil {
		return domain.List{}, fmt.Errorf("create list: %w", err)
	}
	list.Members = map[string]string{}
	return list, nil
}

// Get fetches a list together with its membership map.
func (r *ListsRepository) Get(ctx context.Context, id string) (domain.List, error) {
	const query = `SELECT id, name, owner_id, created_at FROM lists WHERE id = $1`
	var list domain.List
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&list.ID,
		&list.Name,
		&list.OwnerID,
		&list.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.List{}, ErrNotFound
		}
		return domain.List{}, err
	}

	members, err := r.Members(ctx, id)
	if err != nil {
		return domain.List{}, err
	}
	list.Members = members
	return list, nil
}

// ListForUser returns every list the user owns or is a member of, oldest first.
func (r *ListsRepository) ListForUser(ctx context.Context, userID string) ([]domain.List, error) {
	const query = `
        SELECT DISTINCT l.id, l.name, l.owner_id, l.created_at
        FROM lists l
        LEFT JOIN list_members m ON m.list_id = l.id
        WHERE l.owner_id = $1 OR m.user_id = $1
        ORDER BY l.created_at, l.id
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []domain.List
	var ids []string
	for rows.Next() {
		var list domain.List
		if err := rows.Scan(&list.ID, &list.Name, &list.OwnerID, &list.CreatedAt); err != nil {
			return nil, err
		}
		list.Members = map[string]string{}
		lists = append(lists, list)
		ids = append(ids, list.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return lists, nil
	}

	// One batched membership query for all lists instead of a query per list.
	const memberQuery = `SELECT list_id, user_id, role FROM list_members WHERE list_id = ANY($1)`
	memberRows, err := r.pool.Query(ctx, memberQuery, ids)
	if err != nil {
		return nil, err
	}
	defer memberRows.Close()

	byList := make(map[string]map[string]string, len(lists))
	for memberRows.Next() {
		var listID, userID, role string
		if err := memberRows.Scan(&listID, &userID, &role); err != nil {
			return nil, err
		}
		if byList[listID] == nil {
			byList[listID] = map[string]string{}
		}
		byList[listID][userID] = role
	}
	if err := memberRows.Err(); err != nil {
		return nil, err
	}
	for i := range lists {
		if members, ok := byList[lists[i].ID]; ok {
			lists[i].Members = members
		}
	}
	return lists, nil
}

// Delete removes a list; membership and catalog rows cascade in the schema.
func (r *ListsRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMember upserts a membership row, refreshing the role if it already exists.
func (r *ListsRepository) AddMember(ctx context.Context, listID, userID, role string) error {
	const query = `
        INSERT INTO list_members (list_id, user_id, role)
        VALUES ($1, $2, $3)
        ON CONFLICT (list_id, user_id)
        DO UPDATE SET role = EXCLUDED.role
    `
	if _, err := r.pool.Exec(ctx, query, listID, userID, role); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// RemoveMember deletes exactly one membership association. The owner guard
// lives in the membership manager; this only ever touches list_members rows.
func (r *ListsRepository) RemoveMember(ctx context.Context, listID, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM list_members WHERE list_id = $1 AND user_id = $2`, listID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Members returns the membership map (userID -> role) for a list.
func (r *ListsRepository) Members(ctx context.Context, listID string) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, role FROM list_members WHERE list_id = $1`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := map[string]string{}
	for rows.Next() {
		var userID, role string
		if err := rows.Scan(&userID, &role); err != nil {
			return nil, err
		}
		members[userID] = role
	}
	return members, rows.Err()
}
