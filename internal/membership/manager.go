// Package membership manages who can see a shared list: sharing by email,
// removing members, and resolving member ids to display-ready identities.
package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yeymeap/MovieRate/internal/domain"
	"github.com/yeymeap/MovieRate/internal/repository"
)

var (
	// ErrNoSuchUser reports that no profile matches the shared-to email.
	ErrNoSuchUser = errors.New("membership: no such user")
	// ErrSelfShare rejects sharing a list with the acting user.
	ErrSelfShare = errors.New("membership: cannot share with yourself")
	// ErrAlreadyMember reports the target already has access to the list.
	ErrAlreadyMember = errors.New("membership: already a member")
	// ErrOwnerRemoval refuses removing the list owner through the member path.
	ErrOwnerRemoval = errors.New("membership: cannot remove the owner")
)

// ListStore is the slice of the list adapter the manager needs.
type ListStore interface {
	Get(ctx context.Context, id string) (domain.List, error)
	AddMember(ctx context.Context, listID, userID, role string) error
	RemoveMember(ctx context.Context, listID, userID string) error
}

// ProfileStore resolves identities.
type ProfileStore interface {
	GetByEmail(ctx context.Context, email string) (domain.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Profile, error)
}

// Member is a display-ready list member.
type Member struct {
	UserID  string
	Role    string
	Display string
}

// Manager enforces the sharing protocol over the list and profile stores.
type Manager struct {
	lists    ListStore
	profiles ProfileStore
	logger   *slog.Logger
}

// NewManager constructs a Manager.
func NewManager(lists ListStore, profiles ProfileStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{lists: lists, profiles: profiles, logger: logger}
}

// Share grants the user behind targetEmail editor access to the list.
// Unknown emails yield ErrNoSuchUser; sharing with yourself or with the owner
// is rejected without touching the membership map.
func (m *Manager) Share(ctx context.Context, listID, actingUserID, targetEmail string) error {
	profile, err := m.profiles.GetByEmail(ctx, targetEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoSuchUser
		}
		return fmt.Errorf("resolve email: %w", err)
	}
	if profile.ID == actingUserID {
		return ErrSelfShare
	}

	list, err := m.lists.Get(ctx, listID)
	if err != nil {
		return fmt.Errorf("load list: %w", err)
	}
	if profile.ID == list.OwnerID {
		return ErrAlreadyMember
	}
	if _, ok := list.Members[profile.ID]; ok {
		return ErrAlreadyMember
	}

	if err := m.lists.AddMember(ctx, listID, profile.ID, domain.RoleEditor); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	m.logger.Info("list shared", "list_id", listID, "target_user", profile.ID, "by", actingUserID)
	return nil
}

// RemoveMember deletes one member association. Handing it the owner's id is
// refused explicitly: the owner is tracked as ownerId, never as a removable
// member row.
func (m *Manager) RemoveMember(ctx context.Context, listID, userID string) error {
	list, err := m.lists.Get(ctx, listID)
	if err != nil {
		return fmt.Errorf("load list: %w", err)
	}
	if userID == list.OwnerID {
		return ErrOwnerRemoval
	}
	if err := m.lists.RemoveMember(ctx, listID, userID); err != nil {
		return err
	}
	m.logger.Info("member removed", "list_id", listID, "user_id", userID)
	return nil
}

// ListMembers resolves the owner plus all members to display identities in
// one batched profile lookup. A failed lookup degrades to raw ids rather than
// failing the call.
func (m *Manager) ListMembers(ctx context.Context, listID string) ([]Member, error) {
	list, err := m.lists.Get(ctx, listID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list.Members)+1)
	ids = append(ids, list.OwnerID)
	for userID := range list.Members {
		if userID != list.OwnerID {
			ids = append(ids, userID)
		}
	}

	byID := map[string]domain.Profile{}
	profiles, err := m.profiles.GetByIDs(ctx, ids)
	if err != nil {
		m.logger.Warn("profile lookup failed, falling back to raw ids", "list_id", listID, "error", err)
	} else {
		for _, p := range profiles {
			byID[p.ID] = p
		}
	}

	members := make([]Member, 0, len(ids))
	for _, userID := range ids {
		role := domain.RoleOwner
		if userID != list.OwnerID {
			role = list.Members[userID]
		}
		profile, ok := byID[userID]
		if !ok {
			profile = domain.Profile{ID: userID}
		}
		members = append(members, Member{
			UserID:  userID,
			Role:    role,
			Display: profile.Display(),
		})
	}
	return members, nil
}
