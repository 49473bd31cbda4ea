package domain

import "time"

// Member roles stored in the list membership map.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
)

// List is a shared watch-list. The owner is tracked separately from the
// membership map; membership operations never touch the owner entry.
type List struct {
	ID        string
	Name      string
	OwnerID   string
	Members   map[string]string // userID -> role
	CreatedAt time.Time
}

// Profile is a read-only identity record resolved for list members.
type Profile struct {
	ID          string
	Email       string
	DisplayName string
}

// Display returns the best available human-readable identity:
// display name, then email, then the raw id.
func (p Profile) Display() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Email != "" {
		return p.Email
	}
	return p.ID
}
