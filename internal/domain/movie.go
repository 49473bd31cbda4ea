package domain

import "time"

// CatalogEntry is a movie shared by every member of a list. It is immutable
// once created except by deletion, and belongs to exactly one list.
type CatalogEntry struct {
	ID          string
	ListID      string
	TMDBID      string
	Title       string
	PosterURL   string
	Category    string
	ReleaseDate string
	AddedBy     string
	AddedAt     time.Time
}

// Candidate is one external search result offered for adding to a list.
type Candidate struct {
	TMDBID      string
	Title       string
	PosterURL   string
	Overview    string
	ReleaseDate string
	Genres      []string
}

// Movie is the reconciled, member-specific view of a catalog entry: the
// shared fields plus the acting user's rating and watched status. It is
// rebuilt on every load and is never the system of record.
//
// Mutations go through SetRating/SetWatchedStatus so a registered
// write-through handler can persist the change as it happens.
type Movie struct {
	CatalogEntry
	Rating        int
	WatchedStatus WatchedStatus

	onRating func(int)
	onStatus func(WatchedStatus)
}

// OnRatingChange registers the write-through handler invoked by SetRating.
func (m *Movie) OnRatingChange(fn func(rating int)) {
	m.onRating = fn
}

// OnStatusChange registers the write-through handler invoked by SetWatchedStatus.
func (m *Movie) OnStatusChange(fn func(status WatchedStatus)) {
	m.onStatus = fn
}

// SetRating updates the local view and synchronously invokes the registered
// write-through handler.
func (m *Movie) SetRating(rating int) {
	m.Rating = rating
	if m.onRating != nil {
		m.onRating(rating)
	}
}

// SetWatchedStatus updates the local view and synchronously invokes the
// registered write-through handler.
func (m *Movie) SetWatchedStatus(status WatchedStatus) {
	m.WatchedStatus = status
	if m.onStatus != nil {
		m.onStatus(status)
	}
}

// ToggleWatchedStatus advances the watched status one step through its cycle.
func (m *Movie) ToggleWatchedStatus() {
	m.SetWatchedStatus(m.WatchedStatus.Next())
}
