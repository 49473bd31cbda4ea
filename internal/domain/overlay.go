package domain

// OverlayRecord is one member's private rating and watched status for one
// catalog entry. Records are created lazily on the first write; absence
// means defaults (rating 0, Unwatched).
type OverlayRecord struct {
	ID            string
	MovieID       string
	UserID        string
	Rating        int
	WatchedStatus WatchedStatus
}
