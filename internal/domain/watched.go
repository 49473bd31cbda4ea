package domain

import "fmt"

// WatchedStatus tracks one member's progress through a movie.
type WatchedStatus int

const (
	Unwatched WatchedStatus = iota
	Watching
	Watched
)

// String returns the persisted representation of the status.
func (s WatchedStatus) String() string {
	switch s {
	case Watching:
		return "Watching"
	case Watched:
		return "Watched"
	default:
		return "Unwatched"
	}
}

// Next advances the status through the Unwatched -> Watching -> Watched cycle.
func (s WatchedStatus) Next() WatchedStatus {
	switch s {
	case Unwatched:
		return Watching
	case Watching:
		return Watched
	default:
		return Unwatched
	}
}

// ParseWatchedStatus converts a stored status string back to a WatchedStatus.
func ParseWatchedStatus(value string) (WatchedStatus, error) {
	switch value {
	case "Unwatched":
		return Unwatched, nil
	case "Watching":
		return Watching, nil
	case "Watched":
		return Watched, nil
	default:
		return Unwatched, fmt.Errorf("unknown watched status %q", value)
	}
}
