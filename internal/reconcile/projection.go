package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yeymeap/MovieRate/internal/domain"
)

// SortKey selects the ordering of a projected movie list.
type SortKey int

const (
	SortByAddedAt SortKey = iota // ascending, the default
	SortByTitle                  // ascending, lexicographic
	SortByRating                 // descending, stable
	SortByWatchedStatus          // ascending by enum order, stable
)

// ParseSortKey maps the wire names used by the list view to a SortKey.
func ParseSortKey(value string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "added":
		return SortByAddedAt, nil
	case "title":
		return SortByTitle, nil
	case "rating":
		return SortByRating, nil
	case "status":
		return SortByWatchedStatus, nil
	default:
		return SortByAddedAt, fmt.Errorf("unknown sort key %q", value)
	}
}

// Project returns the visible subset of movies: a case-insensitive substring
// title filter followed by a stable sort. It never mutates its input and has
// no side effects; callers re-invoke it whenever list, filter, or key change.
func Project(movies []*domain.Movie, filter string, key SortKey) []*domain.Movie {
	filter = strings.TrimSpace(filter)

	visible := make([]*domain.Movie, 0, len(movies))
	if filter == "" {
		visible = append(visible, movies...)
	} else {
		needle := strings.ToLower(filter)
		for _, movie := range movies {
			if strings.Contains(strings.ToLower(movie.Title), needle) {
				visible = append(visible, movie)
			}
		}
	}

	switch key {
	case SortByTitle:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].Title < visible[j].Title
		})
	case SortByRating:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].Rating > visible[j].Rating
		})
	case SortByWatchedStatus:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].WatchedStatus < visible[j].WatchedStatus
		})
	default:
		sort.SliceStable(visible, func(i, j int) bool {
			return visible[i].AddedAt.Before(visible[j].AddedAt)
		})
	}
	return visible
}
