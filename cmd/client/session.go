package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yeymeap/MovieRate/internal/config"
	"github.com/yeymeap/MovieRate/internal/domain"
	"github.com/yeymeap/MovieRate/internal/repository"
	"github.com/yeymeap/MovieRate/internal/search"
)

// movieSource is the slice of the reconcile engine the session needs.
type movieSource interface {
	LoadMovies(ctx context.Context, listID, userID string) ([]*domain.Movie, error)
	Attach(movie *domain.Movie, userID string) *domain.Movie
}

// catalogInserter is the slice of the movies repository the session needs.
type catalogInserter interface {
	Insert(ctx context.Context, params repository.MovieCreateParams) (domain.CatalogEntry, error)
}

// session drives one list's type-to-search flow from a line-based prompt:
// a plain line is query text, "add N" selects the Nth visible result, and
// "quit" ends the session.
type session struct {
	controller *search.Controller
	source     movieSource
	catalog    catalogInserter
	listID     string
	userID     string

	mu     sync.Mutex
	movies []*domain.Movie
	out    io.Writer
}

// newSession loads the list once and wires a search controller with the
// debounce interval and notice TTL from config.
func newSession(ctx context.Context, source movieSource, catalog catalogInserter, gateway search.Gateway, cfg config.Config, listID, userID string, logger *slog.Logger, out io.Writer) (*session, error) {
	movies, err := source.LoadMovies(ctx, listID, userID)
	if err != nil {
		return nil, fmt.Errorf("load list: %w", err)
	}

	s := &session{
		source:  source,
		catalog: catalog,
		listID:  listID,
		userID:  userID,
		movies:  movies,
		out:     out,
	}
	s.controller = search.NewController(gateway, s.exists, s.add, logger,
		search.WithDebounce(time.Duration(cfg.SearchDebounceMS)*time.Millisecond),
		search.WithNoticeTTL(time.Duration(cfg.NoticeClearSecs)*time.Second),
		search.WithOnUpdate(s.render),
	)
	return s, nil
}

func (s *session) exists(tmdbID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, movie := range s.movies {
		if movie.TMDBID == tmdbID {
			return true
		}
	}
	return false
}

func (s *session) add(ctx context.Context, candidate domain.Candidate) (*domain.Movie, error) {
	entry, err := s.catalog.Insert(ctx, repository.MovieCreateParams{
		ListID:      s.listID,
		TMDBID:      candidate.TMDBID,
		Title:       candidate.Title,
		PosterURL:   candidate.PosterURL,
		Category:    strings.Join(candidate.Genres, ", "),
		ReleaseDate: candidate.ReleaseDate,
		AddedBy:     s.userID,
	})
	if err != nil {
		return nil, err
	}
	movie := s.source.Attach(&domain.Movie{CatalogEntry: entry}, s.userID)
	s.mu.Lock()
	s.movies = append(s.movies, movie)
	s.mu.Unlock()
	return movie, nil
}

// run consumes lines until EOF or quit.
func (s *session) run(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if !s.handleLine(scanner.Text()) {
			return
		}
	}
}

func (s *session) handleLine(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "quit", line == "exit":
		return false
	case strings.HasPrefix(line, "add "):
		s.selectResult(strings.TrimSpace(strings.TrimPrefix(line, "add ")))
		return true
	default:
		s.controller.SetQuery(line)
		return true
	}
}

func (s *session) selectResult(arg string) {
	idx, err := strconv.Atoi(arg)
	results := s.controller.Results()
	if err != nil || idx < 1 || idx > len(results) {
		s.printf("usage: add <visible result number>\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	movie, err := s.controller.Select(ctx, results[idx-1])
	switch {
	case errors.Is(err, search.ErrAlreadyInList):
		// the controller's notice already reported it
	case err != nil:
		s.printf("add failed: %v\n", err)
	default:
		s.printf("added %s\n", movie.Title)
	}
}

// render prints the controller's visible state after each change.
func (s *session) render() {
	if notice := s.controller.Notice(); notice != "" {
		s.printf("%s\n", notice)
	}
	if s.controller.Searching() || !s.controller.ShowResults() {
		return
	}
	for i, candidate := range s.controller.Results() {
		s.printf("%2d. %s (%s)\n", i+1, candidate.Title, candidate.ReleaseDate)
	}
}

// printf serializes output; render runs on timer goroutines.
func (s *session) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *session) close() {
	s.controller.Close()
}
