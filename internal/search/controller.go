// Package search owns the type-to-search flow: debouncing keystrokes,
// cancelling superseded external calls, and turning a selected candidate into
// a catalog insert. Stale responses are discarded by generation, so a slow
// network reply can never overwrite a newer one.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yeymeap/MovieRate/internal/domain"
	"github.com/yeymeap/MovieRate/internal/metrics"
)

// ErrAlreadyInList reports that the selected candidate's external reference
// is already present in the loaded list.
var ErrAlreadyInList = errors.New("search: movie already in list")

// State names the controller's position in the type-to-search flow.
type State int

const (
	StateIdle State = iota
	StatePending
	StateInFlight
	StateSettled
)

// Gateway is the external catalog search collaborator.
type Gateway interface {
	Search(ctx context.Context, query string) ([]domain.Candidate, error)
}

// AddFunc inserts a selected candidate into the list and returns the
// reconciled movie with its write-through callbacks attached.
type AddFunc func(ctx context.Context, candidate domain.Candidate) (*domain.Movie, error)

// ExistsFunc reports whether the loaded movie set already contains the
// external reference.
type ExistsFunc func(tmdbID string) bool

// Controller drives one list view's incremental search.
type Controller struct {
	gateway Gateway
	add     AddFunc
	exists  ExistsFunc
	logger  *slog.Logger

	debounce  time.Duration
	noticeTTL time.Duration
	onUpdate  func()

	mu             sync.Mutex
	gen            uint64
	state          State
	timer          *time.Timer
	cancelInFlight context.CancelFunc
	results        []domain.Candidate
	showResults    bool
	searching      bool
	notice         string
	noticeGen      uint64
	noticeTimer    *time.Timer
}

// Option customizes a Controller.
type Option func(*Controller)

// WithDebounce overrides the 400ms default debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// WithNoticeTTL overrides how long transient notices stay visible.
func WithNoticeTTL(d time.Duration) Option {
	return func(c *Controller) { c.noticeTTL = d }
}

// WithOnUpdate registers a callback fired after every visible-state change.
// Register before the first SetQuery; the callback must not call back into
// the controller.
func WithOnUpdate(fn func()) Option {
	return func(c *Controller) { c.onUpdate = fn }
}

// NewController wires a controller to its collaborators. exists and add may
// be nil when the embedder only needs the search flow; Select then still
// closes the results panel but resolves without a duplicate check or insert.
func NewController(gateway Gateway, exists ExistsFunc, add AddFunc, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		gateway:   gateway,
		add:       add,
		exists:    exists,
		logger:    logger,
		debounce:  400 * time.Millisecond,
		noticeTTL: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetQuery feeds one keystroke's worth of query text. Any pending timer or
// in-flight call is superseded; a blank query short-circuits straight to Idle
// with the results panel hidden.
func (c *Controller) SetQuery(query string) {
	c.mu.Lock()
	c.supersedeLocked()

	if strings.TrimSpace(query) == "" {
		c.state = StateIdle
		c.results = nil
		c.showResults = false
		c.searching = false
		c.mu.Unlock()
		c.notifyUpdate()
		return
	}

	gen := c.gen
	c.state = StatePending
	c.timer = time.AfterFunc(c.debounce, func() {
		c.fire(gen, query)
	})
	c.mu.Unlock()
	c.notifyUpdate()
}

// fire runs when the debounce timer elapses without being superseded.
func (c *Controller) fire(gen uint64, query string) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state = StateInFlight
	c.searching = true
	c.showResults = true
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelInFlight = cancel
	c.mu.Unlock()
	c.notifyUpdate()

	metrics.SearchesIssued.Inc()
	results, err := c.gateway.Search(ctx, query)
	c.apply(gen, query, results, err)
}

// apply delivers a search response. Only the latest generation ever reaches
// visible state; anything else is discarded silently.
func (c *Controller) apply(gen uint64, query string, results []domain.Candidate, err error) {
	c.mu.Lock()
	if gen != c.gen {
		metrics.SearchesDiscardedStale.Inc()
		c.mu.Unlock()
		return
	}
	c.state = StateSettled
	c.searching = false
	if c.cancelInFlight != nil {
		c.cancelInFlight()
		c.cancelInFlight = nil
	}
	if err != nil {
		c.logger.Warn("search failed", "query", query, "error", err)
		c.results = nil
	} else {
		c.results = results
	}
	c.mu.Unlock()
	c.notifyUpdate()
}

// Select resolves a chosen candidate: if its external reference is already in
// the loaded list it surfaces a transient notice and inserts nothing,
// otherwise it inserts exactly one catalog entry via the add hook. Either way
// the results panel closes and any in-flight search is superseded.
func (c *Controller) Select(ctx context.Context, candidate domain.Candidate) (*domain.Movie, error) {
	c.mu.Lock()
	c.supersedeLocked()
	c.state = StateIdle
	c.results = nil
	c.showResults = false
	c.searching = false

	if c.exists != nil && c.exists(candidate.TMDBID) {
		c.setNoticeLocked(fmt.Sprintf("%s is already in this list.", candidate.Title))
		c.mu.Unlock()
		c.notifyUpdate()
		return nil, ErrAlreadyInList
	}
	c.mu.Unlock()
	c.notifyUpdate()

	if c.add == nil {
		return nil, nil
	}
	return c.add(ctx, candidate)
}

// Close stops timers and cancels any in-flight call.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supersedeLocked()
	if c.noticeTimer != nil {
		c.noticeTimer.Stop()
		c.noticeTimer = nil
	}
	c.state = StateIdle
}

// Results returns the currently visible candidates.
func (c *Controller) Results() []domain.Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

// ShowResults reports whether the results panel is open.
func (c *Controller) ShowResults() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showResults
}

// Searching reports whether a call is in flight.
func (c *Controller) Searching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searching
}

// Notice returns the current transient notice, empty when none.
func (c *Controller) Notice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// supersedeLocked bumps the generation so outstanding timers and responses
// become stale, and frees the in-flight network call.
func (c *Controller) supersedeLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancelInFlight != nil {
		c.cancelInFlight()
		c.cancelInFlight = nil
	}
}

// setNoticeLocked shows a transient notice that auto-clears after the TTL.
// The clear is generation-guarded so it never wipes a newer notice.
func (c *Controller) setNoticeLocked(message string) {
	if c.noticeTimer != nil {
		c.noticeTimer.Stop()
	}
	c.notice = message
	c.noticeGen++
	gen := c.noticeGen
	c.noticeTimer = time.AfterFunc(c.noticeTTL, func() {
		c.clearNotice(gen)
	})
}

func (c *Controller) clearNotice(gen uint64) {
	c.mu.Lock()
	if gen != c.noticeGen {
		c.mu.Unlock()
		return
	}
	c.notice = ""
	c.noticeTimer = nil
	c.mu.Unlock()
	c.notifyUpdate()
}

func (c *Controller) notifyUpdate() {
	if c.onUpdate != nil {
		c.onUpdate()
	}
}
