package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yeymeap/MovieRate/internal/domain"
	"github.com/yeymeap/MovieRate/pkg/logging"
)

// blockingGateway hands each Search call a per-query release channel so tests
// control the order in which responses arrive.
type blockingGateway struct {
	mu           sync.Mutex
	releases     map[string]chan []domain.Candidate
	calls        chan string
	ignoreCancel bool
	lastCtx      context.Context
}

func newBlockingGateway() *blockingGateway {
	return &blockingGateway{
		releases: map[string]chan []domain.Candidate{},
		calls:    make(chan string, 16),
	}
}

func (g *blockingGateway) release(query string) chan []domain.Candidate {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.releases[query]; !ok {
		g.releases[query] = make(chan []domain.Candidate, 1)
	}
	return g.releases[query]
}

func (g *blockingGateway) Search(ctx context.Context, query string) ([]domain.Candidate, error) {
	g.mu.Lock()
	g.lastCtx = ctx
	g.mu.Unlock()
	g.calls <- query
	ch := g.release(query)
	if g.ignoreCancel {
		return <-ch, nil
	}
	select {
	case results := <-ch:
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *blockingGateway) lastContext() context.Context {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastCtx == nil {
		return context.Background()
	}
	return g.lastCtx
}

func candidates(ids ...string) []domain.Candidate {
	out := make([]domain.Candidate, len(ids))
	for i, id := range ids {
		out[i] = domain.Candidate{TMDBID: id, Title: "Movie " + id}
	}
	return out
}

func waitCall(t *testing.T, g *blockingGateway) string {
	t.Helper()
	select {
	case query := <-g.calls:
		return query
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for gateway call")
		return ""
	}
}

func eventually(t *testing.T, condition func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func firstID(results []domain.Candidate) string {
	if len(results) == 0 {
		return ""
	}
	return results[0].TMDBID
}

func TestLatestGenerationWins(t *testing.T) {
	gateway := newBlockingGateway()
	gateway.ignoreCancel = true // superseded calls keep running and answer late
	c := NewController(gateway, nil, nil, logging.Discard(), WithDebounce(time.Millisecond))
	defer c.Close()

	c.SetQuery("q1")
	waitCall(t, gateway)
	c.SetQuery("q2")
	waitCall(t, gateway)
	c.SetQuery("q3")
	waitCall(t, gateway)

	// t3 answers first, then the stale t1 and t2 responses trickle in.
	gateway.release("q3") <- candidates("3")
	eventually(t, func() bool { return firstID(c.Results()) == "3" }, "q3 results never applied")

	gateway.release("q1") <- candidates("1")
	gateway.release("q2") <- candidates("2")
	time.Sleep(50 * time.Millisecond)

	if got := firstID(c.Results()); got != "3" {
		t.Fatalf("stale response overwrote visible results: got %s, want 3", got)
	}
	if c.Searching() {
		t.Fatal("controller still searching after settled result")
	}
}

func TestKeystrokeReArmsDebounce(t *testing.T) {
	gateway := newBlockingGateway()
	c := NewController(gateway, nil, nil, logging.Discard(), WithDebounce(100*time.Millisecond))
	defer c.Close()

	c.SetQuery("a")
	time.Sleep(50 * time.Millisecond)
	c.SetQuery("ab") // cancels the armed timer, restarts the interval

	select {
	case query := <-gateway.calls:
		t.Fatalf("search fired before debounce elapsed: %q", query)
	case <-time.After(70 * time.Millisecond):
	}

	if got := waitCall(t, gateway); got != "ab" {
		t.Fatalf("issued query = %q, want ab", got)
	}
	gateway.release("ab") <- candidates("1")
	eventually(t, func() bool { return firstID(c.Results()) == "1" }, "results never applied")

	select {
	case query := <-gateway.calls:
		t.Fatalf("superseded query %q was still issued", query)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBlankQueryShortCircuits(t *testing.T) {
	gateway := newBlockingGateway()
	c := NewController(gateway, nil, nil, logging.Discard(), WithDebounce(time.Millisecond))
	defer c.Close()

	c.SetQuery("alien")
	waitCall(t, gateway)
	gateway.release("alien") <- candidates("1")
	eventually(t, func() bool { return len(c.Results()) == 1 }, "results never applied")

	c.SetQuery("   ")
	if c.State() != StateIdle {
		t.Fatalf("state = %v, want Idle", c.State())
	}
	if c.Results() != nil || c.ShowResults() {
		t.Fatal("blank query must clear and hide results")
	}

	select {
	case query := <-gateway.calls:
		t.Fatalf("blank query issued a search: %q", query)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestSelectDuplicateShowsTransientNotice(t *testing.T) {
	gateway := newBlockingGateway()
	added := 0
	add := func(ctx context.Context, cand domain.Candidate) (*domain.Movie, error) {
		added++
		return &domain.Movie{CatalogEntry: domain.CatalogEntry{TMDBID: cand.TMDBID}}, nil
	}
	exists := func(tmdbID string) bool { return tmdbID == "dup" }
	c := NewController(gateway, exists, add, logging.Discard(),
		WithDebounce(time.Millisecond),
		WithNoticeTTL(40*time.Millisecond),
	)
	defer c.Close()

	movie, err := c.Select(context.Background(), domain.Candidate{TMDBID: "dup", Title: "Alien"})
	if !errors.Is(err, ErrAlreadyInList) {
		t.Fatalf("err = %v, want ErrAlreadyInList", err)
	}
	if movie != nil {
		t.Fatal("duplicate selection must not produce a movie")
	}
	if added != 0 {
		t.Fatal("duplicate selection must not insert")
	}
	if c.Notice() == "" {
		t.Fatal("expected an already-in-list notice")
	}
	eventually(t, func() bool { return c.Notice() == "" }, "notice never auto-cleared")
}

func TestSelectNewCandidateInsertsOnce(t *testing.T) {
	gateway := newBlockingGateway()
	var got []domain.Candidate
	add := func(ctx context.Context, cand domain.Candidate) (*domain.Movie, error) {
		got = append(got, cand)
		return &domain.Movie{CatalogEntry: domain.CatalogEntry{TMDBID: cand.TMDBID}}, nil
	}
	c := NewController(gateway, func(string) bool { return false }, add, logging.Discard(),
		WithDebounce(time.Millisecond))
	defer c.Close()

	c.SetQuery("alien")
	waitCall(t, gateway)
	gateway.release("alien") <- candidates("42")
	eventually(t, func() bool { return len(c.Results()) == 1 }, "results never applied")

	movie, err := c.Select(context.Background(), domain.Candidate{TMDBID: "42", Title: "Alien"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if movie == nil || movie.TMDBID != "42" {
		t.Fatalf("movie = %+v, want TMDBID 42", movie)
	}
	if len(got) != 1 {
		t.Fatalf("inserts = %d, want exactly 1", len(got))
	}
	if c.Results() != nil || c.ShowResults() {
		t.Fatal("selection must clear and hide results")
	}
	if c.State() != StateIdle {
		t.Fatalf("state = %v, want Idle", c.State())
	}
}

func TestOnUpdateFires(t *testing.T) {
	gateway := newBlockingGateway()
	var mu sync.Mutex
	updates := 0
	c := NewController(gateway, nil, nil, logging.Discard(),
		WithDebounce(time.Millisecond),
		WithOnUpdate(func() {
			mu.Lock()
			updates++
			mu.Unlock()
		}),
	)
	defer c.Close()

	c.SetQuery("alien")
	waitCall(t, gateway)
	gateway.release("alien") <- candidates("1")
	eventually(t, func() bool { return len(c.Results()) == 1 }, "results never applied")

	mu.Lock()
	defer mu.Unlock()
	if updates == 0 {
		t.Fatal("update callback never fired")
	}
}

func TestSettledSearchReleasesRequestContext(t *testing.T) {
	gateway := newBlockingGateway()
	c := NewController(gateway, nil, nil, logging.Discard(), WithDebounce(time.Millisecond))
	defer c.Close()

	c.SetQuery("alien")
	waitCall(t, gateway)
	gateway.release("alien") <- candidates("1")
	eventually(t, func() bool { return firstID(c.Results()) == "1" }, "results never applied")

	eventually(t, func() bool { return gateway.lastContext().Err() != nil },
		"request context still live after the response settled")
}

func TestSelectWithoutAddHookResolvesWithoutInsert(t *testing.T) {
	gateway := newBlockingGateway()
	c := NewController(gateway, nil, nil, logging.Discard())
	defer c.Close()

	movie, err := c.Select(context.Background(), domain.Candidate{TMDBID: "42", Title: "Movie 42"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if movie != nil {
		t.Fatalf("movie = %+v, want nil without an add hook", movie)
	}
	if c.ShowResults() || c.State() != StateIdle {
		t.Fatal("selection must still close the results panel")
	}
}
