package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yeymeap/MovieRate/internal/domain"
)

const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// Client defines the contract for querying the external movie catalog.
type Client interface {
	Search(ctx context.Context, query string) ([]domain.Candidate, error)
}

// HTTPClient implements Client over HTTP against a TMDB-compatible API.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPClient constructs a new HTTP-backed catalog search client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Search returns ranked catalog candidates for a free-text query. A blank
// query yields no candidates without a network call.
func (c *HTTPClient) Search(ctx context.Context, query string) ([]domain.Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	rel := &url.URL{Path: c.baseURL.Path + "/search/movie"}
	q := rel.Query()
	q.Set("api_key", c.apiKey)
	q.Set("query", query)
	rel.RawQuery = q.Encode()
	endpoint := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("tmdb: unexpected status", "status", resp.StatusCode, "query", query)
		return nil, fmt.Errorf("tmdb: upstream returned %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode tmdb response: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(payload.Results))
	for _, result := range payload.Results {
		candidates = append(candidates, convertCandidate(result))
	}
	return candidates, nil
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	PosterPath  string `json:"poster_path"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"release_date"`
	GenreIDs    []int  `json:"genre_ids"`
}

// TMDB movie genre ids; the search payload carries ids only.
var genreNames = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

func convertCandidate(result searchResult) domain.Candidate {
	candidate := domain.Candidate{
		TMDBID:      strconv.Itoa(result.ID),
		Title:       result.Title,
		Overview:    result.Overview,
		ReleaseDate: result.ReleaseDate,
	}
	if result.PosterPath != "" {
		candidate.PosterURL = posterBaseURL + result.PosterPath
	}
	for _, id := range result.GenreIDs {
		if name, ok := genreNames[id]; ok {
			candidate.Genres = append(candidate.Genres, name)
		}
	}
	return candidate
}
