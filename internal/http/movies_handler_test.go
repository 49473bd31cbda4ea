package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

func addTestMovie(t *testing.T, srv *Server, token, listID, tmdbID, title string) movieResponse {
	t.Helper()
	body := fmt.Sprintf(`{"tmdbId":%q,"title":%q,"genres":["Horror","Thriller"]}`, tmdbID, title)
	rec := doRequest(srv, http.MethodPost, "/lists/"+listID+"/movies", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add movie status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var movie movieResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &movie); err != nil {
		t.Fatalf("decode movie: %v", err)
	}
	return movie
}

func TestAddMovieDuplicateConflicts(t *testing.T) {
	srv := buildTestServer(t, fakeTMDB{})
	owner, token := seedUser(t, srv, "owner@example.com", "")
	list := seedList(t, srv, "Horror Night", owner.ID)

	movie := addTestMovie(t, srv, token, list.ID, "603", "The Matrix")
	if movie.Category != "Horror, Thriller" {
		t.Fatalf("category = %q", movie.Category)
	}
	if movie.WatchedStatus != "Unwatched" || movie.Rating != 0 {
		t.Fatalf("new movie defaults = %+v", movie)
	}

	rec := doRequest(srv, http.MethodPost, "/lists/"+list.ID+"/movies", token,
		`{"tmdbId":"603","title":"The Matrix"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}
	var errResp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != "ALREADY_IN_LIST" {
		t.Fatalf("error code = %q, want ALREADY_IN_LIST", errResp.Code)
	}
	if errResp.Message != "The Matrix is already in this list." {
		t.Fatalf("message = %q", errResp.Message)
	}
}

func TestAddMovieValidation(t *testing.T) {
	srv := buildTestServer(t, fakeTMDB{})
	owner, token := seedUser(t, srv, "owner@example.com", "")
	list := seedList(t, srv, "Films", owner.ID)

	rec := doRequest(srv, http.MethodPost, "/lists/"+list.ID+"/movies", token, `{"tmdbId":"","title":" "}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank fields status = %d, want 422", rec.Code)
	}
	rec = doRequest(srv, http.MethodPost, "/lists/"+list.ID+"/movies", token, `{{{`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("malformed body status = %d, want 422", rec.Code)
	}
}

func TestListMoviesProjection(t *testing.T) {
	srv := buildTestServer(t, fakeTMDB{})
	owner, token := seedUser(t, srv, "owner@example.com", "")
	list := seedList(t, srv, "Films", owner.ID)

	addTestMovie(t, srv, token, list.ID, "1", "Alien")
	addTestMovie(t, srv, token, list.ID, "2", "Blade Runner")
	addTestMovie(t, srv, token, list.ID, "3", "Aliens")

	rec := doRequest(srv, http.MethodGet, "/lists/"+list.ID+"/movies?q=alien", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var movies []movieResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &movies); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("filtered count = %d, want 2: %+v", len(movies), movies)
	}

	rec = doRequest(srv, http.MethodGet, "/lists/"+list.ID+"/movies?sort=title", token, "")
	_ = json.Unmarshal(rec.Body.Bytes(), &movies)
	if len(movies) != 3 || movies[0].Title != "Alien" || movies[2].Title != "Blade Runner" {
		t.Fatalf("title order = %+v", movies)
	}

	rec = doRequest(srv, http.MethodGet, "/lists/"+list.ID+"/movies?sort=upside-down", token, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown sort status = %d, want 422", rec.Code)
	}
}

func TestRatingAndStatusArePerUser(t *testing.T) {
	srv := buildTestServer(t, fakeTMDB{})
	owner, ownerToken := seedUser(t, srv, "owner@example.com", "")
	editor, editorToken := seedUser(t, srv, "editor@example.com", "")
	list := seedList(t, srv, "Shared", owner.ID)
	if err := srv.repo.Lists.AddMember(context.Background(), list.ID, editor.ID, "editor"); err != nil {
		t.Fatalf("add member: %v", err)
	}

	movie := addTestMovie(t, srv, ownerToken, list.ID, "550", "Fight Club")

	rec := doRequest(srv, http.MethodPut, "/movies/"+movie.ID+"/rating", ownerToken, `{"rating":9}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("rating status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(srv, http.MethodPut, "/movies/"+movie.ID+"/status", editorToken, `{"watchedStatus":"Watching"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status update = %d, want 204: %s", rec.Code, rec.Body.String())
	}

	// The owner sees their rating and an untouched status.
	var movies []movieResponse
	rec = doRequest(srv, http.MethodGet, "/lists/"+list.ID+"/movies", ownerToken, "")
	_ = json.Unmarshal(rec.Body.Bytes(), &movies)
	if len(movies) != 1 || movies[0].Rating != 9 || movies[0].WatchedStatus != "Unwatched" {
		t.Fatalf("owner view = %+v", movies)
	}

	// The editor sees their status and no rating.
	rec = doRequest(srv, http.MethodGet, "/lists/"+list.ID+"/movies", editorToken, "")
	_ = json.Unmarshal(rec.Body.Bytes(), &movies)
	if len(movies) != 1 || movies[0].Rating != 0 || movies[0].WatchedStatus != "Watching" {
		t.Fatalf("editor view = %+v", movies)
	}
}

func TestUpdateRatingValidation(t *testing.T) {
	srv := buildTestServer(t, fakeTMDB{})
	owner, token := seedUser(t, srv, "owner@example.com", "")
	list := seedList(t, srv, "Films", owner.ID)
	movie := addTestMovie(t, srv, token, list.ID, "550", "Fight Club")

	rec := doRequest(srv, http.MethodPut, "/movies/"+movie.ID+"/rating", token, `{"rating":11}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("out-of-range rating status = %d, want 422", rec.Code)
	}
	rec = doRequest(srv, http.MethodPut, "/movies/"+movie.ID+"/status", token, `{"watchedStatus":"Maybe"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown status = %d, want 422", rec.Code)
	}
	rec = doRequest(srv, http.MethodPut, "/movies/00000000-0000-0000-0000-000000000000/rating", token, `{"rating":5}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing movie status = %d, want 404", rec.Code)
	}
}

func TestDeleteMovie(t *testing.T) {
	srv := buildTestServer(t, fakeTMDB{})
	owner, token := seedUser(t, srv, "owner@example.com", "")
	list := seedList(t, srv, "Films", owner.ID)
	movie := addTestMovie(t, srv, token, list.ID, "550", "Fight Club")

	rec := doRequest(srv, http.MethodDelete, "/movies/"+movie.ID, token, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	rec = doRequest(srv, http.MethodGet, "/lists/"+list.ID+"/movies", token, "")
	var movies []movieResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &movies)
	if len(movies) != 0 {
		t.Fatalf("movies after delete = %+v", movies)
	}
}
