package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestShareListFlow(t *testing.T) {
	srv := buildTestServer(t, fakeTMDB{})
	owner, ownerToken := seedUser(t, srv, "owner@example.com", "Olive")
	friend, _ := seedUser(t, srv, "friend@example.com", "Fred")
	list := seedList(t, srv, "Shared", owner.ID)

	rec := doRequest(srv, http.MethodPost, "/lists/"+list.ID+"/members", ownerToken, `{"email":"friend@example.com"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("share status = %d, want 204: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(srv, http.MethodGet, "/lists/"+list.ID+"/members", ownerToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("members status = %d, want 200", rec.Code)
	}
	var members []memberResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members = %+v, want owner plus friend", members)
	}
	if members[0].UserID != owner.ID || members[0].Role != "owner" || members[0].Display != "Olive" {
		t.Fatalf("first member = %+v, want the owner", members[0])
	}
	if members[1].UserID != friend.ID || members[1].Role != "editor" || members[1].Display != "Fred" {
		t.Fatalf("second member = %+v", members[1])
	}
}

func TestShareListErrors(t *testing.T) {
	srv := buildTestServer(t, fakeTMDB{})
	owner, ownerToken := seedUser(t, srv, "owner@example.com", "")
	_, _ = seedUser(t, srv, "friend@example.com", "")
	list := seedList(t, srv, "Shared", owner.ID)

	rec := doRequest(srv, http.MethodPost, "/lists/"+list.ID+"/members", ownerToken, `{"email":"nobody@example.com"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown email status = %d, want 404", rec.Code)
	}

	rec = doRequest(srv, http.MethodPost, "/lists/"+list.ID+"/members", ownerToken, `{"email":"owner@example.com"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("self share status = %d, want 409", rec.Code)
	}

	rec = doRequest(srv, http.MethodPost, "/lists/"+list.ID+"/members", ownerToken, `{"email":""}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank email status = %d, want 422", rec.Code)
	}

	// Sharing twice is idempotent at the store but the protocol reports it.
	rec = doRequest(srv, http.MethodPost, "/lists/"+list.ID+"/members", ownerToken, `{"email":"friend@example.com"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first share status = %d, want 204", rec.Code)
	}
	rec = doRequest(srv, http.MethodPost, "/lists/"+list.ID+"/members", ownerToken, `{"email":"friend@example.com"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("repeat share status = %d, want 409", rec.Code)
	}
}

func TestRemoveMember(t *testing.T) {
	srv := buildTestServer(t, fakeTMDB{})
	owner, ownerToken := seedUser(t, srv, "owner@example.com", "")
	friend, _ := seedUser(t, srv, "friend@example.com", "")
	list := seedList(t, srv, "Shared", owner.ID)

	rec := doRequest(srv, http.MethodPost, "/lists/"+list.ID+"/members", ownerToken, `{"email":"friend@example.com"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("share status = %d, want 204", rec.Code)
	}

	rec = doRequest(srv, http.MethodDelete, "/lists/"+list.ID+"/members/"+owner.ID, ownerToken, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("owner removal status = %d, want 409", rec.Code)
	}

	rec = doRequest(srv, http.MethodDelete, "/lists/"+list.ID+"/members/"+friend.ID, ownerToken, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove status = %d, want 204", rec.Code)
	}

	rec = doRequest(srv, http.MethodDelete, "/lists/"+list.ID+"/members/"+friend.ID, ownerToken, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat remove status = %d, want 404", rec.Code)
	}
}
