package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yeymeap/MovieRate/internal/domain"
	"github.com/yeymeap/MovieRate/internal/repository"
)

type listResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerID     string    `json:"ownerId"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toListResponse(list domain.List) listResponse {
	return listResponse{
		ID:          list.ID,
		Name:        list.Name,
		OwnerID:     list.OwnerID,
		MemberCount: len(list.Members) + 1,
		CreatedAt:   list.CreatedAt,
	}
}

// authorizeList loads the list and checks that the acting user is its owner
// or a member. On failure it writes the response and returns false.
func (s *Server) authorizeList(w http.ResponseWriter, r *http.Request, listID string) (domain.List, bool) {
	list, err := s.repo.Lists.Get(r.Context(), listID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "LIST_NOT_FOUND", "List not found")
			return domain.List{}, false
		}
		s.logger.Error("failed to load list", "list_id", listID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return domain.List{}, false
	}

	userID := currentUserID(r.Context())
	if list.OwnerID != userID {
		if _, ok := list.Members[userID]; !ok {
			s.respondError(w, http.StatusForbidden, "FORBIDDEN", "You do not have access to this list")
			return domain.List{}, false
		}
	}
	return list, true
}

func (s *Server) handleListLists(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	lists, err := s.repo.Lists.ListForUser(ctx, currentUserID(ctx))
	if err != nil {
		s.logger.Error("failed to list lists", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}

	payload := make([]listResponse, 0, len(lists))
	for _, list := range lists {
		payload = append(payload, toListResponse(list))
	}
	s.respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "List name cannot be empty")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := s.repo.Lists.Create(ctx, repository.ListCreateParams{
		Name:    req.Name,
		OwnerID: currentUserID(ctx),
	})
	if err != nil {
		s.logger.Error("failed to create list", "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}

	w.Header().Set("Location", "/lists/"+list.ID)
	s.respondJSON(w, http.StatusCreated, toListResponse(list))
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")

	list, ok := s.authorizeList(w, r, listID)
	if !ok {
		return
	}
	if list.OwnerID != currentUserID(r.Context()) {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Only the owner can delete a list")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.repo.Lists.Delete(ctx, listID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "LIST_NOT_FOUND", "List not found")
			return
		}
		s.logger.Error("failed to delete list", "list_id", listID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
