package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yeymeap/MovieRate/internal/membership"
	"github.com/yeymeap/MovieRate/internal/repository"
)

type memberResponse struct {
	UserID  string `json:"userId"`
	Role    string `json:"role"`
	Display string `json:"display"`
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if _, ok := s.authorizeList(w, r, listID); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	members, err := s.members.ListMembers(ctx, listID)
	if err != nil {
		s.logger.Error("failed to list members", "list_id", listID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
		return
	}

	payload := make([]memberResponse, 0, len(members))
	for _, m := range members {
		payload = append(payload, memberResponse{UserID: m.UserID, Role: m.Role, Display: m.Display})
	}
	s.respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleShareList(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if _, ok := s.authorizeList(w, r, listID); !ok {
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Email cannot be empty")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := s.members.Share(ctx, listID, currentUserID(ctx), req.Email)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, membership.ErrNoSuchUser):
		s.respondError(w, http.StatusNotFound, "USER_NOT_FOUND", "No user with that email")
	case errors.Is(err, membership.ErrSelfShare):
		s.respondError(w, http.StatusConflict, "SELF_SHARE", "You cannot share a list with yourself")
	case errors.Is(err, membership.ErrAlreadyMember):
		s.respondError(w, http.StatusConflict, "ALREADY_MEMBER", "That user is already a member of this list")
	default:
		s.logger.Error("failed to share list", "list_id", listID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if _, ok := s.authorizeList(w, r, listID); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := s.members.RemoveMember(ctx, listID, chi.URLParam(r, "userID"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, membership.ErrOwnerRemoval):
		s.respondError(w, http.StatusConflict, "OWNER_REMOVAL", "The owner cannot be removed from a list")
	case errors.Is(err, repository.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "MEMBER_NOT_FOUND", "That user is not a member of this list")
	default:
		s.logger.Error("failed to remove member", "list_id", listID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}
