package httpserver

import (
	"context"
	"net/http"

	"github.com/yeymeap/MovieRate/internal/auth"
)

type contextKey string

const userIDKey contextKey = "user_id"

// requireUser validates the bearer token and stores the acting user id in the
// request context. Login itself happens at the external auth provider; this
// middleware only answers "who is asking".
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
			return
		}

		claims, err := s.tokens.Validate(token)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUserID returns the acting user id set by requireUser, empty when
// the request is unauthenticated.
func currentUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
