package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenParser validates a bearer token and resolves the user it was
// issued for.
type TokenParser interface {
	ParseToken(token string) (uuid.UUID, error)
}

// AuthMiddleware guards routes behind a Bearer JWT and stores the
// authenticated user id in the request context.
type AuthMiddleware struct {
	tokens TokenParser
}

func NewAuthMiddleware(tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeMessage(w, http.StatusUnauthorized, "missing token")
			return
		}

		userID, err := m.tokens.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

// UserIDFromContext returns the authenticated user id placed by
// AuthMiddleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}
