package auth

import (
	"context"
	"net/http"

	"github.com/dferreira/authserver/internal/model"
	"github.com/dferreira/authserver/internal/session"
)

type contextKey string

const userIDContextKey contextKey = "userID"

// SessionAuthenticated protects endpoints that require a logged-in user.
// It verifies the session cookie and injects the user ID into the request
// context.
func (h handler) SessionAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil {
			writeError(w, model.ErrUnauthorized)
			return
		}

		userID, err := h.svc.sessions.Verify(cookie.Value)
		if err != nil {
			writeError(w, model.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user's ID, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok
}
