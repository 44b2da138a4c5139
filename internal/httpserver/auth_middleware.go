package httpserver

import (
	"context"
	"net/http"
	"strings"

	"quickchat/internal/domain"
	"quickchat/internal/security"
	"quickchat/internal/service"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// WithUser returns a new context carrying the current user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser extracts the current user from context, if any.
func CurrentUser(r *http.Request) *domain.User {
	if v := r.Context().Value(userContextKey); v != nil {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// AuthMiddleware validates the Bearer token and attaches the user to the
// context. The sender identity used downstream always comes from here, never
// from request bodies.
func AuthMiddleware(tokens *security.TokenService, authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				writeJSON(w, http.StatusUnauthorized, failure("missing or invalid Authorization header"))
				return
			}
			tokenStr := strings.TrimSpace(authHeader[len("Bearer "):])

			sub, err := tokens.Subject(tokenStr)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, failure("invalid token"))
				return
			}

			user, err := authSvc.GetByID(r.Context(), sub)
			if err != nil || user == nil {
				writeJSON(w, http.StatusUnauthorized, failure("user not found"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
