package auth

import (
	"context"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"booklend/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type contextKey struct{}

// userKey stores the authenticated user in the request context.
var userKey contextKey

// UserFrom returns the authenticated user from the request context, or nil.
func UserFrom(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

// RequireSession resolves the bearer token and stores the user in the
// request context, rejecting the request with 401 otherwise.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			deny(w, http.StatusUnauthorized, "authentication required")
			return
		}
		user, err := s.UserForToken(r.Context(), token)
		if err != nil {
			deny(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects requests whose session lacks all of the given roles.
// It must run after RequireSession.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasRole(UserFrom(r.Context()), roles...) {
				deny(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	return bearerToken(r)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}
