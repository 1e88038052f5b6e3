package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alvinobieroh/devlinks-api/internal/apperror"
	"github.com/alvinobieroh/devlinks-api/internal/auth"
	"github.com/alvinobieroh/devlinks-api/internal/http/respond"
	"github.com/alvinobieroh/devlinks-api/internal/storage"
)

// RequireAuth gates protected routes: it validates the bearer token and
// resolves it to a live user before the handler runs. A token for a deleted
// account is rejected even when its signature and expiry are fine.
func RequireAuth(tokens *auth.TokenManager, users storage.UserStore, resp *respond.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				resp.Error(w, apperror.NotAuthenticated())
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					resp.Error(w, apperror.TokenExpired())
				} else {
					resp.Error(w, apperror.TokenInvalid())
				}
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					resp.Error(w, apperror.UserGone())
				} else {
					resp.Error(w, err)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
