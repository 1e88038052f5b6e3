package middleware

import (
	"context"

	"github.com/alvinobieroh/devlinks-api/internal/models"
)

type contextKey struct{ name string }

var userKey = contextKey{"user"}

// WithUser attaches the resolved user to the request context.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user attached by RequireAuth.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}
