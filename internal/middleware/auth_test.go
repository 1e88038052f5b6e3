package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvinobieroh/devlinks-api/internal/auth"
	"github.com/alvinobieroh/devlinks-api/internal/http/respond"
	"github.com/alvinobieroh/devlinks-api/internal/middleware"
	"github.com/alvinobieroh/devlinks-api/internal/models"
	"github.com/alvinobieroh/devlinks-api/internal/storage/memory"
)

func newGuardedServer(t *testing.T, tokens *auth.TokenManager, store *memory.Store) http.Handler {
	t.Helper()
	resp := respond.New(zerolog.Nop(), false)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFromContext(r.Context())
		require.True(t, ok, "guard must attach the user to the context")
		resp.Success(w, http.StatusOK, "", map[string]any{"user": user})
	})
	return middleware.RequireAuth(tokens, store, resp)(next)
}

func doRequest(handler http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/links", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestRequireAuthMissingHeader(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", "devlinks-test", time.Hour)
	handler := newGuardedServer(t, tokens, memory.New())

	for _, header := range []string{"", "Basic abc123", "bearer lowercase-prefix"} {
		rec := doRequest(handler, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "You are not logged in! Please log in to get access.", decodeMessage(t, rec))
	}
}

func TestRequireAuthTamperedToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", "devlinks-test", time.Hour)
	handler := newGuardedServer(t, tokens, memory.New())

	token, err := tokens.Issue(uuid.New())
	require.NoError(t, err)

	rec := doRequest(handler, "Bearer "+token+"xx")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token. Please log in again!", decodeMessage(t, rec))
}

func TestRequireAuthExpiredToken(t *testing.T) {
	expired := auth.NewTokenManager("test-secret", "devlinks-test", -time.Minute)
	live := auth.NewTokenManager("test-secret", "devlinks-test", time.Hour)
	handler := newGuardedServer(t, live, memory.New())

	token, err := expired.Issue(uuid.New())
	require.NoError(t, err)

	rec := doRequest(handler, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Your token has expired! Please log in again.", decodeMessage(t, rec))
}

func TestRequireAuthDeletedUser(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", "devlinks-test", time.Hour)
	handler := newGuardedServer(t, tokens, memory.New())

	// Valid token whose subject no longer exists in the store.
	token, err := tokens.Issue(uuid.New())
	require.NoError(t, err)

	rec := doRequest(handler, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "The user belonging to this token no longer exists.", decodeMessage(t, rec))
}

func TestRequireAuthResolvesLiveUser(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", "devlinks-test", time.Hour)
	store := memory.New()
	handler := newGuardedServer(t, tokens, store)

	user, err := store.CreateUser(context.Background(), models.User{
		ID:         uuid.New(),
		Email:      "alice@example.com",
		IsVerified: true,
	})
	require.NoError(t, err)

	token, err := tokens.Issue(user.ID)
	require.NoError(t, err)

	rec := doRequest(handler, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")
}
