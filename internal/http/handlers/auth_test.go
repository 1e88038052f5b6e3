package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvinobieroh/devlinks-api/internal/auth"
	"github.com/alvinobieroh/devlinks-api/internal/email"
	"github.com/alvinobieroh/devlinks-api/internal/http/respond"
	"github.com/alvinobieroh/devlinks-api/internal/middleware"
	"github.com/alvinobieroh/devlinks-api/internal/service"
	"github.com/alvinobieroh/devlinks-api/internal/storage/memory"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []email.Message
}

func (m *captureMailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

var linkToken = regexp.MustCompile(`token=([0-9a-f]{64})`)

func (m *captureMailer) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	match := linkToken.FindStringSubmatch(m.sent[len(m.sent)-1].HTMLBody)
	require.Len(t, match, 2)
	return match[1]
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
}

// newTestServer wires the full route tree over the in-memory store.
func newTestServer(t *testing.T) (*httptest.Server, *captureMailer) {
	t.Helper()
	store := memory.New()
	mailer := &captureMailer{}
	tokens := auth.NewTokenManager("test-secret", "devlinks-test", time.Hour)
	resp := respond.New(zerolog.Nop(), false)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := service.NewAuthService(store, tokens, mailer, zerolog.Nop(),
		"https://devlinks.test", 24*time.Hour, 10*time.Minute)

	linksHandler := NewLinksHandler(store, store, resp, validate)
	profileHandler := NewProfileHandler(store, resp, validate)

	r := chi.NewRouter()
	r.Route("/devlinks-api/v1/users", func(r chi.Router) {
		NewAuthHandler(svc, resp, validate, time.Hour, false).Register(r)
		linksHandler.RegisterPublic(r)
		profileHandler.RegisterPublic(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokens, store, resp))
			linksHandler.Register(r)
			profileHandler.Register(r)
		})
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, mailer
}

func doJSON(t *testing.T, method, url, bearer string, payload any) (*http.Response, envelope) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func signupVerifyLogin(t *testing.T, ts *httptest.Server, mailer *captureMailer, emailAddr string) (token, userID string) {
	t.Helper()
	base := ts.URL + "/devlinks-api/v1/users"

	resp, _ := doJSON(t, http.MethodPost, base+"/signup", "", map[string]string{
		"email": emailAddr, "password": "password123", "confirmPassword": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, base+"/verify-email?token="+mailer.lastToken(t), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := doJSON(t, http.MethodPost, base+"/login", "", map[string]string{
		"email": emailAddr, "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, env.Token)

	var data struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.User.ID)
	return env.Token, data.User.ID
}

func TestSignupEnvelope(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/devlinks-api/v1/users/signup", "", map[string]string{
		"email": "alice@example.com", "password": "password123", "confirmPassword": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "Verification email sent. Please verify your email address.", env.Message)
}

func TestSignupValidationJoinsMessages(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/devlinks-api/v1/users/signup", "", map[string]string{
		"email": "not-an-email", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "fail", env.Status)
	assert.Contains(t, env.Message, "valid email address")
	assert.Contains(t, env.Message, "at least 8 characters")
	assert.Contains(t, env.Message, "required")
}

func TestSignupDuplicateEmailEnvelope(t *testing.T) {
	ts, _ := newTestServer(t)
	base := ts.URL + "/devlinks-api/v1/users"
	payload := map[string]string{
		"email": "alice@example.com", "password": "password123", "confirmPassword": "password123",
	}

	resp, _ := doJSON(t, http.MethodPost, base+"/signup", "", payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := doJSON(t, http.MethodPost, base+"/signup", "", payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "fail", env.Status)
	assert.Equal(t, "This email is already registered. Please use a different email address.", env.Message)
}

func TestLoginSetsSessionCookieAndBody(t *testing.T) {
	ts, mailer := newTestServer(t)
	base := ts.URL + "/devlinks-api/v1/users"

	doJSON(t, http.MethodPost, base+"/signup", "", map[string]string{
		"email": "alice@example.com", "password": "password123", "confirmPassword": "password123",
	})
	doJSON(t, http.MethodGet, base+"/verify-email?token="+mailer.lastToken(t), "", nil)

	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(map[string]string{
		"email": "alice@example.com", "password": "password123",
	}))
	resp, err := http.Post(base+"/login", "application/json", &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.NotEmpty(t, env.Token, "token must be in the body")
	assert.NotContains(t, string(env.Data), "password", "no credential material in the payload")
	assert.NotContains(t, string(env.Data), "token", "the session token rides only at the top level")
	assert.Contains(t, string(env.Data), `"createdAt"`)
	assert.NotContains(t, string(env.Data), "created_at")

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "jwt" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "login must set the jwt cookie")
	assert.Equal(t, env.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestLoginBeforeVerification(t *testing.T) {
	ts, _ := newTestServer(t)
	base := ts.URL + "/devlinks-api/v1/users"

	doJSON(t, http.MethodPost, base+"/signup", "", map[string]string{
		"email": "alice@example.com", "password": "password123", "confirmPassword": "password123",
	})

	resp, env := doJSON(t, http.MethodPost, base+"/login", "", map[string]string{
		"email": "alice@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Your email is not verified. Please verify your email address.", env.Message)
}

func TestResetPasswordFlow(t *testing.T) {
	ts, mailer := newTestServer(t)
	base := ts.URL + "/devlinks-api/v1/users"
	signupVerifyLogin(t, ts, mailer, "alice@example.com")

	resp, _ := doJSON(t, http.MethodPost, base+"/forgotPassword", "", map[string]string{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := doJSON(t, http.MethodPatch, base+"/resetPassword?token="+mailer.lastToken(t), "", map[string]string{
		"password": "newpassword1", "confirmPassword": "newpassword1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, env.Token, "reset must auto-login")

	resp, _ = doJSON(t, http.MethodPost, base+"/login", "", map[string]string{
		"email": "alice@example.com", "password": "newpassword1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/devlinks-api/v1/users/forgotPassword", "", map[string]string{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "fail", env.Status)
	assert.Equal(t, "We can't find a user with that email address.", env.Message)
}

func TestLogoutClearsCookie(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/devlinks-api/v1/users/logout", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "jwt" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()))
}

func TestLinksReplaceAndList(t *testing.T) {
	ts, mailer := newTestServer(t)
	base := ts.URL + "/devlinks-api/v1/users"
	token, _ := signupVerifyLogin(t, ts, mailer, "alice@example.com")

	resp, env := doJSON(t, http.MethodPost, base+"/links", token, []map[string]string{
		{"platform": "github", "url": "https://github.com/alice"},
		{"platform": "frontend-mentor", "url": "https://frontendmentor.io/profile/alice"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "success", env.Status)

	resp, env = doJSON(t, http.MethodGet, base+"/links", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Links []struct {
			Platform string `json:"platform"`
			URL      string `json:"url"`
			Position int    `json:"position"`
		} `json:"links"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Links, 2)
	assert.Equal(t, "github", data.Links[0].Platform)
	assert.Equal(t, 0, data.Links[0].Position)
	assert.Equal(t, 1, data.Links[1].Position)
}

func TestLinksRequireAuth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodGet, ts.URL+"/devlinks-api/v1/users/links", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "You are not logged in! Please log in to get access.", env.Message)
}

func TestPublicProfileAndLinks(t *testing.T) {
	ts, mailer := newTestServer(t)
	base := ts.URL + "/devlinks-api/v1/users"
	token, userID := signupVerifyLogin(t, ts, mailer, "alice@example.com")

	resp, _ := doJSON(t, http.MethodPatch, base+"/profile-update", token, map[string]string{
		"firstName": "Alice", "lastName": "Abraham",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, base+"/links", token, []map[string]string{
		{"platform": "github", "url": "https://github.com/alice"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// No Authorization header: these back the shared link-in-bio page.
	resp, env := doJSON(t, http.MethodGet, base+"/offline-profile?id="+userID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", env.Status)
	assert.Contains(t, string(env.Data), "Alice")
	assert.NotContains(t, string(env.Data), "password")

	resp, env = doJSON(t, http.MethodGet, base+"/offline-links?id="+userID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var data struct {
		Links []struct {
			Platform string `json:"platform"`
		} `json:"links"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Links, 1)
	assert.Equal(t, "github", data.Links[0].Platform)
}

func TestPublicProfileUnknownID(t *testing.T) {
	ts, _ := newTestServer(t)
	base := ts.URL + "/devlinks-api/v1/users"

	for _, path := range []string{
		"/offline-profile?id=" + uuid.NewString(),
		"/offline-links?id=" + uuid.NewString(),
		"/offline-profile?id=not-a-uuid",
		"/offline-links?id=",
	} {
		resp, env := doJSON(t, http.MethodGet, base+path, "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Equal(t, "fail", env.Status, path)
		assert.Equal(t, "We can't find a user with that id.", env.Message, path)
	}
}

func TestProfileUpdate(t *testing.T) {
	ts, mailer := newTestServer(t)
	base := ts.URL + "/devlinks-api/v1/users"
	token, _ := signupVerifyLogin(t, ts, mailer, "alice@example.com")

	resp, env := doJSON(t, http.MethodPatch, base+"/profile-update", token, map[string]string{
		"firstName": "Alice", "lastName": "Abraham", "photo": "https://cdn.devlinks.test/alice.png",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		User struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
			Photo     string `json:"photo"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Alice", data.User.FirstName)
	assert.Equal(t, "Abraham", data.User.LastName)

	resp, env = doJSON(t, http.MethodGet, base+"/profile-update", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Alice", data.User.FirstName)
}
