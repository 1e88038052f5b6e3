package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvinobieroh/devlinks-api/internal/apperror"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSuccessEnvelope(t *testing.T) {
	r := New(zerolog.Nop(), false)
	rec := httptest.NewRecorder()

	r.Success(rec, http.StatusCreated, "created", map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	env := decode(t, rec)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "created", env.Message)
}

func TestOperationalErrorPassesThrough(t *testing.T) {
	r := New(zerolog.Nop(), false)
	rec := httptest.NewRecorder()

	r.Error(rec, apperror.DuplicateEmail())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "fail", env.Status)
	assert.Equal(t, "This email is already registered. Please use a different email address.", env.Message)
	assert.Empty(t, env.Detail)
}

func TestServerSideOperationalErrorUsesErrorWord(t *testing.T) {
	r := New(zerolog.Nop(), false)
	rec := httptest.NewRecorder()

	r.Error(rec, apperror.EmailDelivery("delivery failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "delivery failed", env.Message)
}

func TestUnclassifiedErrorIsMasked(t *testing.T) {
	r := New(zerolog.Nop(), false)
	rec := httptest.NewRecorder()

	r.Error(rec, errors.New("pq: connection refused on 10.0.0.5"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, maskedMessage, env.Message)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestVerboseModeExposesDetail(t *testing.T) {
	r := New(zerolog.Nop(), true)

	rec := httptest.NewRecorder()
	r.Error(rec, errors.New("boom"))
	assert.Equal(t, "boom", decode(t, rec).Detail)

	rec = httptest.NewRecorder()
	r.Error(rec, apperror.EmailDelivery("delivery failed").WithCause(errors.New("smtp timeout")))
	env := decode(t, rec)
	assert.Equal(t, "delivery failed", env.Message)
	assert.Equal(t, "smtp timeout", env.Detail)
}

func TestWrappedOperationalErrorStillTranslates(t *testing.T) {
	r := New(zerolog.Nop(), false)
	rec := httptest.NewRecorder()

	wrapped := fmt.Errorf("handling signup: %w", apperror.PasswordMismatch())
	r.Error(rec, wrapped)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "fail", decode(t, rec).Status)
}
