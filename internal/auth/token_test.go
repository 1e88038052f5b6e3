package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewTokenManager("test-secret", "devlinks-test", time.Hour)
	userID := uuid.New()

	token, err := mgr.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := mgr.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenExpired(t *testing.T) {
	mgr := NewTokenManager("test-secret", "devlinks-test", -time.Minute)

	token, err := mgr.Issue(uuid.New())
	require.NoError(t, err)

	_, err = mgr.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenTampered(t *testing.T) {
	mgr := NewTokenManager("test-secret", "devlinks-test", time.Hour)

	token, err := mgr.Issue(uuid.New())
	require.NoError(t, err)

	tampered := token + "xx"
	_, err = mgr.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenWrongSecret(t *testing.T) {
	issued, err := NewTokenManager("secret-a", "devlinks-test", time.Hour).Issue(uuid.New())
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", "devlinks-test", time.Hour).Verify(issued)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenGarbage(t *testing.T) {
	mgr := NewTokenManager("test-secret", "devlinks-test", time.Hour)

	_, err := mgr.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
