package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *AuthService {
	return NewAuthService("test-secret-at-least-32-bytes-long!!", time.Hour)
}

func TestPasswordHashing(t *testing.T) {
	a := newTestService()

	hash, err := a.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, a.CompareHashAndPassword(hash, "hunter22"))
	assert.ErrorIs(t, a.CompareHashAndPassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	a := newTestService()

	token, err := a.GenerateToken("user-42")
	require.NoError(t, err)

	userID, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	a := newTestService()

	_, err := a.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	expired := NewAuthService("test-secret-at-least-32-bytes-long!!", -time.Minute)
	token, err := expired.GenerateToken("user-42")
	require.NoError(t, err)

	_, err = expired.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	a := newTestService()
	other := NewAuthService("a-completely-different-signing-secret", time.Hour)

	token, err := other.GenerateToken("user-42")
	require.NoError(t, err)

	_, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	a := newTestService()
	var gotUserID string
	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token passes through with user on context", func(t *testing.T) {
		token, err := a.GenerateToken("user-7")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-7", gotUserID)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
