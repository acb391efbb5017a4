package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, 42, "a@x.com", 30*time.Minute)
	require.NoError(t, err)

	uid, email, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), uid)
	assert.Equal(t, "a@x.com", email)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(testSecret, 42, "a@x.com", -time.Minute)
	require.NoError(t, err)

	_, _, err = ParseToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, 42, "a@x.com", 30*time.Minute)
	require.NoError(t, err)

	_, _, err = ParseToken([]byte("other-secret"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, _, err := ParseToken(testSecret, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	mw := NewMiddleware(testSecret)

	var gotUID int64
	var gotEmail string
	next := func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = UserIDFromContext(r.Context())
		gotEmail, _ = EmailFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}

	// No token.
	rec := httptest.NewRecorder()
	mw.Wrap(next)(rec, httptest.NewRequest(http.MethodGet, "/tasks/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Malformed scheme.
	req := httptest.NewRequest(http.MethodGet, "/tasks/", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	mw.Wrap(next)(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid bearer token.
	token, err := GenerateToken(testSecret, 7, "a@x.com", time.Minute)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/tasks/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	mw.Wrap(next)(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), gotUID)
	assert.Equal(t, "a@x.com", gotEmail)
}
