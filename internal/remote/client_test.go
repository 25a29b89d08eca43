package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photovault/internal/crypto"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestVaultChallenge(t *testing.T) {
	want := Challenge{
		WrappedVaultKey: "d3JhcHBlZA==",
		KDF:             crypto.KDFParams{M: 65536, T: 3, P: 4, Salt: []byte("0123456789abcdef0123456789abcdef")},
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/vaults/v-1/challenge", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(want)
	})
	c.SetToken("tok")

	got, err := c.VaultChallenge(context.Background(), "v-1")
	require.NoError(t, err)
	assert.Equal(t, want.WrappedVaultKey, got.WrappedVaultKey)
	assert.Equal(t, want.KDF.M, got.KDF.M)
}

func TestErrorMapping(t *testing.T) {
	status := http.StatusUnauthorized
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})

	_, err := c.VaultChallenge(context.Background(), "v-1")
	require.ErrorIs(t, err, ErrUnauthorized)

	status = http.StatusNotFound
	_, err = c.BeginAuthenticatorUnlock(context.Background(), "v-1")
	require.ErrorIs(t, err, ErrNotFound)

	status = http.StatusInternalServerError
	err = c.PublishPublicKey(context.Background(), "pub")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterVaultBody(t *testing.T) {
	var got VaultRecord
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vaults", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	rec := VaultRecord{VaultID: "v-9", Name: "travel", WrappedVaultKey: "YmxvYg=="}
	require.NoError(t, c.RegisterVault(context.Background(), rec))
	assert.Equal(t, rec, got)
}

func TestNotifyLockBestEffort(t *testing.T) {
	hits := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/api/vaults/v-1/lock", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	})

	// Must not panic or surface the failure.
	c.NotifyLock(context.Background(), "v-1")
	assert.Equal(t, 1, hits)
}

func TestSessionValid(t *testing.T) {
	c := NewClient(ClientConfig{BaseURL: "http://unused.local"})

	assert.False(t, c.SessionValid(), "no token")

	c.SetToken("not-a-jwt")
	assert.False(t, c.SessionValid(), "malformed token")

	c.SetToken(signedToken(t, time.Now().Add(-time.Minute)))
	assert.False(t, c.SessionValid(), "expired token")

	c.SetToken(signedToken(t, time.Now().Add(time.Hour)))
	assert.True(t, c.SessionValid())
}
