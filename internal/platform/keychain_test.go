package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemKeychainRoundTrip(t *testing.T) {
	kc := NewMemKeychain()
	require.NoError(t, kc.Store("session:vault-1", []byte("secret")))

	got, err := kc.Load("session:vault-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), got)

	// The returned slice is a copy; mutating it must not poison the store.
	got[0] = 'X'
	again, err := kc.Load("session:vault-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), again)

	require.NoError(t, kc.Erase("session:vault-1"))
	_, err = kc.Load("session:vault-1")
	require.ErrorIs(t, err, ErrKeychainMiss)

	require.NoError(t, kc.Erase("session:vault-1"))
}
