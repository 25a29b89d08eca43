package content

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photovault/internal/crypto"
	"photovault/internal/keystore"
	"photovault/internal/logging"
)

func newService(t *testing.T) (*Service, *keystore.Store) {
	t.Helper()
	store := keystore.New()
	return New(crypto.Probe(), store, logging.Nop()), store
}

func installMaster(t *testing.T, store *keystore.Store) {
	t.Helper()
	mk, err := crypto.NewKey()
	require.NoError(t, err)
	store.SetMaster(mk)
}

// First-time setup end to end: derive nothing, generate a content key,
// wrap it, unwrap it, and confirm the reconstructed key opens data sealed
// with the original.
func TestFirstTimeSetupScenario(t *testing.T) {
	s, store := newService(t)
	installMaster(t, store)

	ck, err := s.Generate()
	require.NoError(t, err)
	require.Len(t, ck, crypto.KeySize)

	wrapped, err := s.WrapUnderMaster(ck)
	require.NoError(t, err)
	assert.Greater(t, len(wrapped), 16)

	obj, err := s.EncryptObject([]byte("photo bytes"), ck)
	require.NoError(t, err)

	ck2, err := s.UnwrapUnderMaster(wrapped)
	require.NoError(t, err)
	assert.Equal(t, ck, ck2)

	pt, err := s.DecryptObject(obj, ck2)
	require.NoError(t, err)
	assert.Equal(t, []byte("photo bytes"), pt)
}

func TestWrapRequiresMaster(t *testing.T) {
	s, _ := newService(t)
	ck, err := s.Generate()
	require.NoError(t, err)

	_, err = s.WrapUnderMaster(ck)
	require.ErrorIs(t, err, keystore.ErrNoMasterKey)
	_, err = s.UnwrapUnderMaster("AAAA")
	require.ErrorIs(t, err, keystore.ErrNoMasterKey)
}

func TestUnwrapWrongMaster(t *testing.T) {
	s, store := newService(t)
	installMaster(t, store)

	ck, err := s.Generate()
	require.NoError(t, err)
	wrapped, err := s.WrapUnderMaster(ck)
	require.NoError(t, err)

	// A different user's master key must not open the envelope.
	installMaster(t, store)
	_, err = s.UnwrapUnderMaster(wrapped)
	require.ErrorIs(t, err, crypto.ErrAuthenticationFailure)
}

func TestThumbnailSharesKeyButNotFraming(t *testing.T) {
	s, _ := newService(t)
	ck, err := s.Generate()
	require.NoError(t, err)

	obj, err := s.EncryptObject([]byte("full image"), ck)
	require.NoError(t, err)
	thumb, err := s.EncryptThumbnail([]byte("small image"), ck)
	require.NoError(t, err)

	_, err = s.DecryptThumbnail(obj, ck)
	require.ErrorIs(t, err, crypto.ErrAuthenticationFailure,
		"object blob must not decrypt as a thumbnail")

	pt, err := s.DecryptThumbnail(thumb, ck)
	require.NoError(t, err)
	assert.Equal(t, []byte("small image"), pt)
}

func TestFolderFileDerivationHierarchy(t *testing.T) {
	vk, err := crypto.NewKey()
	require.NoError(t, err)

	fk1, err := DeriveFolderKey(vk, "folder-1")
	require.NoError(t, err)
	fk1again, err := DeriveFolderKey(vk, "folder-1")
	require.NoError(t, err)
	assert.Equal(t, fk1, fk1again, "derivation must be deterministic")

	fk2, err := DeriveFolderKey(vk, "folder-2")
	require.NoError(t, err)
	assert.NotEqual(t, fk1, fk2)

	file1, err := DeriveFileKey(fk1, "file-1")
	require.NoError(t, err)
	file1other, err := DeriveFileKey(fk2, "file-1")
	require.NoError(t, err)
	assert.NotEqual(t, file1, file1other, "same file ID under different folders must differ")

	// A file key is usable as an AEAD key directly.
	s, _ := newService(t)
	ct, err := s.EncryptObject([]byte("derived-key object"), file1)
	require.NoError(t, err)
	pt, err := s.DecryptObject(ct, file1)
	require.NoError(t, err)
	assert.True(t, bytes.Equal([]byte("derived-key object"), pt))
}

func TestEngineGate(t *testing.T) {
	store := keystore.New()
	s := New(crypto.Unavailable("insecure context"), store, logging.Nop())
	_, err := s.Generate()
	require.ErrorIs(t, err, crypto.ErrEngineUnavailable)
	_, err = s.WrapUnderMaster(nil)
	require.ErrorIs(t, err, crypto.ErrEngineUnavailable)
}
