// Package content implements the per-object key lifecycle for private
// (non-vault) objects: a fresh content key per stored photo or file,
// wrapped under the master key for storage, unwrapped on every read. The
// object and its thumbnail share one content key.
package content

import (
	"encoding/base64"
	"fmt"

	"photovault/internal/crypto"
	"photovault/internal/keystore"
	"photovault/internal/logging"
)

var (
	aadContentKeyWrap = []byte("content-key")
	aadObject         = []byte("content-object")
	aadThumbnail      = []byte("content-thumbnail")
)

type Service struct {
	eng   *crypto.Engine
	store *keystore.Store
	log   *logging.Logger
}

func New(eng *crypto.Engine, store *keystore.Store, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{eng: eng, store: store, log: log}
}

// Generate returns a fresh random content key. Callers wrap it immediately
// and drop the raw bytes after use.
func (s *Service) Generate() ([]byte, error) {
	if err := s.eng.Check(); err != nil {
		return nil, err
	}
	return crypto.NewKey()
}

// WrapUnderMaster seals a content key under the active master key and
// returns the base64 envelope the server stores. Fails with ErrNoMasterKey
// before login.
func (s *Service) WrapUnderMaster(contentKey []byte) (string, error) {
	if err := s.eng.Check(); err != nil {
		return "", err
	}
	master, err := s.store.Master()
	if err != nil {
		return "", err
	}
	wrapped, err := crypto.Seal(master, contentKey, aadContentKeyWrap)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(wrapped), nil
}

// UnwrapUnderMaster is the inverse of WrapUnderMaster.
func (s *Service) UnwrapUnderMaster(wrapped string) ([]byte, error) {
	if err := s.eng.Check(); err != nil {
		return nil, err
	}
	master, err := s.store.Master()
	if err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("content: decode wrapped key: %w", err)
	}
	return crypto.OpenAny(master, raw, aadContentKeyWrap)
}

// EncryptObject seals object bytes under its content key.
func (s *Service) EncryptObject(plaintext, contentKey []byte) ([]byte, error) {
	if err := s.eng.Check(); err != nil {
		return nil, err
	}
	return crypto.Seal(contentKey, plaintext, aadObject)
}

// DecryptObject opens object bytes. An authentication failure means the
// blob is corrupt or the wrong key was supplied; callers surface it as
// "failed to decrypt", never as garbage plaintext.
func (s *Service) DecryptObject(ciphertext, contentKey []byte) ([]byte, error) {
	if err := s.eng.Check(); err != nil {
		return nil, err
	}
	return crypto.OpenAny(contentKey, ciphertext, aadObject)
}

// EncryptThumbnail seals a thumbnail under the same content key as its
// object, framed separately so the two blobs cannot be swapped.
func (s *Service) EncryptThumbnail(plaintext, contentKey []byte) ([]byte, error) {
	if err := s.eng.Check(); err != nil {
		return nil, err
	}
	return crypto.Seal(contentKey, plaintext, aadThumbnail)
}

// DecryptThumbnail is the inverse of EncryptThumbnail.
func (s *Service) DecryptThumbnail(ciphertext, contentKey []byte) ([]byte, error) {
	if err := s.eng.Check(); err != nil {
		return nil, err
	}
	return crypto.OpenAny(contentKey, ciphertext, aadThumbnail)
}
