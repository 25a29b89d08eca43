// Package share transfers content keys (and derived folder keys) to other
// users over ephemeral x25519 agreement. Each share mints a fresh
// ephemeral pair, derives a one-time symmetric key from the agreement, and
// discards the ephemeral private half — compromising one share event never
// exposes past or future shares.
package share

import (
	"photovault/internal/crypto"
	"photovault/internal/keystore"
	"photovault/internal/logging"
)

var (
	aadContentShare = []byte("share-content-key")
	aadFolderShare  = []byte("share-folder-key")
)

// Payload is the wire form of a one-time share: nonce and ciphertext are
// split out so the server schema can store them separately, and only the
// ephemeral PUBLIC key travels.
type Payload struct {
	EncryptedKey       []byte `json:"encrypted_content_key"`
	Nonce              []byte `json:"nonce"`
	EphemeralPublicKey string `json:"ephemeral_public_key"`
}

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

// GenerateKeyPair mints the user's long-term sharing pair and installs it
// in the keystore. The public half is returned base64-encoded for upload;
// the private half never leaves memory.
func (s *Service) GenerateKeyPair() (string, error) {
	if err := s.eng.Check(); err != nil {
		return "", err
	}
	kp, err := crypto.NewX25519()
	if err != nil {
		return "", err
	}
	s.store.SetKeyPair(kp)
	s.log.Info().Msg("sharing key pair generated")
	return crypto.EncodePublicKey(kp.Pub), nil
}

// ExportPublicKey returns the installed pair's public half.
func (s *Service) ExportPublicKey() (string, error) {
	kp, err := s.store.KeyPair()
	if err != nil {
		return "", err
	}
	return crypto.EncodePublicKey(kp.Pub), nil
}

func (s *Service) seal(rawKey []byte, recipientPublicKey string, aad []byte) (*Payload, error) {
	if err := s.eng.Check(); err != nil {
		return nil, err
	}
	recipient, err := crypto.DecodePublicKey(recipientPublicKey)
	if err != nil {
		return nil, err
	}
	// Fresh ephemeral pair per call; its private half goes out of scope
	// when this function returns.
	eph, err := crypto.NewX25519()
	if err != nil {
		return nil, err
	}
	secret, err := crypto.SharedSecret(eph.Priv, recipient)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(secret)

	otk, err := crypto.DeriveSubKey(secret, crypto.SaltShare, "one-time")
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(otk)

	sealed, err := crypto.Seal(otk, rawKey, aad)
	if err != nil {
		return nil, err
	}
	return &Payload{
		Nonce:              sealed[:crypto.NonceSize],
		EncryptedKey:       sealed[crypto.NonceSize:],
		EphemeralPublicKey: crypto.EncodePublicKey(eph.Pub),
	}, nil
}

func (s *Service) open(p *Payload, aad []byte) ([]byte, error) {
	if err := s.eng.Check(); err != nil {
		return nil, err
	}
	kp, err := s.store.KeyPair()
	if err != nil {
		return nil, err
	}
	eph, err := crypto.DecodePublicKey(p.EphemeralPublicKey)
	if err != nil {
		return nil, err
	}
	secret, err := crypto.SharedSecret(kp.Priv, eph)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(secret)

	otk, err := crypto.DeriveSubKey(secret, crypto.SaltShare, "one-time")
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(otk)

	sealed := append(append([]byte(nil), p.Nonce...), p.EncryptedKey...)
	return crypto.Open(otk, sealed, aad)
}

// EncryptForSharing wraps a content key for the recipient identified by
// their base64 public key.
func (s *Service) EncryptForSharing(contentKey []byte, recipientPublicKey string) (*Payload, error) {
	return s.seal(contentKey, recipientPublicKey, aadContentShare)
}

// DecryptShared recovers a content key from a payload addressed to this
// user. Fails with keystore.ErrNoKeyPair before login.
func (s *Service) DecryptShared(p *Payload) ([]byte, error) {
	return s.open(p, aadContentShare)
}

// EncryptFolderKeyForSharing transfers a derived folder key; the recipient
// then re-derives every file key under it without per-file share events.
func (s *Service) EncryptFolderKeyForSharing(folderKey []byte, recipientPublicKey string) (*Payload, error) {
	return s.seal(folderKey, recipientPublicKey, aadFolderShare)
}

// DecryptSharedFolderKey is the inverse of EncryptFolderKeyForSharing.
func (s *Service) DecryptSharedFolderKey(p *Payload) ([]byte, error) {
	return s.open(p, aadFolderShare)
}
