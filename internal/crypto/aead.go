package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

const (
	// KeySize is the byte length of every symmetric key in the hierarchy.
	KeySize = 32
	// NonceSize is the GCM nonce length prepended to every sealed blob.
	NonceSize = 12
	// TagSize is the GCM authentication tag length.
	TagSize = 16
	// SaltSize is the byte length of per-user KDF salts.
	SaltSize = 32
)

var (
	ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")

	// ErrAuthenticationFailure means the tag check failed: wrong key or
	// tampered ciphertext. At unlock boundaries this is what "wrong
	// password" looks like.
	ErrAuthenticationFailure = errors.New("crypto: message authentication failed")
)

// NewKey returns a fresh random 256-bit symmetric key.
func NewKey() ([]byte, error) {
	k := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		return nil, err
	}
	return k, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext under key with AES-256-GCM and a fresh random
// nonce. Returned layout: [nonce||ciphertext||tag].
func Seal(key, plaintext, aad []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, NonceSize+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, aad), nil
}

// Open decrypts data previously produced by Seal. Any integrity failure
// surfaces as ErrAuthenticationFailure, never as garbage plaintext.
func Open(key, ciphertext, aad []byte) ([]byte, error) {
	if len(ciphertext) < NonceSize+TagSize {
		return nil, ErrCiphertextTooShort
	}
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := ciphertext[:NonceSize]
	ct := ciphertext[NonceSize:]
	pt, err := aead.Open(nil, nonce, ct, aad)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}
	return pt, nil
}
