package crypto

import (
	"crypto/rand"
	"io"

	xchacha "golang.org/x/crypto/chacha20poly1305"
)

// OpenAny first tries the current GCM framing; if the tag check fails, it
// falls back to the XChaCha20-Poly1305 layout (24-byte nonce prefix) used by
// clients before the AES-GCM migration. Old object blobs and vault wraps
// remain readable without re-encryption.
func OpenAny(key, ciphertext, aad []byte) ([]byte, error) {
	if pt, err := Open(key, ciphertext, aad); err == nil {
		return pt, nil
	}
	a, err := xchacha.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < xchacha.NonceSizeX+TagSize {
		return nil, ErrCiphertextTooShort
	}
	nonce := ciphertext[:xchacha.NonceSizeX]
	ct := ciphertext[xchacha.NonceSizeX:]
	pt, err := a.Open(nil, nonce, ct, aad)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}
	return pt, nil
}

// SealLegacy produces the pre-migration XChaCha framing. Kept for tests and
// for writing blobs readable by clients that have not migrated yet.
func SealLegacy(key, plaintext, aad []byte) ([]byte, error) {
	a, err := xchacha.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, xchacha.NonceSizeX)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+a.Overhead())
	out = append(out, nonce...)
	return a.Seal(out, nonce, plaintext, aad), nil
}
