package crypto

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

// KDFParams carries the argon2id cost parameters and the per-user salt.
// The server persists them next to the wrapped key material; the salt is
// immutable once created and is not secret.
type KDFParams struct {
	M    uint32 `json:"m"`
	T    uint32 `json:"t"`
	P    uint8  `json:"p"`
	Salt []byte `json:"salt"`
}

// DefaultKDF returns the desktop/browser cost preset with a fresh salt.
func DefaultKDF() KDFParams {
	salt := make([]byte, SaltSize)
	_, _ = rand.Read(salt)
	return KDFParams{M: 64 * 1024, T: 3, P: 4, Salt: salt}
}

// MobileKDF returns a lighter preset for memory-constrained devices.
func MobileKDF() KDFParams {
	salt := make([]byte, SaltSize)
	_, _ = rand.Read(salt)
	return KDFParams{M: 32 * 1024, T: 3, P: 4, Salt: salt}
}

// DeriveKey stretches a low-entropy secret into a 256-bit symmetric key.
// Deterministic: the same (secret, params) pair always yields the same key,
// which is what lets "verify password" be "attempt to unwrap".
func DeriveKey(secret []byte, p KDFParams) []byte {
	return argon2.IDKey(secret, p.Salt, p.T, p.M, p.P, KeySize)
}

func EncodeSalt(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeSalt(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
