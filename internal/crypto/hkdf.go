package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Domain-separation salts, one per derivation purpose. Changing any of
// these invalidates every key derived under it.
const (
	SaltFolder = "photovault/folder/v1"
	SaltFile   = "photovault/file/v1"
	SaltShare  = "photovault/share/v1"
)

// DeriveSubKey deterministically expands parent into an independent 256-bit
// key bound to (salt, info). Same inputs always yield the same key;
// different info strings under the same parent are independent, so derived
// keys never need to be wrapped or stored.
func DeriveSubKey(parent []byte, salt, info string) ([]byte, error) {
	stream := hkdf.New(sha256.New, parent, []byte(salt), []byte(info))
	out := make([]byte, KeySize)
	if _, err := io.ReadFull(stream, out); err != nil {
		return nil, err
	}
	return out, nil
}
