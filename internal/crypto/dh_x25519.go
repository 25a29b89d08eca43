package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// DHKey is an x25519 key-agreement pair. The public half is safe to upload;
// the private half lives only in process memory.
type DHKey struct {
	Priv *ecdh.PrivateKey
	Pub  *ecdh.PublicKey
}

// NewX25519 generates a key-agreement pair. Used both for the long-term
// per-user pair and for the one-shot ephemeral pairs minted per share.
func NewX25519() (*DHKey, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &DHKey{Priv: priv, Pub: priv.PublicKey()}, nil
}

// SharedSecret runs the x25519 agreement between priv and peer.
func SharedSecret(priv *ecdh.PrivateKey, peer *ecdh.PublicKey) ([]byte, error) {
	return priv.ECDH(peer)
}

// EncodePublicKey encodes the raw 32-byte public key as std base64.
func EncodePublicKey(pub *ecdh.PublicKey) string {
	return base64.StdEncoding.EncodeToString(pub.Bytes())
}

// DecodePublicKey reverses EncodePublicKey.
func DecodePublicKey(s string) (*ecdh.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode public key: %w", err)
	}
	pub, err := ecdh.X25519().NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("crypto: parse public key: %w", err)
	}
	return pub, nil
}
