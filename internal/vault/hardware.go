package vault

import (
	"context"
	"crypto/sha256"
	"errors"
)

// ErrUnsupportedHardware means the authenticator lacks the PRF extension
// (or returned no PRF output) and cannot protect a vault key.
var ErrUnsupportedHardware = errors.New("vault: authenticator does not support PRF")

// Authenticator abstracts a hardware credential capable of evaluating a
// PRF during an authentication ceremony. The secret never leaves the
// device; only the per-ceremony output is visible, and only transiently.
// Implementations must return ErrUnsupportedHardware when the extension is
// absent.
type Authenticator interface {
	PRF(ctx context.Context, credentialID string, salt []byte) ([]byte, error)
}

// PRFSalt is the fixed per-vault PRF evaluation input. Deterministic so
// every ceremony for the same vault reproduces the same pad.
func PRFSalt(vaultID string) []byte {
	sum := sha256.Sum256([]byte("photovault/prf/v1:" + vaultID))
	return sum[:]
}

// xorUnwrap recovers the raw vault key from the server-held wrap source and
// the authenticator's PRF output, XORing byte-for-byte modulo pad length.
// This is the one place "wrap" means XOR rather than AEAD: the PRF output
// is usable only as a raw pad during the ceremony. The construction is
// malleable in isolation; it is safe only because the server independently
// verifies the authentication assertion before releasing wrapSource, so a
// forged pad cannot be used to impersonate an unlock.
func xorUnwrap(wrapSource, pad []byte) []byte {
	out := make([]byte, len(wrapSource))
	for i := range wrapSource {
		out[i] = wrapSource[i] ^ pad[i%len(pad)]
	}
	return out
}

// XorWrap produces the server-side wrap source for a raw vault key. The
// server calls the equivalent after CreateWithAuthenticator; the client
// version exists for tests and self-hosted setups.
func XorWrap(rawKey, pad []byte) []byte {
	return xorUnwrap(rawKey, pad)
}
