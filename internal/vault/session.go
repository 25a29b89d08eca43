package vault

import "photovault/internal/crypto"

// Session is the reload-survival material returned by every successful
// create/unlock: the vault key wrapped under a freshly generated random
// session key. The caller keeps SessionKey alive across the reload boundary
// (page memory, OS keychain) — never in durable storage — and feeds both
// back into StoreFromSession. The server bounds how long the wrapped copy
// stays redeemable.
type Session struct {
	SessionWrappedVaultKey []byte
	SessionKey             []byte
}

func newSession(vaultKey []byte, vaultID string) (*Session, error) {
	sk, err := crypto.NewKey()
	if err != nil {
		return nil, err
	}
	wrapped, err := crypto.Seal(sk, vaultKey, aadSessionWrap(vaultID))
	if err != nil {
		crypto.Zero(sk)
		return nil, err
	}
	return &Session{SessionWrappedVaultKey: wrapped, SessionKey: sk}, nil
}
