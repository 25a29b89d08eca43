package vault

import (
	"errors"
	"fmt"

	"photovault/internal/crypto"
)

var (
	// ErrVaultLocked means the operation needs an unlocked vault and the
	// in-memory map has no entry. The UI should prompt to unlock, not
	// silently no-op.
	ErrVaultLocked = errors.New("vault: locked")

	// ErrIncorrectPassword wraps the AEAD failure at the unlock boundary.
	ErrIncorrectPassword = fmt.Errorf("vault: incorrect password: %w", crypto.ErrAuthenticationFailure)

	// ErrTooManyAttempts means the per-vault unlock limiter tripped.
	ErrTooManyAttempts = errors.New("vault: too many unlock attempts")
)
