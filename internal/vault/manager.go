// Package vault manages the lifecycle of vault keys: independent symmetric
// keys, each protecting an isolated collection, unlockable by password or
// hardware authenticator. Unlocked keys live only in the injected keystore;
// a page reload starts from locked unless the session path re-hydrates it.
package vault

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"photovault/internal/audit"
	"photovault/internal/crypto"
	"photovault/internal/keystore"
	"photovault/internal/logging"
)

func aadVaultWrap(vaultID string) []byte   { return []byte("vault-key:" + vaultID) }
func aadSessionWrap(vaultID string) []byte { return []byte("session-key:" + vaultID) }

// Objects inside a vault are sealed directly under the vault key, not via a
// per-object content key. Private (non-vault) objects use the per-object
// model in internal/content; the distinct AAD keeps the two framings from
// ever being confused for one another.
var aadVaultObject = []byte("vault-object")

// LockNotifier tells the server a vault locked so its session window closes
// in lockstep. Best effort: a lost notification only means the server
// thinks the vault is still unlocked, which leaks nothing because the
// client no longer holds the key.
type LockNotifier interface {
	NotifyLock(ctx context.Context, vaultID string)
}

type Config struct {
	Engine   *crypto.Engine
	Store    *keystore.Store
	Notifier LockNotifier // optional
	Audit    *audit.Log   // optional
	Logger   *logging.Logger

	// MaxUnlockAttempts caps the per-vault password-attempt burst.
	// Zero means the default of 5.
	MaxUnlockAttempts int
}

type Manager struct {
	eng      *crypto.Engine
	store    *keystore.Store
	notifier LockNotifier
	auditLog *audit.Log
	limiter  *unlockLimiter
	log      *logging.Logger
}

func New(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	burst := cfg.MaxUnlockAttempts
	if burst <= 0 {
		burst = 5
	}
	return &Manager{
		eng:      cfg.Engine,
		store:    cfg.Store,
		notifier: cfg.Notifier,
		auditLog: cfg.Audit,
		// A burst of password attempts per vault, refilling one per
		// minute, buckets forgotten after an idle hour.
		limiter: newUnlockLimiter(rate.Limit(1.0/60.0), burst, time.Hour),
		log:     cfg.Logger,
	}
}

func (m *Manager) auditAppend(op, ref string) {
	if m.auditLog != nil {
		m.auditLog.Append(op, ref)
	}
}

// CreateResult is everything the server persists for a password vault,
// plus the session material the caller installs for reload survival.
type CreateResult struct {
	VaultID         string
	Name            string
	WrappedVaultKey []byte
	KDF             crypto.KDFParams
	Session         *Session
}

// CreateWithPassword generates a fresh vault key, wraps it under a key
// derived from the vault password with a fresh salt, and leaves the vault
// unlocked in memory.
func (m *Manager) CreateWithPassword(ctx context.Context, name, password string) (*CreateResult, error) {
	if err := m.eng.Check(); err != nil {
		return nil, err
	}
	vk, err := crypto.NewKey()
	if err != nil {
		return nil, err
	}
	vaultID := uuid.NewString()

	params := crypto.DefaultKDF()
	pk := crypto.DeriveKey([]byte(password), params)
	defer crypto.Zero(pk)

	wrapped, err := crypto.Seal(pk, vk, aadVaultWrap(vaultID))
	if err != nil {
		crypto.Zero(vk)
		return nil, err
	}
	sess, err := newSession(vk, vaultID)
	if err != nil {
		crypto.Zero(vk)
		return nil, err
	}

	m.store.PutVault(vaultID, vk)
	m.auditAppend("vault.create", vaultID)
	m.log.Info().Str("vault_id", vaultID).Str("name", name).Msg("vault created")
	return &CreateResult{
		VaultID:         vaultID,
		Name:            name,
		WrappedVaultKey: wrapped,
		KDF:             params,
		Session:         sess,
	}, nil
}

// HardwareCreateResult carries the raw vault key out for the server-assisted
// wrap step: the authenticator secret only exists during a ceremony the
// server orchestrates, so the XOR wrap happens there. RawVaultKey must be
// zeroized by the caller once transmitted.
type HardwareCreateResult struct {
	VaultID      string
	Name         string
	CredentialID string
	RawVaultKey  []byte
	Session      *Session
}

// CreateWithAuthenticator generates a vault key bound to a hardware
// credential and leaves the vault unlocked in memory.
func (m *Manager) CreateWithAuthenticator(ctx context.Context, name, credentialID string) (*HardwareCreateResult, error) {
	if err := m.eng.Check(); err != nil {
		return nil, err
	}
	vk, err := crypto.NewKey()
	if err != nil {
		return nil, err
	}
	vaultID := uuid.NewString()

	raw := append([]byte(nil), vk...)
	sess, err := newSession(vk, vaultID)
	if err != nil {
		crypto.Zero(vk)
		crypto.Zero(raw)
		return nil, err
	}

	m.store.PutVault(vaultID, vk)
	m.auditAppend("vault.create", vaultID)
	m.log.Info().Str("vault_id", vaultID).Str("name", name).Msg("hardware vault created")
	return &HardwareCreateResult{
		VaultID:      vaultID,
		Name:         name,
		CredentialID: credentialID,
		RawVaultKey:  raw,
		Session:      sess,
	}, nil
}

// UnlockWithPassword derives the password key and attempts the unwrap.
// A tag failure surfaces as ErrIncorrectPassword with no state change; on
// success the vault key is installed and fresh session material returned.
func (m *Manager) UnlockWithPassword(ctx context.Context, vaultID, password string, wrappedVaultKey []byte, params crypto.KDFParams) (*Session, error) {
	if err := m.eng.Check(); err != nil {
		return nil, err
	}
	if !m.limiter.allow(vaultID) {
		return nil, ErrTooManyAttempts
	}
	pk := crypto.DeriveKey([]byte(password), params)
	defer crypto.Zero(pk)

	vk, err := crypto.OpenAny(pk, wrappedVaultKey, aadVaultWrap(vaultID))
	if err != nil {
		if errors.Is(err, crypto.ErrAuthenticationFailure) {
			return nil, ErrIncorrectPassword
		}
		return nil, err
	}
	sess, err := newSession(vk, vaultID)
	if err != nil {
		crypto.Zero(vk)
		return nil, err
	}
	m.store.PutVault(vaultID, vk)
	m.auditAppend("vault.unlock", vaultID)
	m.log.Info().Str("vault_id", vaultID).Msg("vault unlocked")
	return sess, nil
}

// UnlockWithAuthenticator recovers the raw vault key by XORing the
// authenticator's PRF output against the server-provided wrap source, then
// installs it exactly as the password path does. The server has already
// verified the authentication assertion before releasing wrapSource.
func (m *Manager) UnlockWithAuthenticator(ctx context.Context, vaultID string, authn Authenticator, credentialID string, wrapSource []byte) (*Session, error) {
	if err := m.eng.Check(); err != nil {
		return nil, err
	}
	if len(wrapSource) != crypto.KeySize {
		return nil, errors.New("vault: wrap source must be key-sized")
	}
	pad, err := authn.PRF(ctx, credentialID, PRFSalt(vaultID))
	if err != nil {
		return nil, err
	}
	if len(pad) == 0 {
		return nil, ErrUnsupportedHardware
	}
	vk := xorUnwrap(wrapSource, pad)
	crypto.Zero(pad)

	sess, err := newSession(vk, vaultID)
	if err != nil {
		crypto.Zero(vk)
		return nil, err
	}
	m.store.PutVault(vaultID, vk)
	m.auditAppend("vault.unlock.hw", vaultID)
	m.log.Info().Str("vault_id", vaultID).Msg("vault unlocked via authenticator")
	return sess, nil
}

// StoreFromSession re-establishes unlocked state after a reload from
// session material the caller retained. No slow KDF, no ceremony; the
// server's session window bounds how long this stays possible.
func (m *Manager) StoreFromSession(vaultID string, sessionWrappedVaultKey, sessionKey []byte) error {
	if err := m.eng.Check(); err != nil {
		return err
	}
	vk, err := crypto.Open(sessionKey, sessionWrappedVaultKey, aadSessionWrap(vaultID))
	if err != nil {
		return err
	}
	m.store.PutVault(vaultID, vk)
	m.auditAppend("vault.rehydrate", vaultID)
	m.log.Debug().Str("vault_id", vaultID).Msg("vault re-hydrated from session")
	return nil
}

func (m *Manager) IsUnlocked(vaultID string) bool {
	return m.store.IsUnlocked(vaultID)
}

// Key returns the unlocked vault key or ErrVaultLocked.
func (m *Manager) Key(vaultID string) ([]byte, error) {
	vk, ok := m.store.VaultKey(vaultID)
	if !ok {
		return nil, ErrVaultLocked
	}
	return vk, nil
}

// Lock drops the in-memory key and notifies the server best-effort.
func (m *Manager) Lock(ctx context.Context, vaultID string) {
	m.store.DropVault(vaultID)
	m.auditAppend("vault.lock", vaultID)
	m.log.Info().Str("vault_id", vaultID).Msg("vault locked")
	if m.notifier != nil {
		go func() {
			nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			m.notifier.NotifyLock(nctx, vaultID)
		}()
	}
}

// LockAll clears every unlocked vault. Call on logout and page unload.
func (m *Manager) LockAll(ctx context.Context) {
	m.store.DropAllVaults()
	m.auditAppend("vault.lock_all", "")
	m.log.Info().Msg("all vaults locked")
}

// EncryptForVault seals plaintext directly under the vault key.
func (m *Manager) EncryptForVault(vaultID string, plaintext []byte) ([]byte, error) {
	if err := m.eng.Check(); err != nil {
		return nil, err
	}
	vk, err := m.Key(vaultID)
	if err != nil {
		return nil, err
	}
	return crypto.Seal(vk, plaintext, aadVaultObject)
}

// DecryptForVault opens a vault object, accepting the legacy framing for
// blobs sealed before the GCM migration.
func (m *Manager) DecryptForVault(vaultID string, ciphertext []byte) ([]byte, error) {
	if err := m.eng.Check(); err != nil {
		return nil, err
	}
	vk, err := m.Key(vaultID)
	if err != nil {
		return nil, err
	}
	return crypto.OpenAny(vk, ciphertext, aadVaultObject)
}

// PasswordRotation is the replacement wrap the server persists after a
// vault password change.
type PasswordRotation struct {
	WrappedVaultKey []byte
	KDF             crypto.KDFParams
}

// RotatePassword re-wraps the unlocked vault key under a new password with
// a fresh salt. Object ciphertexts are untouched.
func (m *Manager) RotatePassword(ctx context.Context, vaultID, newPassword string) (*PasswordRotation, error) {
	if err := m.eng.Check(); err != nil {
		return nil, err
	}
	vk, err := m.Key(vaultID)
	if err != nil {
		return nil, err
	}
	params := crypto.DefaultKDF()
	pk := crypto.DeriveKey([]byte(newPassword), params)
	defer crypto.Zero(pk)

	wrapped, err := crypto.Seal(pk, vk, aadVaultWrap(vaultID))
	if err != nil {
		return nil, err
	}
	m.auditAppend("vault.rotate", vaultID)
	m.log.Info().Str("vault_id", vaultID).Msg("vault password rotated")
	return &PasswordRotation{WrappedVaultKey: wrapped, KDF: params}, nil
}
