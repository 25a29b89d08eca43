// Package master turns the user's password into the durable master key and
// manages its in-memory lifetime. The master key is derived at login,
// installed in the injected keystore, and destroyed on logout; it never
// touches durable storage in any form.
package master

import (
	"errors"
	"fmt"

	"photovault/internal/crypto"
	"photovault/internal/keystore"
	"photovault/internal/logging"
)

// ErrIncorrectPassword wraps the underlying AEAD failure at the login
// boundary so the UI can show a password-specific message.
var ErrIncorrectPassword = fmt.Errorf("master: incorrect password: %w", crypto.ErrAuthenticationFailure)

// verificationPlaintext is the known value sealed at setup. Successfully
// opening it under a derived key IS the password check; there is no
// separate comparison step.
const verificationPlaintext = "photovault-master-v1"

const aadVerify = "master-verify"

type Manager struct {
	eng   *crypto.Engine
	store *keystore.Store
	log   *logging.Logger
}

func New(eng *crypto.Engine, store *keystore.Store, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{eng: eng, store: store, log: log}
}

// SetupResult is everything the server persists for a first-time setup.
// None of it is secret: the salt is public KDF input and the verification
// blob is only openable with the derived key.
type SetupResult struct {
	KDF          crypto.KDFParams
	Verification []byte
}

// Setup performs first-time initialization: generate a fresh salt, derive
// the master key, install it, and return the salt (inside the KDF params)
// plus a verification ciphertext for later logins.
func (m *Manager) Setup(password string) (*SetupResult, error) {
	return m.SetupWithKDF(password, crypto.DefaultKDF())
}

// SetupWithKDF is Setup with an explicit cost preset, for
// memory-constrained devices that need crypto.MobileKDF.
func (m *Manager) SetupWithKDF(password string, params crypto.KDFParams) (*SetupResult, error) {
	if err := m.eng.Check(); err != nil {
		return nil, err
	}
	key := crypto.DeriveKey([]byte(password), params)
	verification, err := crypto.Seal(key, []byte(verificationPlaintext), []byte(aadVerify))
	if err != nil {
		crypto.Zero(key)
		return nil, err
	}
	m.store.SetMaster(key)
	m.log.Info().Msg("master key installed (first-time setup)")
	return &SetupResult{KDF: params, Verification: verification}, nil
}

// Login derives the master key from password and the stored KDF params,
// proves it correct by opening the verification ciphertext, and installs
// it. On a wrong password the derived key is zeroized and discarded; no
// partial state is left behind.
func (m *Manager) Login(password string, params crypto.KDFParams, verification []byte) error {
	if err := m.eng.Check(); err != nil {
		return err
	}
	key := crypto.DeriveKey([]byte(password), params)
	pt, err := crypto.OpenAny(key, verification, []byte(aadVerify))
	if err != nil {
		crypto.Zero(key)
		if errors.Is(err, crypto.ErrAuthenticationFailure) {
			return ErrIncorrectPassword
		}
		return err
	}
	if string(pt) != verificationPlaintext {
		crypto.Zero(key)
		return ErrIncorrectPassword
	}
	m.store.SetMaster(key)
	m.log.Info().Msg("master key installed")
	return nil
}

// Derive exposes the raw deterministic derivation for callers that manage
// installation themselves (e.g. vault password keys).
func (m *Manager) Derive(password string, params crypto.KDFParams) ([]byte, error) {
	if err := m.eng.Check(); err != nil {
		return nil, err
	}
	return crypto.DeriveKey([]byte(password), params), nil
}

// Clear zeroizes and drops the master key. Invoke on logout and on
// process shutdown.
func (m *Manager) Clear() {
	m.store.ClearMaster()
	m.log.Info().Msg("master key cleared")
}
