// Package keystore holds every in-memory key slot with an explicit
// lifecycle: populated by login/unlock, read by encrypt/decrypt, emptied by
// lock/logout. Nothing here is ever written to durable storage; a process
// restart always starts from locked.
package keystore

import (
	"errors"
	"sync"
	"time"

	"photovault/internal/crypto"
)

var (
	// ErrNoMasterKey means the operation requires a prior login.
	ErrNoMasterKey = errors.New("keystore: no master key installed")
	// ErrNoKeyPair means the operation requires the user's sharing key pair.
	ErrNoKeyPair = errors.New("keystore: no key pair installed")
)

type vaultEntry struct {
	key        []byte
	unlockedAt time.Time
}

// Store is constructor-injected into every component that needs key
// access, so isolated sessions (and tests) never share state.
type Store struct {
	mu      sync.RWMutex
	master  []byte
	keyPair *crypto.DHKey
	vaults  map[string]vaultEntry
}

func New() *Store {
	return &Store{vaults: make(map[string]vaultEntry)}
}

// SetMaster installs the master key, replacing and zeroizing any previous
// one. The store owns the slice from here on.
func (s *Store) SetMaster(key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.master != nil {
		crypto.Zero(s.master)
	}
	_ = crypto.LockMemory(key)
	s.master = key
}

// Master returns the installed master key, or ErrNoMasterKey. The slice is
// valid until the next ClearMaster/Clear; callers must not retain it.
func (s *Store) Master() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.master == nil {
		return nil, ErrNoMasterKey
	}
	return s.master, nil
}

func (s *Store) HasMaster() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.master != nil
}

func (s *Store) ClearMaster() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearMasterLocked()
}

func (s *Store) clearMasterLocked() {
	if s.master != nil {
		crypto.Zero(s.master)
		_ = crypto.UnlockMemory(s.master)
		s.master = nil
	}
}

// SetKeyPair installs the user's long-term sharing pair.
func (s *Store) SetKeyPair(kp *crypto.DHKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyPair = kp
}

func (s *Store) KeyPair() (*crypto.DHKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.keyPair == nil {
		return nil, ErrNoKeyPair
	}
	return s.keyPair, nil
}

func (s *Store) ClearKeyPair() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyPair = nil
}

// PutVault installs an unlocked vault key. Concurrent unlocks of the same
// vault converge on the same key bytes, so last writer wins is safe.
func (s *Store) PutVault(vaultID string, key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.vaults[vaultID]; ok {
		crypto.Zero(old.key)
	}
	_ = crypto.LockMemory(key)
	s.vaults[vaultID] = vaultEntry{key: key, unlockedAt: time.Now()}
}

// VaultKey returns the unlocked key for vaultID, if any.
func (s *Store) VaultKey(vaultID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.vaults[vaultID]
	if !ok {
		return nil, false
	}
	return e.key, true
}

func (s *Store) IsUnlocked(vaultID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.vaults[vaultID]
	return ok
}

// UnlockedAt reports when vaultID was installed.
func (s *Store) UnlockedAt(vaultID string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.vaults[vaultID]
	return e.unlockedAt, ok
}

func (s *Store) DropVault(vaultID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.vaults[vaultID]; ok {
		crypto.Zero(e.key)
		_ = crypto.UnlockMemory(e.key)
		delete(s.vaults, vaultID)
	}
}

func (s *Store) DropAllVaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropAllVaultsLocked()
}

func (s *Store) dropAllVaultsLocked() {
	for id, e := range s.vaults {
		crypto.Zero(e.key)
		_ = crypto.UnlockMemory(e.key)
		delete(s.vaults, id)
	}
}

// Clear empties every slot. Call on logout and process shutdown.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearMasterLocked()
	s.keyPair = nil
	s.dropAllVaultsLocked()
}
