package platform

import (
	"errors"
	"sync"
)

var ErrKeychainMiss = errors.New("platform: no entry for key id")

// Keychain persists small secrets (session keys, device key handles)
// across process restarts. The interface is the seam for OS-native
// backends; MemKeychain stands in where none is wired.
type Keychain interface {
	Store(keyID string, secret []byte) error
	Load(keyID string) ([]byte, error)
	Erase(keyID string) error
}

// MemKeychain is a process-local Keychain. It survives nothing, which is
// the right behavior for tests and for platforms without a native store:
// losing the session key only forces a fresh unlock.
type MemKeychain struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemKeychain() *MemKeychain {
	return &MemKeychain{entries: make(map[string][]byte)}
}

func (m *MemKeychain) Store(keyID string, secret []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[keyID] = append([]byte(nil), secret...)
	return nil
}

func (m *MemKeychain) Load(keyID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	secret, ok := m.entries[keyID]
	if !ok {
		return nil, ErrKeychainMiss
	}
	return append([]byte(nil), secret...), nil
}

func (m *MemKeychain) Erase(keyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if secret, ok := m.entries[keyID]; ok {
		for i := range secret {
			secret[i] = 0
		}
		delete(m.entries, keyID)
	}
	return nil
}
