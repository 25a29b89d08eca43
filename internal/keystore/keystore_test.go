package keystore

import (
	"errors"
	"testing"

	"photovault/internal/crypto"
)

func TestMasterSlotLifecycle(t *testing.T) {
	s := New()
	if _, err := s.Master(); !errors.Is(err, ErrNoMasterKey) {
		t.Fatalf("expected ErrNoMasterKey, got %v", err)
	}

	key, err := crypto.NewKey()
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	s.SetMaster(key)
	got, err := s.Master()
	if err != nil {
		t.Fatalf("master: %v", err)
	}
	if &got[0] != &key[0] {
		t.Fatal("expected store to hold the installed slice")
	}

	s.ClearMaster()
	if s.HasMaster() {
		t.Fatal("master still present after clear")
	}
	for _, b := range key {
		if b != 0 {
			t.Fatal("master key not zeroized on clear")
		}
	}
}

func TestVaultMapIsolation(t *testing.T) {
	s := New()
	ka, _ := crypto.NewKey()
	s.PutVault("vault-a", ka)

	if !s.IsUnlocked("vault-a") {
		t.Fatal("vault-a should be unlocked")
	}
	if s.IsUnlocked("vault-b") {
		t.Fatal("vault-b must not be unlocked")
	}

	kb, _ := crypto.NewKey()
	s.PutVault("vault-b", kb)
	s.DropVault("vault-a")
	if s.IsUnlocked("vault-a") {
		t.Fatal("vault-a still unlocked after drop")
	}
	if !s.IsUnlocked("vault-b") {
		t.Fatal("dropping vault-a must not affect vault-b")
	}

	if _, ok := s.UnlockedAt("vault-b"); !ok {
		t.Fatal("expected unlock timestamp for vault-b")
	}
}

func TestClearEmptiesEverySlot(t *testing.T) {
	s := New()
	mk, _ := crypto.NewKey()
	vk, _ := crypto.NewKey()
	kp, err := crypto.NewX25519()
	if err != nil {
		t.Fatalf("keypair: %v", err)
	}
	s.SetMaster(mk)
	s.SetKeyPair(kp)
	s.PutVault("v", vk)

	s.Clear()
	if s.HasMaster() {
		t.Fatal("master survived Clear")
	}
	if _, err := s.KeyPair(); !errors.Is(err, ErrNoKeyPair) {
		t.Fatalf("expected ErrNoKeyPair, got %v", err)
	}
	if s.IsUnlocked("v") {
		t.Fatal("vault survived Clear")
	}
	for _, b := range vk {
		if b != 0 {
			t.Fatal("vault key not zeroized on Clear")
		}
	}
}
