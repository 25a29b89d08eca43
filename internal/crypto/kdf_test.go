package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	p := DefaultKDF()
	k1 := DeriveKey([]byte("correct horse battery staple"), p)
	k2 := DeriveKey([]byte("correct horse battery staple"), p)
	if !bytes.Equal(k1, k2) {
		t.Fatal("same password and salt must derive identical keys")
	}
	if len(k1) != KeySize {
		t.Fatalf("derived key length = %d, want %d", len(k1), KeySize)
	}
}

func TestDeriveKeySaltSeparation(t *testing.T) {
	p1 := DefaultKDF()
	p2 := DefaultKDF()
	if bytes.Equal(p1.Salt, p2.Salt) {
		t.Fatal("expected fresh salts per preset call")
	}
	pw := []byte("hunter2hunter2")
	if bytes.Equal(DeriveKey(pw, p1), DeriveKey(pw, p2)) {
		t.Fatal("different salts must derive different keys")
	}
}

func TestSaltCodec(t *testing.T) {
	p := DefaultKDF()
	got, err := DecodeSalt(EncodeSalt(p.Salt))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, p.Salt) {
		t.Fatal("salt codec mismatch")
	}
}

func TestDeriveSubKeyDeterministicAndSeparated(t *testing.T) {
	parent := randBytes(t, KeySize)
	a1, err := DeriveSubKey(parent, SaltFolder, "folder:42")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	a2, err := DeriveSubKey(parent, SaltFolder, "folder:42")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if !bytes.Equal(a1, a2) {
		t.Fatal("same (parent, context) must derive identical keys")
	}

	b, err := DeriveSubKey(parent, SaltFolder, "folder:43")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if bytes.Equal(a1, b) {
		t.Fatal("different contexts must be independent")
	}

	c, err := DeriveSubKey(parent, SaltFile, "folder:42")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if bytes.Equal(a1, c) {
		t.Fatal("different purpose salts must be independent")
	}
}

func TestEngineProbe(t *testing.T) {
	eng := Probe()
	if err := eng.Check(); err != nil {
		t.Fatalf("probe on a healthy platform: %v", err)
	}
	bad := Unavailable("no secure context")
	if err := bad.Check(); !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
	if bad.Available() {
		t.Fatal("unavailable engine reported available")
	}
}
