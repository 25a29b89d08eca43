package crypto

import (
	"bytes"
	"testing"
)

func TestX25519Agreement(t *testing.T) {
	alice, err := NewX25519()
	if err != nil {
		t.Fatalf("alice: %v", err)
	}
	bob, err := NewX25519()
	if err != nil {
		t.Fatalf("bob: %v", err)
	}
	s1, err := SharedSecret(alice.Priv, bob.Pub)
	if err != nil {
		t.Fatalf("alice shared: %v", err)
	}
	s2, err := SharedSecret(bob.Priv, alice.Pub)
	if err != nil {
		t.Fatalf("bob shared: %v", err)
	}
	if !bytes.Equal(s1, s2) {
		t.Fatal("shared secrets disagree")
	}
}

func TestPublicKeyCodec(t *testing.T) {
	kp, err := NewX25519()
	if err != nil {
		t.Fatalf("keypair: %v", err)
	}
	pub, err := DecodePublicKey(EncodePublicKey(kp.Pub))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(pub.Bytes(), kp.Pub.Bytes()) {
		t.Fatal("public key codec mismatch")
	}
	if _, err := DecodePublicKey("not-base64!!"); err == nil {
		t.Fatal("expected error for malformed encoding")
	}
	if _, err := DecodePublicKey("AAAA"); err == nil {
		t.Fatal("expected error for wrong-length key")
	}
}
