package audit

import "testing"

func TestChainVerify(t *testing.T) {
	l := New()
	l.Append("vault.unlock", "vault-1")
	l.Append("vault.lock", "vault-1")
	l.Append("share.send", "alice")
	if err := l.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got := len(l.Entries()); got != 3 {
		t.Fatalf("entries = %d, want 3", got)
	}
}

func TestChainDetectsTamper(t *testing.T) {
	l := New()
	l.Append("vault.unlock", "vault-1")
	l.Append("vault.lock", "vault-1")
	l.entries[0].Op = "vault.lock"
	if err := l.Verify(); err == nil {
		t.Fatal("expected broken chain after edit")
	}
}
