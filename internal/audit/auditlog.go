// Package audit keeps a hash-chained, in-memory record of key lifecycle
// events (unlock, lock, share, ...). Entries carry operation names and
// identifiers only — never key material.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

type Entry struct {
	TS   int64  `json:"ts"`
	Op   string `json:"op"`
	Ref  string `json:"ref,omitempty"`
	Hash string `json:"hash"`
}

// Log chains each entry's hash over the previous one, so truncation or
// reordering is detectable with Verify.
type Log struct {
	mu       sync.Mutex
	lastHash []byte
	entries  []Entry
}

func New() *Log { return &Log{} }

// Append records an operation against an optional reference (vault ID,
// object ID, recipient).
func (l *Log) Append(op, ref string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	h := sha256.New()
	h.Write(l.lastHash)
	h.Write([]byte(op))
	h.Write([]byte(ref))
	sum := h.Sum(nil)
	l.lastHash = sum
	e := Entry{TS: time.Now().Unix(), Op: op, Ref: ref, Hash: hex.EncodeToString(sum)}
	l.entries = append(l.entries, e)
	return e
}

// Verify recomputes the chain and fails if any entry was altered.
func (l *Log) Verify() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var prev []byte
	for i, e := range l.entries {
		h := sha256.New()
		h.Write(prev)
		h.Write([]byte(e.Op))
		h.Write([]byte(e.Ref))
		sum := h.Sum(nil)
		if hex.EncodeToString(sum) != e.Hash {
			return fmt.Errorf("audit chain broken at entry %d", i)
		}
		prev = sum
	}
	return nil
}

// Entries returns a copy of the recorded chain.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}
