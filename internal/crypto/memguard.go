//go:build linux || darwin

package crypto

import "golang.org/x/sys/unix"

// LockMemory pins b so it cannot be swapped to disk. Best-effort: callers
// ignore the error on platforms or ulimits that refuse it.
func LockMemory(b []byte) error { return unix.Mlock(b) }

// UnlockMemory releases a LockMemory pin.
func UnlockMemory(b []byte) error { return unix.Munlock(b) }
