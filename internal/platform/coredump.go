//go:build linux || darwin

package platform

import "golang.org/x/sys/unix"

// DisableCoreDumps zeroes the core rlimit so a crash never writes key
// material to disk. Call once at startup, before any key is derived.
func DisableCoreDumps() error {
	rlim := unix.Rlimit{Cur: 0, Max: 0}
	return unix.Setrlimit(unix.RLIMIT_CORE, &rlim)
}
