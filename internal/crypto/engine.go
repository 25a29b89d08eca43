package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// ErrEngineUnavailable is returned by every operation gated on an Engine
// whose startup probe failed. Callers should surface it once, prominently;
// no cryptographic operation can proceed without a working engine.
var ErrEngineUnavailable = errors.New("crypto: engine unavailable")

// Engine represents the availability of the platform cryptographic
// facilities, decided exactly once at startup. Components hold a *Engine
// and call Check at each entry point instead of discovering a broken
// CSPRNG mid-operation.
type Engine struct {
	err error
}

// Probe verifies the OS random source is usable and returns the engine.
func Probe() *Engine {
	var buf [16]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		return &Engine{err: fmt.Errorf("%w: csprng probe: %v", ErrEngineUnavailable, err)}
	}
	return &Engine{}
}

// Unavailable returns an engine that rejects every operation with the
// given reason. Used in tests and when the environment is known broken.
func Unavailable(reason string) *Engine {
	return &Engine{err: fmt.Errorf("%w: %s", ErrEngineUnavailable, reason)}
}

// Check returns nil when the engine is usable.
func (e *Engine) Check() error {
	if e == nil {
		return ErrEngineUnavailable
	}
	return e.err
}

// Available reports whether the startup probe succeeded.
func (e *Engine) Available() bool { return e.Check() == nil }
