// Package logging wraps zerolog with the constructors used across the
// client. Key material and plaintext never appear in log fields; log only
// identifiers and operation names.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger embeds zerolog.Logger so the full zerolog API is available.
type Logger struct {
	zerolog.Logger
}

// New returns a JSON logger on stderr tagged with the given component role.
func New(role string) *Logger {
	l := zerolog.New(os.Stderr).With().
		Str("role", role).
		Timestamp().
		Logger()
	return &Logger{l}
}

// NewLevel is New with an explicit minimum level ("debug", "info", ...).
// Unknown levels fall back to info.
func NewLevel(role, level string) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	l := zerolog.New(os.Stderr).Level(lvl).With().
		Str("role", role).
		Timestamp().
		Logger()
	return &Logger{l}
}

// Nop returns a logger that discards everything. For tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}
