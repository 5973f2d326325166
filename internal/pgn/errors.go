package pgn

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPGN indicates PGN text that cannot be read as a game.
var ErrInvalidPGN = errors.New("invalid PGN")

// PlyError reports where reading a game failed. It matches ErrInvalidPGN
// and the underlying cause with errors.Is.
type PlyError struct {
	Ply   int    // 1-based ply of the offending move, 0 for header errors
	Token string // the text that could not be read
	Err   error  // the underlying error
}

// Error returns the message with ply and token context.
func (e *PlyError) Error() string {
	parts := []string{ErrInvalidPGN.Error()}
	if e.Ply > 0 {
		parts = append(parts, fmt.Sprintf("ply %d", e.Ply))
	}
	if e.Token != "" {
		parts = append(parts, fmt.Sprintf("token %q", e.Token))
	}
	msg := strings.Join(parts, ", ")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrInvalidPGN and the cause.
func (e *PlyError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidPGN}
	}
	return []error{ErrInvalidPGN, e.Err}
}

func plyErrorf(ply int, token, format string, args ...any) *PlyError {
	return &PlyError{Ply: ply, Token: token, Err: fmt.Errorf(format, args...)}
}
