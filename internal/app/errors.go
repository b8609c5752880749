package app

import (
	"errors"
	"fmt"
)

// Session-management precondition violations. These cause no state mutation.
var (
	ErrNotFound         = errors.New("session not found")
	ErrConflict         = errors.New("session already exists")
	ErrInvalidOperation = errors.New("invalid session operation")
)

// ErrNotConfigured means no model client is available; configure one with
// /config before sending.
var ErrNotConfigured = errors.New("model client not configured")

// ErrUnknownCommand reports an unrecognized slash command.
var ErrUnknownCommand = errors.New("unknown command")

// PersistenceError wraps a failed read or write of the session document.
// It is never fatal: load failures fall back to a default session set and
// save failures leave in-memory state authoritative.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
