package service

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that the addressed bot (or mirror entry) does not
// exist in the authoritative store.
var ErrNotFound = errors.New("not found")

// ValidationError reports structurally invalid caller input. It is always
// returned before any store write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a failed primary-path store operation. Mirror
// projection failures are never wrapped in one; they are logged and
// swallowed so a primary write that succeeded still reports success.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
