package models

import (
	"errors"
	"fmt"
)

// ValidationError is a malformed or incomplete input. It never mutates state.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigError is an unknown game, bucket or mode passed when starting a session
type ConfigError struct {
	Field string
	Value string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// NotFoundError means a referenced user, game or bucket does not exist.
// Submissions fail with it before any mutation.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// PersistenceError wraps a backend failure. A submission that fails with it
// has not been applied.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Persistence wraps err as a PersistenceError unless it already is one or is nil
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError or ConfigError
func IsValidation(err error) bool {
	var ve ValidationError
	var ce ConfigError
	return errors.As(err, &ve) || errors.As(err, &ce)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
