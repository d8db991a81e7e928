package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks malformed or missing input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks an identifier that does not resolve to a record.
	ErrNotFound = errors.New("record not found")
)

// StoreError wraps an underlying persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError returns nil when err is nil so callers can wrap unconditionally.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// Invalidf builds an error matching ErrInvalidArgument.
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
