package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("build not found")
	ErrExhausted    = errors.New("sku space exhausted")
	ErrInvalidInput = errors.New("invalid input")
)

// FormatError reports a component value that cannot be decoded.
type FormatError struct {
	Token  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Token == "" {
		return "malformed component: " + e.Reason
	}
	return fmt.Sprintf("malformed component %q: %s", e.Token, e.Reason)
}

// StoreIOError wraps a read or write failure of a persisted document.
type StoreIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreIOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreIOError) Unwrap() error { return e.Err }

// IsFormatError reports whether err carries a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsStoreIOError reports whether err carries a *StoreIOError.
func IsStoreIOError(err error) bool {
	var se *StoreIOError
	return errors.As(err, &se)
}
