package cache

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is against a *StoreError.
var (
	// ErrUnreadable indicates a persisted entry could not be read or decoded
	ErrUnreadable = errors.New("cache entry unreadable")

	// ErrWriteFailed indicates an entry could not be persisted
	ErrWriteFailed = errors.New("cache write failed")
)

// StoreErrorKind categorises a cache store failure.
type StoreErrorKind int

const (
	StoreUnreadable StoreErrorKind = iota + 1
	StoreWriteFailed
)

func (k StoreErrorKind) String() string {
	switch k {
	case StoreUnreadable:
		return "unreadable"
	case StoreWriteFailed:
		return "write failed"
	}
	return "unknown"
}

// StoreError reports a cache store failure for one key.
type StoreError struct {
	Kind StoreErrorKind
	Key  Key
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Key, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is lets errors.Is match the kind sentinels.
func (e *StoreError) Is(target error) bool {
	switch e.Kind {
	case StoreUnreadable:
		return target == ErrUnreadable
	case StoreWriteFailed:
		return target == ErrWriteFailed
	}
	return false
}

func unreadable(key Key, err error) error {
	return &StoreError{Kind: StoreUnreadable, Key: key, Err: err}
}

func writeFailed(key Key, err error) error {
	return &StoreError{Kind: StoreWriteFailed, Key: key, Err: err}
}
