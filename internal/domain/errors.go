package domain

import (
	"errors"
	"fmt"
)

// ErrValidation marks malformed input (blank name, partial location).
// Handlers map this to HTTP 422.
var ErrValidation = errors.New("validation error")

// ErrPermissionDenied marks a mutation the actor is not authorized for,
// such as deleting another user's trip or joining their own.
// Handlers map this to HTTP 403.
var ErrPermissionDenied = errors.New("permission denied")

// ErrNotFound is returned when the target record is absent at mutation
// time. Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrStoreUnavailable marks a transport or backend failure of the
// underlying store. The wrapped message carries the store's own error.
var ErrStoreUnavailable = errors.New("store unavailable")

// StoreError wraps a store-originated failure in ErrStoreUnavailable.
// Domain sentinels pass through untouched so callers can still match them.
func StoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
