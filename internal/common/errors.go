// Package common defines shared sentinel errors used across the archive's
// repositories and services. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level outcomes recovered locally into result values.

	// ErrNotFound means the record does not exist or belongs to another
	// account; the two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate means the (owner, fingerprint) pair is already stored.
	// Ingestion callers treat it as "already have this", not as a failure.
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidArgument covers malformed ids, empty required fields and
	// batch sizes over the configured cap.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorageUnavailable wraps persistence-layer failures. Fatal to the
	// calling request; logged and surfaced upward, never swallowed.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// StorageError marks a persistence-layer failure so callers can classify it
// with errors.Is(err, ErrStorageUnavailable). msg names the failed step.
func StorageError(msg string, err error) error {
	return fmt.Errorf("%s: %v: %w", msg, err, ErrStorageUnavailable)
}
