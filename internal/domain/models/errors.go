package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the analytics domain. Fit failures never cross a
// component boundary: engines absorb them into fallback models, so only the
// three below (plus context errors) are visible to callers.
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrNotFound         = errors.New("not found")
	ErrPersistence      = errors.New("persistence failure")
)

// InsufficientDataError reports how far short the input fell.
func InsufficientDataError(what string, got, want int) error {
	return fmt.Errorf("%w: %s has %d points, need %d", ErrInsufficientData, what, got, want)
}

// NotFoundError reports a missing entity by kind and id.
func NotFoundError(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}

// PersistenceError wraps a storage failure so callers can distinguish it from
// model errors.
func PersistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
