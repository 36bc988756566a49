package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an update or delete targeted an id that does
	// not exist. Lookup misses are not errors; they return ok=false.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail indicates a registration conflict. Matching is
	// exact (case-sensitive).
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrPersistence indicates the underlying storage read or write
	// failed. Use errors.Is to detect it; the cause is in the message.
	ErrPersistence = errors.New("persistence failure")

	// ErrBadID indicates the monotonic id generator met a stored id that
	// is not numeric. Assignment fails rather than producing garbage.
	ErrBadID = errors.New("non-numeric id in collection")
)

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
