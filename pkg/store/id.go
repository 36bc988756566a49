package store

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// nextNumericID returns one greater than the largest numeric id in ids,
// or "1" for an empty collection. Any non-numeric id fails the whole
// assignment with ErrBadID.
func nextNumericID(ids []string) (string, error) {
	max := 0
	for _, id := range ids {
		n, err := strconv.Atoi(id)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrBadID, id)
		}
		if n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1), nil
}

// newOpaqueID returns a random identifier for document-store records.
func newOpaqueID() string {
	return uuid.NewString()
}
