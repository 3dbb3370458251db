// Package id wraps UUID generation for every entity in the system.
// IDs are UUIDv7: the leading 48 bits carry a Unix timestamp, so ledger
// rows sort chronologically and insert with good B-tree locality.
package id

import "github.com/google/uuid"

// ID is an alias so callers get the full uuid.UUID API without importing
// the library everywhere.
type ID = uuid.UUID

// New generates a time-ordered UUIDv7 (RFC 9562). The random source is
// the only failure mode, in which case a plain V4 is returned instead.
func New() ID {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v7
}

// Parse converts a string to an ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse panics on a malformed string. For constants and tests only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns the zero-value ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether id is the zero value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
