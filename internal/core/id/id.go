// Package id provides UUIDv7 generation for all entities.
// UUIDv7 is time-ordered, so sorting rows by id follows creation order.
package id

import (
	"github.com/google/uuid"

	"retailops/internal/core/apperror"
)

// ID is a type alias for UUID, used across all entities.
type ID = uuid.UUID

// New generates a new UUIDv7 (time-ordered UUID).
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 if V7 fails (should never happen)
		return uuid.New()
	}
	return v
}

// Parse converts string to ID.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// ParseField parses a request-supplied id and reports a validation error naming the field.
func ParseField(field, s string) (ID, error) {
	v, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperror.NewValidation("invalid "+field+" format").
			WithDetail("field", field).
			WithDetail("value", s)
	}
	return v, nil
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}

// Less orders ids by their byte representation, which for UUIDv7 is creation order.
func Less(a, b ID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
