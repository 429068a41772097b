package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the rating pipeline. Identity and validation failures
// surface to the caller; provider unavailability degrades locally and is
// only ever logged.
var (
	// ErrCountryNotFound is returned when a country identifier is unknown
	// to the store.
	ErrCountryNotFound = errors.New("country not found")

	// ErrMemoryNotFound is returned when a memory note identifier is
	// unknown to the store.
	ErrMemoryNotFound = errors.New("memory note not found")

	// ErrInvalidJudgment is returned when the judgment provider produced a
	// grade outside the fixed scale. The rating is not committed.
	ErrInvalidJudgment = errors.New("invalid judgment")

	// ErrProviderDisabled marks an optional provider with no credential
	// configured. Callers treat it as a documented no-op, not a failure.
	ErrProviderDisabled = errors.New("provider disabled")
)

// ValidationError reports an invalid caller-supplied field on a manual
// override or memory payload. Maps to a 400-equivalent at the API edge.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
