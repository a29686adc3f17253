// Package common defines shared constants and sentinel errors used across
// duogallery components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Catalog-level errors.
	ErrorNotFound = errors.New("not found")

	// Reservation lifecycle errors.
	ErrorAlreadyCommitted = errors.New("reservation already committed")

	// Photo lifecycle errors.
	ErrorNotDeleted = errors.New("photo is not in the recycle bin")

	// Request shape errors, rejected before any state is touched.
	ErrorValidation = errors.New("validation error")

	// Admission errors. Match with errors.Is; the concrete value usually is
	// a *QuotaError carrying the remaining headroom.
	ErrorQuotaExceeded = errors.New("quota exceeded")

	// Generic internal failure (persistence and other I/O).
	ErrorInternal = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrUnauthorized = errors.New("unauthorized")
)

// QuotaError reports a rejected admission together with the remaining
// headroom, so the client can tell the user how much still fits.
type QuotaError struct {
	// Reason is a short human-readable explanation ("daily upload limit
	// reached", "storage limit exceeded").
	Reason string
	// RemainingBytes is the byte headroom still available under the cap.
	// Negative values are reported as zero.
	RemainingBytes int64
}

func (e *QuotaError) Error() string {
	remaining := e.RemainingBytes
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("%s (%s remaining)", e.Reason, FormatBytes(remaining))
}

// Is makes errors.Is(err, ErrorQuotaExceeded) succeed for *QuotaError.
func (e *QuotaError) Is(target error) bool {
	return target == ErrorQuotaExceeded
}
