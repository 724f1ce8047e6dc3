package service

import (
	"errors"
	"fmt"
)

// Error taxonomy of the booking engine. Handlers translate these into
// HTTP statuses with errors.Is; refinements below wrap them with %w so a
// caller can match either the broad class or the specific cause.
var (
	// ErrNotConfigured: hours or policy missing for the requested scope.
	ErrNotConfigured = errors.New("not configured")
	// ErrUnknownReference: a service, professional, booking or tenant id
	// does not resolve.
	ErrUnknownReference = errors.New("unknown reference")
	// ErrPolicyViolation: lead time, max advance, same day or cancellation
	// notice rule broken by a non-internal caller.
	ErrPolicyViolation = errors.New("policy violation")
	// ErrConflict: overlap with an existing booking or schedule row.
	ErrConflict = errors.New("conflict")
	// ErrInvalidRange: start >= end, empty service list, sub-minimum
	// duration.
	ErrInvalidRange = errors.New("invalid range")
)

var (
	ErrBusinessHoursNotConfigured     = fmt.Errorf("%w: business hours", ErrNotConfigured)
	ErrProfessionalHoursNotConfigured = fmt.Errorf("%w: professional hours", ErrNotConfigured)
	ErrPolicyNotConfigured            = fmt.Errorf("%w: booking policy", ErrNotConfigured)

	// ErrWriteConflict is returned when the booking collided at commit
	// time. The caller should refresh availability rather than resubmit.
	ErrWriteConflict = fmt.Errorf("%w: slot taken at write time", ErrConflict)

	// ErrInvalidTransition is returned for status changes that would
	// regress a booking (out of ATTENDED, or re-activating CANCELLED).
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrConflict)
)
