package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found, including when
	// it exists but belongs to another tenant
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrOfferNotConvertible is returned when converting an offer that is
	// not in a convertible status or already has a work
	ErrOfferNotConvertible = errors.New("offer cannot be converted in its current status")

	// ErrBillingAlreadyIssued is returned when issuing a billing twice
	ErrBillingAlreadyIssued = errors.New("billing has already been issued")

	// ErrWorkNotStuck is returned when stuck-work remediation targets a
	// work that is not actually stuck
	ErrWorkNotStuck = errors.New("work is not stuck")

	// ErrExternalService is returned when an upstream provider call fails
	ErrExternalService = errors.New("external service error")
)
