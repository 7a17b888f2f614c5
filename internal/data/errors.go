package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrCategoryNotFound is returned when a service category is not found.
	ErrCategoryNotFound = errors.New("service category not found")
	// ErrServiceNotFound is returned when a service is not found.
	ErrServiceNotFound = errors.New("service not found")
	// ErrBookingNotFound is returned when a booking is not found.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrInvalidStatusTransition is returned when a booking status change is not a legal lifecycle step.
	ErrInvalidStatusTransition = errors.New("invalid booking status transition")
)
