//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// BookingStatus tracks a booking through its lifecycle.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// Valid reports whether the booking status is supported.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle step.
// Pending work may start or be cancelled; in-progress work may finish or be
// cancelled; terminal states never change.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusInProgress || next == BookingStatusCancelled
	case BookingStatusInProgress:
		return next == BookingStatusCompleted || next == BookingStatusCancelled
	default:
		return false
	}
}

// ParseBookingStatus normalizes a status string and reports whether it is supported.
func ParseBookingStatus(value string) (BookingStatus, bool) {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(value)))
	if status.Valid() {
		return status, true
	}
	return "", false
}

// Booking represents a customer's request for a service at a scheduled time.
type Booking struct {
	ID            string        `json:"id"                       db:"id"`
	CustomerID    string        `json:"customer_id"              db:"customer_id"`
	ServiceID     string        `json:"service_id"               db:"service_id"`
	StaffID       *string       `json:"staff_id,omitempty"       db:"staff_id"`
	Status        BookingStatus `json:"status"                   db:"status"`
	ScheduledDate time.Time     `json:"scheduled_date"           db:"scheduled_date"`
	ScheduledTime *string       `json:"scheduled_time,omitempty" db:"scheduled_time"`
	Address       string        `json:"address"                  db:"address"`
	Notes         *string       `json:"notes,omitempty"          db:"notes"`
	TotalPrice    float64       `json:"total_price"              db:"total_price"`
	CreatedAt     time.Time     `json:"created_at"               db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"               db:"updated_at"`
}

// BookingsListOptions controls paging and filtering for listing bookings.
// CustomerID, StaffID, and Status match exactly; results order by created_at descending.
type BookingsListOptions struct {
	Limit      int
	Offset     int
	CustomerID *string
	StaffID    *string
	Status     *BookingStatus
}

// CreateBookingRequest represents parameters to create a Booking.
type CreateBookingRequest struct {
	CustomerID    string    `json:"customer_id"`
	ServiceID     string    `json:"service_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
	ScheduledTime *string   `json:"scheduled_time,omitempty"`
	Address       string    `json:"address"`
	Notes         *string   `json:"notes,omitempty"`
}

// Validate validates CreateBookingRequest.
func (r *CreateBookingRequest) Validate() error {
	if strings.TrimSpace(r.CustomerID) == "" {
		return errors.New("customer_id is required")
	}
	if strings.TrimSpace(r.ServiceID) == "" {
		return errors.New("service_id is required")
	}
	if r.ScheduledDate.IsZero() {
		return errors.New("scheduled_date is required")
	}
	if strings.TrimSpace(r.Address) == "" {
		return errors.New("address is required and cannot be empty")
	}
	return nil
}
