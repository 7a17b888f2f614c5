package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fixify/ui-core/internal/domain/auth"
	"github.com/fixify/ui-core/internal/domain/model"
)

// ErrForbidden is returned when the acting user's role does not permit an operation.
var ErrForbidden = errors.New("operation not permitted for this user")

// BookingRepository is the persistence surface BookingService needs.
type BookingRepository interface {
	Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListWithOptions(ctx context.Context, opts model.BookingsListOptions) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, next model.BookingStatus) (*model.Booking, error)
	AssignStaff(ctx context.Context, id, staffID string) (*model.Booking, error)
}

// BookingServiceOptions groups dependencies for BookingService.
type BookingServiceOptions struct {
	Bookings BookingRepository
}

// BookingService orchestrates the booking lifecycle and enforces which roles
// may drive which transitions.
type BookingService struct {
	bookings BookingRepository
}

// NewBookingService constructs a new BookingService.
func NewBookingService(opts BookingServiceOptions) *BookingService {
	return &BookingService{bookings: opts.Bookings}
}

// Create books a service for a customer. Customers book for themselves;
// admins may book on any customer's behalf.
func (s *BookingService) Create(ctx context.Context, actor *auth.Profile, req *model.CreateBookingRequest) (*model.Booking, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	if req == nil {
		return nil, errors.New("create booking request is required")
	}
	switch actor.Role {
	case auth.RoleCustomer:
		if req.CustomerID != "" && req.CustomerID != actor.ID {
			return nil, ErrForbidden
		}
		req.CustomerID = actor.ID
	case auth.RoleAdmin:
		// any customer
	default:
		return nil, ErrForbidden
	}
	return s.bookings.Create(ctx, req)
}

// Get retrieves a booking, restricted to its participants and admins.
func (s *BookingService) Get(ctx context.Context, actor *auth.Profile, id string) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, b) {
		return nil, ErrForbidden
	}
	return b, nil
}

// ListFor returns the bookings the actor is entitled to see: customers their
// own, staff their assignments, admins everything.
func (s *BookingService) ListFor(ctx context.Context, actor *auth.Profile, opts model.BookingsListOptions) ([]*model.Booking, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	switch actor.Role {
	case auth.RoleCustomer:
		opts.CustomerID = &actor.ID
		opts.StaffID = nil
	case auth.RoleStaff:
		opts.StaffID = &actor.ID
		opts.CustomerID = nil
	case auth.RoleAdmin:
		// unrestricted
	default:
		return nil, ErrForbidden
	}
	return s.bookings.ListWithOptions(ctx, opts)
}

// Start moves a booking to in_progress. Staff may start their own
// assignments; admins any booking.
func (s *BookingService) Start(ctx context.Context, actor *auth.Profile, id string) (*model.Booking, error) {
	if err := s.authorizeWork(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.bookings.UpdateStatus(ctx, id, model.BookingStatusInProgress)
}

// Complete moves a booking to completed. Staff may complete their own
// assignments; admins any booking.
func (s *BookingService) Complete(ctx context.Context, actor *auth.Profile, id string) (*model.Booking, error) {
	if err := s.authorizeWork(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.bookings.UpdateStatus(ctx, id, model.BookingStatusCompleted)
}

// Cancel cancels a booking. Customers may cancel their own bookings, staff
// their assignments, admins any.
func (s *BookingService) Cancel(ctx context.Context, actor *auth.Profile, id string) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, b) {
		return nil, ErrForbidden
	}
	return s.bookings.UpdateStatus(ctx, id, model.BookingStatusCancelled)
}

// Assign hands a booking to a staff member. Admin only.
func (s *BookingService) Assign(ctx context.Context, actor *auth.Profile, id, staffID string) (*model.Booking, error) {
	if actor == nil || actor.Role != auth.RoleAdmin {
		return nil, ErrForbidden
	}
	if staffID == "" {
		return nil, errors.New("staff id is required")
	}
	return s.bookings.AssignStaff(ctx, id, staffID)
}

// authorizeWork checks that the actor may advance the lifecycle of booking id.
func (s *BookingService) authorizeWork(ctx context.Context, actor *auth.Profile, id string) error {
	if actor == nil {
		return ErrForbidden
	}
	switch actor.Role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleStaff:
		b, err := s.bookings.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("resolve booking: %w", err)
		}
		if b.StaffID == nil || *b.StaffID != actor.ID {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}

// canView reports whether the actor participates in the booking or is an admin.
func canView(actor *auth.Profile, b *model.Booking) bool {
	if actor == nil || b == nil {
		return false
	}
	switch actor.Role {
	case auth.RoleAdmin:
		return true
	case auth.RoleStaff:
		return b.StaffID != nil && *b.StaffID == actor.ID
	case auth.RoleCustomer:
		return b.CustomerID == actor.ID
	default:
		return false
	}
}
