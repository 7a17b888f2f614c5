package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixify/ui-core/internal/data"
	"github.com/fixify/ui-core/internal/domain/auth"
	"github.com/fixify/ui-core/internal/domain/model"
)

// fakeBookingRepo is an in-memory BookingRepository for service tests.
type fakeBookingRepo struct {
	byID map[string]*model.Booking
	next int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{byID: make(map[string]*model.Booking)}
}

func (f *fakeBookingRepo) put(b model.Booking) *model.Booking {
	f.next++
	if b.ID == "" {
		b.ID = "bk-" + string(rune('0'+f.next))
	}
	if b.Status == "" {
		b.Status = model.BookingStatusPending
	}
	f.byID[b.ID] = &b
	return &b
}

func (f *fakeBookingRepo) Create(_ context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return f.put(model.Booking{
		CustomerID:    req.CustomerID,
		ServiceID:     req.ServiceID,
		ScheduledDate: req.ScheduledDate,
		Address:       req.Address,
		TotalPrice:    99,
	}), nil
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id string) (*model.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, data.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) ListWithOptions(_ context.Context, opts model.BookingsListOptions) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range f.byID {
		if opts.CustomerID != nil && b.CustomerID != *opts.CustomerID {
			continue
		}
		if opts.StaffID != nil && (b.StaffID == nil || *b.StaffID != *opts.StaffID) {
			continue
		}
		if opts.Status != nil && b.Status != *opts.Status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id string, next model.BookingStatus) (*model.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, data.ErrBookingNotFound
	}
	if !b.Status.CanTransitionTo(next) {
		return nil, data.ErrInvalidStatusTransition
	}
	b.Status = next
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) AssignStaff(_ context.Context, id, staffID string) (*model.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, data.ErrBookingNotFound
	}
	b.StaffID = &staffID
	cp := *b
	return &cp, nil
}

var (
	adminActor    = &auth.Profile{ID: "admin-1", Role: auth.RoleAdmin}
	staffActor    = &auth.Profile{ID: "staff-1", Role: auth.RoleStaff}
	customerActor = &auth.Profile{ID: "cust-1", Role: auth.RoleCustomer}
)

func newBookingService() (*fakeBookingRepo, *BookingService) {
	repo := newFakeBookingRepo()
	return repo, NewBookingService(BookingServiceOptions{Bookings: repo})
}

func validCreateRequest() *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		ServiceID:     "svc-1",
		ScheduledDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Address:       "42 Main St",
	}
}

func TestBookingService_CustomerBooksForSelf(t *testing.T) {
	t.Parallel()
	_, svc := newBookingService()

	b, err := svc.Create(context.Background(), customerActor, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, customerActor.ID, b.CustomerID)
	assert.Equal(t, model.BookingStatusPending, b.Status)
}

func TestBookingService_CustomerCannotBookForOthers(t *testing.T) {
	t.Parallel()
	_, svc := newBookingService()

	req := validCreateRequest()
	req.CustomerID = "someone-else"
	_, err := svc.Create(context.Background(), customerActor, req)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBookingService_AdminBooksOnBehalf(t *testing.T) {
	t.Parallel()
	_, svc := newBookingService()

	req := validCreateRequest()
	req.CustomerID = "cust-9"
	b, err := svc.Create(context.Background(), adminActor, req)
	require.NoError(t, err)
	assert.Equal(t, "cust-9", b.CustomerID)
}

func TestBookingService_StaffCannotCreate(t *testing.T) {
	t.Parallel()
	_, svc := newBookingService()

	_, err := svc.Create(context.Background(), staffActor, validCreateRequest())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(context.Background(), nil, validCreateRequest())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBookingService_ListForScopesByRole(t *testing.T) {
	t.Parallel()
	repo, svc := newBookingService()
	ctx := context.Background()

	staffID := staffActor.ID
	repo.put(model.Booking{ID: "bk-a", CustomerID: customerActor.ID})
	repo.put(model.Booking{ID: "bk-b", CustomerID: "cust-2", StaffID: &staffID})
	repo.put(model.Booking{ID: "bk-c", CustomerID: "cust-3"})

	mine, err := svc.ListFor(ctx, customerActor, model.BookingsListOptions{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "bk-a", mine[0].ID)

	assigned, err := svc.ListFor(ctx, staffActor, model.BookingsListOptions{})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "bk-b", assigned[0].ID)

	all, err := svc.ListFor(ctx, adminActor, model.BookingsListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestBookingService_ListForIgnoresForeignFilters(t *testing.T) {
	t.Parallel()
	repo, svc := newBookingService()

	repo.put(model.Booking{ID: "bk-a", CustomerID: customerActor.ID})
	repo.put(model.Booking{ID: "bk-b", CustomerID: "cust-2"})

	// A customer asking for another customer's bookings still gets their own.
	other := "cust-2"
	mine, err := svc.ListFor(context.Background(), customerActor, model.BookingsListOptions{CustomerID: &other})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "bk-a", mine[0].ID)
}

func TestBookingService_StaffLifecycleOnOwnAssignment(t *testing.T) {
	t.Parallel()
	repo, svc := newBookingService()
	ctx := context.Background()

	staffID := staffActor.ID
	repo.put(model.Booking{ID: "bk-a", CustomerID: "cust-2", StaffID: &staffID})

	started, err := svc.Start(ctx, staffActor, "bk-a")
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusInProgress, started.Status)

	done, err := svc.Complete(ctx, staffActor, "bk-a")
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, done.Status)
}

func TestBookingService_StaffCannotTouchUnassigned(t *testing.T) {
	t.Parallel()
	repo, svc := newBookingService()

	repo.put(model.Booking{ID: "bk-a", CustomerID: "cust-2"})

	_, err := svc.Start(context.Background(), staffActor, "bk-a")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBookingService_CustomerCancelsOwnPending(t *testing.T) {
	t.Parallel()
	repo, svc := newBookingService()

	repo.put(model.Booking{ID: "bk-a", CustomerID: customerActor.ID})

	cancelled, err := svc.Cancel(context.Background(), customerActor, "bk-a")
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
}

func TestBookingService_CustomerCannotCancelOthers(t *testing.T) {
	t.Parallel()
	repo, svc := newBookingService()

	repo.put(model.Booking{ID: "bk-a", CustomerID: "cust-2"})

	_, err := svc.Cancel(context.Background(), customerActor, "bk-a")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBookingService_AssignIsAdminOnly(t *testing.T) {
	t.Parallel()
	repo, svc := newBookingService()
	ctx := context.Background()

	repo.put(model.Booking{ID: "bk-a", CustomerID: "cust-2"})

	_, err := svc.Assign(ctx, staffActor, "bk-a", staffActor.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	assigned, err := svc.Assign(ctx, adminActor, "bk-a", staffActor.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.StaffID)
	assert.Equal(t, staffActor.ID, *assigned.StaffID)
}

func TestBookingService_InvalidTransitionSurfaces(t *testing.T) {
	t.Parallel()
	repo, svc := newBookingService()

	repo.put(model.Booking{ID: "bk-a", CustomerID: "cust-2", Status: model.BookingStatusCompleted})

	_, err := svc.Complete(context.Background(), adminActor, "bk-a")
	assert.ErrorIs(t, err, data.ErrInvalidStatusTransition)
}
