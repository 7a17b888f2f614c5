// Package devseed populates a development database with a small, stable set
// of profiles, categories, services, and bookings so the app is usable right
// after `make dev`. Seeding goes through the service layer as the seed admin,
// not straight to the tables, and is idempotent: existing rows are left alone.
package devseed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fixify/ui-core/internal/data"
	"github.com/fixify/ui-core/internal/domain/auth"
	"github.com/fixify/ui-core/internal/domain/model"
	apperrors "github.com/fixify/ui-core/internal/errors"
	"github.com/fixify/ui-core/internal/service"
)

const (
	seedAdminID    = "seed-admin"
	seedStaffID    = "seed-staff"
	seedCustomerID = "seed-customer"
)

// Services bundles the application services the seeder drives.
type Services struct {
	Profiles *data.ProfileRepo
	Catalog  *service.CatalogService
	Bookings *service.BookingService
}

// Run executes the full development seeding workflow.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	admin, err := seedProfiles(ctx, svcs, logger)
	if err != nil {
		return err
	}
	services, err := seedCatalog(ctx, svcs, logger)
	if err != nil {
		return err
	}
	if err := seedBookings(ctx, svcs, admin, services, logger); err != nil {
		return err
	}
	return nil
}

type seedProfile struct {
	profile auth.Profile
	role    auth.Role
}

// seedProfiles upserts the three role profiles and returns the seed admin,
// who acts as the caller for everything seeded after it.
func seedProfiles(ctx context.Context, svcs Services, logger *slog.Logger) (*auth.Profile, error) {
	seeds := []seedProfile{
		{auth.Profile{ID: seedAdminID, Email: "admin@fixify.test", FullName: "Ada Admin"}, auth.RoleAdmin},
		{auth.Profile{ID: seedStaffID, Email: "staff@fixify.test", FullName: "Sam Staff"}, auth.RoleStaff},
		{auth.Profile{ID: seedCustomerID, Email: "customer@fixify.test", FullName: "Casey Customer"}, auth.RoleCustomer},
	}

	var admin *auth.Profile
	for _, s := range seeds {
		if _, err := svcs.Profiles.Upsert(ctx, s.profile); err != nil {
			return nil, fmt.Errorf("seed profile %s: %w", s.profile.ID, err)
		}
		p, err := svcs.Profiles.UpdateRole(ctx, s.profile.ID, s.role)
		if err != nil {
			return nil, fmt.Errorf("assign role for %s: %w", s.profile.ID, err)
		}
		if s.role == auth.RoleAdmin {
			admin = p
		}
		if logger != nil {
			logger.DebugContext(ctx, "seeded profile", "id", s.profile.ID, "role", s.role)
		}
	}
	return admin, nil
}

type seedService struct {
	category    string
	name        string
	description string
	markedPrice float64
	discount    float64
}

func seedCatalog(ctx context.Context, svcs Services, logger *slog.Logger) (map[string]*model.Service, error) {
	seeds := []seedService{
		{"Plumbing", "Leak Repair", "Fix leaking taps and pipes", 89, 69},
		{"Plumbing", "Drain Cleaning", "Clear blocked drains", 120, 0},
		{"Electrical", "Outlet Installation", "Install new power outlets", 75, 0},
		{"Cleaning", "Deep Home Clean", "Full house deep cleaning", 199, 149},
	}

	categories := make(map[string]*model.ServiceCategory)
	out := make(map[string]*model.Service)

	for _, s := range seeds {
		cat, ok := categories[s.category]
		if !ok {
			var err error
			cat, err = ensureCategory(ctx, svcs, s.category)
			if err != nil {
				return nil, err
			}
			categories[s.category] = cat
		}

		svc, err := ensureService(ctx, svcs, cat.ID, s)
		if err != nil {
			return nil, err
		}
		out[s.name] = svc
		if logger != nil {
			logger.DebugContext(ctx, "seeded service", "name", s.name, "category", s.category)
		}
	}
	return out, nil
}

func ensureCategory(ctx context.Context, svcs Services, name string) (*model.ServiceCategory, error) {
	cat, err := svcs.Catalog.CreateCategory(ctx, &model.CreateCategoryRequest{Name: name})
	if err == nil {
		return cat, nil
	}
	if !apperrors.IsConflict(err) {
		return nil, fmt.Errorf("seed category %s: %w", name, err)
	}

	// Already seeded on a previous run; look it up.
	existing, err := svcs.Catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range existing {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("seed category %s: conflict but category not found", name)
}

func ensureService(ctx context.Context, svcs Services, categoryID string, s seedService) (*model.Service, error) {
	existing, err := svcs.Catalog.ListServices(ctx, model.ServicesListOptions{
		Q:          &s.name,
		CategoryID: &categoryID,
		Limit:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("look up service %s: %w", s.name, err)
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	desc := s.description
	svc, err := svcs.Catalog.CreateService(ctx, &model.CreateServiceRequest{
		CategoryID:    categoryID,
		Name:          s.name,
		Description:   &desc,
		MarkedPrice:   s.markedPrice,
		DiscountPrice: s.discount,
	})
	if err != nil {
		return nil, fmt.Errorf("seed service %s: %w", s.name, err)
	}
	return svc, nil
}

func seedBookings(
	ctx context.Context,
	svcs Services,
	admin *auth.Profile,
	services map[string]*model.Service,
	logger *slog.Logger,
) error {
	customer := seedCustomerID
	existing, err := svcs.Bookings.ListFor(ctx, admin, model.BookingsListOptions{CustomerID: &customer})
	if err != nil {
		return fmt.Errorf("list seed bookings: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	leak, ok := services["Leak Repair"]
	if !ok {
		return nil
	}

	booking, err := svcs.Bookings.Create(ctx, admin, &model.CreateBookingRequest{
		CustomerID:    seedCustomerID,
		ServiceID:     leak.ID,
		ScheduledDate: time.Now().AddDate(0, 0, 3).UTC().Truncate(24 * time.Hour),
		Address:       "12 Sample Street, Devtown",
	})
	if err != nil {
		return fmt.Errorf("seed booking: %w", err)
	}

	if _, err := svcs.Bookings.Assign(ctx, admin, booking.ID, seedStaffID); err != nil {
		return fmt.Errorf("assign seed booking: %w", err)
	}
	if logger != nil {
		logger.DebugContext(ctx, "seeded booking", "id", booking.ID)
	}
	return nil
}
