package bootstrap

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/fixify/ui-core/internal/data"
	"github.com/fixify/ui-core/internal/ports"
	"github.com/fixify/ui-core/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Catalog  *service.CatalogService
	Bookings *service.BookingService
	Contact  *service.ContactService
	Profiles *data.ProfileRepo
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	DB     *sql.DB
	Files  ports.FileStore // optional; catalog image uploads fail without it
	Logger *slog.Logger
}

// BuildServices creates all application services with their repositories.
func BuildServices(deps ServiceDeps) (*ServiceContainer, error) {
	if deps.DB == nil {
		return nil, errors.New("database is required")
	}

	catalog := service.NewCatalogService(service.CatalogServiceOptions{
		Categories: data.NewCategoryRepo(deps.DB),
		Services:   data.NewServiceRepo(deps.DB),
		Files:      deps.Files,
	})

	bookings := service.NewBookingService(service.BookingServiceOptions{
		Bookings: data.NewBookingRepo(deps.DB),
	})

	contact := service.NewContactService(data.NewContactMessageRepo(deps.DB))

	return &ServiceContainer{
		Catalog:  catalog,
		Bookings: bookings,
		Contact:  contact,
		Profiles: data.NewProfileRepo(deps.DB),
	}, nil
}
