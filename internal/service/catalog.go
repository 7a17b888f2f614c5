package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/fixify/ui-core/internal/domain/model"
	"github.com/fixify/ui-core/internal/ports"
)

// ServiceImageBucket is the storage bucket holding catalog images.
const ServiceImageBucket = "service-images"

// CategoryRepository is the persistence surface CatalogService needs for categories.
type CategoryRepository interface {
	Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.ServiceCategory, error)
	GetByID(ctx context.Context, id string) (*model.ServiceCategory, error)
	List(ctx context.Context) ([]*model.ServiceCategory, error)
	Update(ctx context.Context, id string, req model.UpdateCategoryRequest) (*model.ServiceCategory, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ServiceRepository is the persistence surface CatalogService needs for services.
type ServiceRepository interface {
	Create(ctx context.Context, req *model.CreateServiceRequest) (*model.Service, error)
	GetByID(ctx context.Context, id string) (*model.Service, error)
	ListWithOptions(ctx context.Context, opts model.ServicesListOptions) ([]*model.Service, error)
	Update(ctx context.Context, id string, req model.UpdateServiceRequest) (*model.Service, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	Categories CategoryRepository
	Services   ServiceRepository
	Files      ports.FileStore // optional; image upload fails without it
}

// CatalogService orchestrates the service catalog: categories, services,
// and their images.
type CatalogService struct {
	categories CategoryRepository
	services   ServiceRepository
	files      ports.FileStore
}

// NewCatalogService constructs a new CatalogService.
func NewCatalogService(opts CatalogServiceOptions) *CatalogService {
	return &CatalogService{
		categories: opts.Categories,
		services:   opts.Services,
		files:      opts.Files,
	}
}

// CreateCategory creates a service category.
func (s *CatalogService) CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.ServiceCategory, error) {
	return s.categories.Create(ctx, req)
}

// UpdateCategory updates a service category.
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, req model.UpdateCategoryRequest) (*model.ServiceCategory, error) {
	return s.categories.Update(ctx, id, req)
}

// DeleteCategory deletes a service category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) (bool, error) {
	return s.categories.Delete(ctx, id)
}

// ListCategories returns every category.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*model.ServiceCategory, error) {
	return s.categories.List(ctx)
}

// CreateService creates a service after checking its category exists, so a
// typo surfaces as a not-found error instead of a raw constraint violation.
func (s *CatalogService) CreateService(ctx context.Context, req *model.CreateServiceRequest) (*model.Service, error) {
	if req == nil {
		return nil, errors.New("create service request is required")
	}
	if _, err := s.categories.GetByID(ctx, req.CategoryID); err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	return s.services.Create(ctx, req)
}

// GetService retrieves a service by ID.
func (s *CatalogService) GetService(ctx context.Context, id string) (*model.Service, error) {
	return s.services.GetByID(ctx, id)
}

// UpdateService updates a service.
func (s *CatalogService) UpdateService(ctx context.Context, id string, req model.UpdateServiceRequest) (*model.Service, error) {
	return s.services.Update(ctx, id, req)
}

// DeleteService deletes a service.
func (s *CatalogService) DeleteService(ctx context.Context, id string) (bool, error) {
	return s.services.Delete(ctx, id)
}

// ListServices returns services using the given filters.
func (s *CatalogService) ListServices(ctx context.Context, opts model.ServicesListOptions) ([]*model.Service, error) {
	return s.services.ListWithOptions(ctx, normalizeServiceListOptions(opts))
}

// ListActiveServices returns the bookable services shown to customers,
// optionally narrowed to one category.
func (s *CatalogService) ListActiveServices(ctx context.Context, categoryID string) ([]*model.Service, error) {
	active := true
	opts := model.ServicesListOptions{Active: &active}
	if strings.TrimSpace(categoryID) != "" {
		opts.CategoryID = &categoryID
	}
	return s.services.ListWithOptions(ctx, normalizeServiceListOptions(opts))
}

// UploadServiceImage stores an image and points the service at its public URL.
// The object name is regenerated on every upload so stale CDN caches never
// serve a replaced image.
func (s *CatalogService) UploadServiceImage(ctx context.Context, serviceID, filename string, r io.Reader) (*model.Service, error) {
	if s.files == nil {
		return nil, errors.New("file storage is not configured")
	}
	if _, err := s.services.GetByID(ctx, serviceID); err != nil {
		return nil, err
	}

	object := uuid.NewString() + strings.ToLower(path.Ext(filename))
	url, err := s.files.Upload(ctx, ServiceImageBucket, object, r)
	if err != nil {
		return nil, fmt.Errorf("upload service image: %w", err)
	}

	return s.services.Update(ctx, serviceID, model.UpdateServiceRequest{ImageURL: &url})
}

func normalizeServiceListOptions(opts model.ServicesListOptions) model.ServicesListOptions {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts
}
