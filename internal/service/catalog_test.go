package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixify/ui-core/internal/data"
	"github.com/fixify/ui-core/internal/domain/model"
	mockauth "github.com/fixify/ui-core/internal/mocks/auth"
)

type fakeCategoryRepo struct {
	byID map[string]*model.ServiceCategory
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{byID: make(map[string]*model.ServiceCategory)}
}

func (f *fakeCategoryRepo) Create(_ context.Context, req *model.CreateCategoryRequest) (*model.ServiceCategory, error) {
	c := &model.ServiceCategory{ID: "cat-" + req.Name, Name: req.Name}
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*model.ServiceCategory, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, data.ErrCategoryNotFound
	}
	return c, nil
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]*model.ServiceCategory, error) {
	out := make([]*model.ServiceCategory, 0, len(f.byID))
	for _, c := range f.byID {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, id string, req model.UpdateCategoryRequest) (*model.ServiceCategory, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, data.ErrCategoryNotFound
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	return c, nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

type fakeServiceRepo struct {
	byID     map[string]*model.Service
	lastOpts model.ServicesListOptions
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{byID: make(map[string]*model.Service)}
}

func (f *fakeServiceRepo) Create(_ context.Context, req *model.CreateServiceRequest) (*model.Service, error) {
	s := &model.Service{
		ID:          "svc-" + req.Name,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		MarkedPrice: req.MarkedPrice,
		IsActive:    true,
	}
	f.byID[s.ID] = s
	return s, nil
}

func (f *fakeServiceRepo) GetByID(_ context.Context, id string) (*model.Service, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, data.ErrServiceNotFound
	}
	return s, nil
}

func (f *fakeServiceRepo) ListWithOptions(_ context.Context, opts model.ServicesListOptions) ([]*model.Service, error) {
	f.lastOpts = opts
	var out []*model.Service
	for _, s := range f.byID {
		if opts.Active != nil && s.IsActive != *opts.Active {
			continue
		}
		if opts.CategoryID != nil && s.CategoryID != *opts.CategoryID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeServiceRepo) Update(_ context.Context, id string, req model.UpdateServiceRequest) (*model.Service, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, data.ErrServiceNotFound
	}
	if req.ImageURL != nil {
		s.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	return s, nil
}

func (f *fakeServiceRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func newCatalogService() (*fakeCategoryRepo, *fakeServiceRepo, *mockauth.MemoryFileStore, *CatalogService) {
	cats := newFakeCategoryRepo()
	svcs := newFakeServiceRepo()
	files := mockauth.NewMemoryFileStore()
	catalog := NewCatalogService(CatalogServiceOptions{Categories: cats, Services: svcs, Files: files})
	return cats, svcs, files, catalog
}

func TestCatalogService_CreateServiceChecksCategory(t *testing.T) {
	t.Parallel()
	_, _, _, catalog := newCatalogService()
	ctx := context.Background()

	_, err := catalog.CreateService(ctx, &model.CreateServiceRequest{
		CategoryID:  "cat-missing",
		Name:        "Deep Clean",
		MarkedPrice: 120,
	})
	assert.ErrorIs(t, err, data.ErrCategoryNotFound)

	cat, err := catalog.CreateCategory(ctx, &model.CreateCategoryRequest{Name: "Cleaning"})
	require.NoError(t, err)

	svc, err := catalog.CreateService(ctx, &model.CreateServiceRequest{
		CategoryID:  cat.ID,
		Name:        "Deep Clean",
		MarkedPrice: 120,
	})
	require.NoError(t, err)
	assert.Equal(t, cat.ID, svc.CategoryID)
}

func TestCatalogService_ListActiveServices(t *testing.T) {
	t.Parallel()
	_, svcs, _, catalog := newCatalogService()
	ctx := context.Background()

	svcs.byID["svc-a"] = &model.Service{ID: "svc-a", CategoryID: "cat-1", IsActive: true}
	svcs.byID["svc-b"] = &model.Service{ID: "svc-b", CategoryID: "cat-1", IsActive: true}
	svcs.byID["svc-c"] = &model.Service{ID: "svc-c", CategoryID: "cat-2", IsActive: true}
	svcs.byID["svc-d"] = &model.Service{ID: "svc-d", CategoryID: "cat-1", IsActive: false}

	got, err := catalog.ListActiveServices(ctx, "cat-1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	all, err := catalog.ListActiveServices(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCatalogService_ListServicesDefaultsPaging(t *testing.T) {
	t.Parallel()
	_, svcs, _, catalog := newCatalogService()

	_, err := catalog.ListServices(context.Background(), model.ServicesListOptions{Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, 50, svcs.lastOpts.Limit)
	assert.Equal(t, 0, svcs.lastOpts.Offset)
}

func TestCatalogService_UploadServiceImage(t *testing.T) {
	t.Parallel()
	_, svcs, files, catalog := newCatalogService()
	ctx := context.Background()

	svcs.byID["svc-a"] = &model.Service{ID: "svc-a", CategoryID: "cat-1", IsActive: true}

	updated, err := catalog.UploadServiceImage(ctx, "svc-a", "photo.PNG", strings.NewReader("img-bytes"))
	require.NoError(t, err)
	require.NotNil(t, updated.ImageURL)
	assert.True(t, strings.HasPrefix(*updated.ImageURL, "mem://"+ServiceImageBucket+"/"))
	assert.True(t, strings.HasSuffix(*updated.ImageURL, ".png"))
	assert.Len(t, files.Objects, 1)
}

func TestCatalogService_UploadServiceImageMissingService(t *testing.T) {
	t.Parallel()
	_, _, files, catalog := newCatalogService()

	_, err := catalog.UploadServiceImage(context.Background(), "svc-nope", "photo.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, data.ErrServiceNotFound)
	assert.Empty(t, files.Objects)
}

func TestCatalogService_UploadWithoutFileStore(t *testing.T) {
	t.Parallel()
	catalog := NewCatalogService(CatalogServiceOptions{
		Categories: newFakeCategoryRepo(),
		Services:   newFakeServiceRepo(),
	})

	_, err := catalog.UploadServiceImage(context.Background(), "svc-a", "photo.png", strings.NewReader("x"))
	assert.Error(t, err)
}
