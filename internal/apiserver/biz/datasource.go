package biz

import (
	"context"
	"time"

	"github.com/veaiops/veaiops/internal/apiserver/store"
	"github.com/veaiops/veaiops/internal/datasource"
	"github.com/veaiops/veaiops/internal/model"
	"github.com/veaiops/veaiops/pkg/id"
)

// DatasourceService handles metrics datasource business logic.
type DatasourceService struct {
	store store.Factory
}

// NewDatasourceService creates a new DatasourceService.
func NewDatasourceService(factory store.Factory) *DatasourceService {
	return &DatasourceService{store: factory}
}

// Create persists a new datasource.
func (s *DatasourceService) Create(ctx context.Context, ds *model.Datasource) error {
	if _, err := datasource.New(ds); err != nil {
		return err
	}
	now := time.Now().UTC()
	ds.ID = id.NewULID()
	ds.CreatedAt = now
	ds.UpdatedAt = now
	return s.store.Datasources().Create(ctx, ds)
}

// Update replaces a datasource. Empty incoming secrets keep the stored
// ones.
func (s *DatasourceService) Update(ctx context.Context, ds *model.Datasource) error {
	existing, err := s.store.Datasources().Get(ctx, ds.ID)
	if err != nil {
		return err
	}
	if ds.SecretKey == "" {
		ds.SecretKey = existing.SecretKey
	}
	if ds.Password == "" {
		ds.Password = existing.Password
	}
	if _, err := datasource.New(ds); err != nil {
		return err
	}
	ds.CreatedAt = existing.CreatedAt
	ds.UpdatedAt = time.Now().UTC()
	return s.store.Datasources().Update(ctx, ds)
}

// Delete removes a datasource.
func (s *DatasourceService) Delete(ctx context.Context, dsID string) error {
	return s.store.Datasources().Delete(ctx, dsID)
}

// Get retrieves a datasource.
func (s *DatasourceService) Get(ctx context.Context, dsID string) (*model.Datasource, error) {
	return s.store.Datasources().Get(ctx, dsID)
}

// List lists datasources.
func (s *DatasourceService) List(ctx context.Context, offset, limit int64) (int64, []*model.Datasource, error) {
	return s.store.Datasources().List(ctx, store.ListOptions{Offset: offset, Limit: limit})
}

// Test checks connectivity and credentials of a stored datasource.
func (s *DatasourceService) Test(ctx context.Context, dsID string) error {
	ds, err := s.store.Datasources().Get(ctx, dsID)
	if err != nil {
		return err
	}
	driver, err := datasource.New(ds)
	if err != nil {
		return err
	}
	return driver.Ping(ctx)
}
