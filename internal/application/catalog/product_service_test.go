package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/catalog"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("ExistsByCode", ctx, tenantID, "SHIRT-01").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		price := decimal.NewFromInt(300)
		minStock := decimal.NewFromInt(5)
		resp, err := NewProductService(repo).Create(ctx, tenantID, CreateProductRequest{
			Code:     "shirt-01",
			Name:     "Cotton Shirt",
			Price:    &price,
			MinStock: &minStock,
		})
		require.NoError(t, err)
		assert.Equal(t, "SHIRT-01", resp.Code)
		assert.Equal(t, "pcs", resp.Unit)
		assert.Equal(t, "active", resp.Status)
		assert.True(t, resp.Price.Equal(price))
		assert.True(t, resp.MinStock.Equal(minStock))
		repo.AssertExpectations(t)
	})

	t.Run("duplicate code", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("ExistsByCode", ctx, tenantID, "SHIRT-01").Return(true, nil)

		_, err := NewProductService(repo).Create(ctx, tenantID, CreateProductRequest{Code: "SHIRT-01", Name: "Shirt"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("negative price", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("ExistsByCode", ctx, tenantID, "SHIRT-02").Return(false, nil)

		price := decimal.NewFromInt(-1)
		_, err := NewProductService(repo).Create(ctx, tenantID, CreateProductRequest{Code: "SHIRT-02", Name: "Shirt", Price: &price})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestProductService_GetAndDeactivate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	product, err := catalog.NewProduct(tenantID, "KURTA", "Kurta", "pcs")
	require.NoError(t, err)

	repo := new(MockProductRepository)
	repo.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
	repo.On("Save", ctx, product).Return(nil)
	svc := NewProductService(repo)

	resp, err := svc.GetByID(ctx, tenantID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "KURTA", resp.Code)

	resp, err = svc.Deactivate(ctx, tenantID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)

	_, err = svc.Deactivate(ctx, tenantID, product.ID)
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))

	missing := uuid.New()
	repo.On("FindByIDForTenant", ctx, tenantID, missing).Return(nil, shared.ErrNotFound)
	_, err = svc.GetByID(ctx, tenantID, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	product, err := catalog.NewProduct(tenantID, "KURTA", "Kurta", "pcs")
	require.NoError(t, err)

	repo := new(MockProductRepository)
	repo.On("FindAllForTenant", ctx, tenantID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.OrderBy == "code" && f.OrderDir == "asc" && f.Filters["status"] == "active"
	})).Return([]catalog.Product{*product}, int64(1), nil)

	out, total, err := NewProductService(repo).List(ctx, tenantID, ProductListFilter{Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, out, 1)
}
