package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/partner"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		repo.On("Save", ctx, mock.AnythingOfType("*partner.Customer")).Return(nil)

		resp, err := NewCustomerService(repo).Create(ctx, tenantID, CreateCustomerRequest{
			Name:    "  Asha Rao ",
			Phone:   "+91 98450 00000",
			Email:   "asha@example.com",
			Address: "12 MG Road",
		})
		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", resp.Name)
		assert.Equal(t, "asha@example.com", resp.Email)
		assert.Equal(t, tenantID, resp.TenantID)
	})

	t.Run("invalid email", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		_, err := NewCustomerService(repo).Create(ctx, tenantID, CreateCustomerRequest{Name: "A", Email: "not-an-email"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_GetByID(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	customer, err := partner.NewCustomer(tenantID, "Ravi")
	require.NoError(t, err)

	repo := new(MockCustomerRepository)
	repo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
	missing := uuid.New()
	repo.On("FindByIDForTenant", ctx, tenantID, missing).Return(nil, shared.ErrNotFound)

	svc := NewCustomerService(repo)
	resp, err := svc.GetByID(ctx, tenantID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", resp.Name)

	_, err = svc.GetByID(ctx, tenantID, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
