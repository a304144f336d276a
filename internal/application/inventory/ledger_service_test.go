package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/catalog"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestLedgerService() (*LedgerService, *MockTransactionRepository, *MockProductRepository) {
	ledger := new(MockTransactionRepository)
	products := new(MockProductRepository)
	svc := NewLedgerService(ledger, products, zap.NewNop())
	svc.SetClock(func() time.Time { return testNow })
	return svc, ledger, products
}

func newTestProduct(t *testing.T, tenantID uuid.UUID, code string, minStock int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(tenantID, code, "Product "+code, "pcs")
	require.NoError(t, err)
	require.NoError(t, p.SetMinStock(decimal.NewFromInt(minStock)))
	return p
}

func entry(t *testing.T, tenantID, productID uuid.UUID, txType inventory.TransactionType, qty int64) inventory.InventoryTransaction {
	t.Helper()
	tx, err := inventory.NewInventoryTransaction(tenantID, productID, txType, decimal.NewFromInt(qty))
	require.NoError(t, err)
	return *tx
}

func TestLedgerService_AddInventory(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()

	t.Run("appends entry", func(t *testing.T) {
		svc, ledger, products := newTestLedgerService()
		product := newTestProduct(t, tenantID, "SAREE-1", 0)

		products.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
		ledger.On("Create", ctx, mock.MatchedBy(func(tx *inventory.InventoryTransaction) bool {
			return tx.TransactionType == inventory.TransactionTypeIn &&
				tx.Quantity.Equal(decimal.NewFromInt(10)) &&
				tx.Reference == "PO-17" &&
				tx.CreatedBy != nil && *tx.CreatedBy == actorID
		})).Return(nil)

		resp, err := svc.AddInventory(ctx, tenantID, actorID, AddInventoryRequest{
			ProductID:       product.ID,
			TransactionType: "in",
			Quantity:        decimal.NewFromInt(10),
			Reference:       "PO-17",
		})
		require.NoError(t, err)
		assert.Equal(t, "IN", resp.TransactionType)
		assert.True(t, resp.SignedQuantity.Equal(decimal.NewFromInt(10)))
		ledger.AssertExpectations(t)
	})

	t.Run("adjustment is a decrease", func(t *testing.T) {
		svc, ledger, products := newTestLedgerService()
		product := newTestProduct(t, tenantID, "SAREE-2", 0)
		products.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
		ledger.On("Create", ctx, mock.Anything).Return(nil)

		resp, err := svc.AddInventory(ctx, tenantID, actorID, AddInventoryRequest{
			ProductID:       product.ID,
			TransactionType: "ADJUSTMENT",
			Quantity:        decimal.NewFromInt(2),
		})
		require.NoError(t, err)
		assert.True(t, resp.SignedQuantity.Equal(decimal.NewFromInt(-2)))
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, ledger, products := newTestLedgerService()
		id := uuid.New()
		products.On("FindByIDForTenant", ctx, tenantID, id).Return(nil, shared.ErrNotFound)

		_, err := svc.AddInventory(ctx, tenantID, actorID, AddInventoryRequest{
			ProductID:       id,
			TransactionType: "IN",
			Quantity:        decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			req  AddInventoryRequest
			code string
		}{
			{"bad type", AddInventoryRequest{ProductID: uuid.New(), TransactionType: "GIFT", Quantity: decimal.NewFromInt(1)}, "INVALID_TRANSACTION_TYPE"},
			{"zero quantity", AddInventoryRequest{ProductID: uuid.New(), TransactionType: "IN", Quantity: decimal.Zero}, "INVALID_QUANTITY"},
			{"negative quantity", AddInventoryRequest{ProductID: uuid.New(), TransactionType: "OUT", Quantity: decimal.NewFromInt(-3)}, "INVALID_QUANTITY"},
			{"missing product", AddInventoryRequest{TransactionType: "IN", Quantity: decimal.NewFromInt(1)}, "INVALID_PRODUCT"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, ledger, _ := newTestLedgerService()
				_, err := svc.AddInventory(ctx, tenantID, actorID, tt.req)
				var de *shared.DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, tt.code, de.Code)
				ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			})
		}
	})
}

func TestLedgerService_GetProductStock(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("folds every entry type", func(t *testing.T) {
		svc, ledger, products := newTestLedgerService()
		product := newTestProduct(t, tenantID, "KURTA", 5)
		txs := []inventory.InventoryTransaction{
			entry(t, tenantID, product.ID, inventory.TransactionTypeOut, 3),
			entry(t, tenantID, product.ID, inventory.TransactionTypeReturn, 1),
			entry(t, tenantID, product.ID, inventory.TransactionTypeAdjustment, 2),
			entry(t, tenantID, product.ID, inventory.TransactionTypeIn, 10),
		}
		products.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
		ledger.On("FindByProduct", ctx, tenantID, product.ID).Return(txs, nil)

		resp, err := svc.GetProductStock(ctx, tenantID, product.ID)
		require.NoError(t, err)
		assert.True(t, resp.CurrentStock.Equal(decimal.NewFromInt(4)), "got %s", resp.CurrentStock)
		assert.True(t, resp.IsLowStock)
		assert.Len(t, resp.Transactions, 4)
		assert.Equal(t, "OUT", resp.Transactions[0].TransactionType)
	})

	t.Run("no entries is zero", func(t *testing.T) {
		svc, ledger, products := newTestLedgerService()
		product := newTestProduct(t, tenantID, "DUPATTA", 0)
		products.On("FindByIDForTenant", ctx, tenantID, product.ID).Return(product, nil)
		ledger.On("FindByProduct", ctx, tenantID, product.ID).Return([]inventory.InventoryTransaction{}, nil)

		resp, err := svc.GetProductStock(ctx, tenantID, product.ID)
		require.NoError(t, err)
		assert.True(t, resp.CurrentStock.IsZero())
		assert.False(t, resp.IsLowStock)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, _, products := newTestLedgerService()
		id := uuid.New()
		products.On("FindByIDForTenant", ctx, tenantID, id).Return(nil, shared.ErrNotFound)

		_, err := svc.GetProductStock(ctx, tenantID, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestLedgerService_GetInventoryStats(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	svc, ledger, products := newTestLedgerService()

	plenty := newTestProduct(t, tenantID, "A", 5)
	short := newTestProduct(t, tenantID, "B", 5)
	never := newTestProduct(t, tenantID, "C", 1)
	untracked := newTestProduct(t, tenantID, "D", 0)

	products.On("FindActive", ctx, tenantID).Return([]catalog.Product{*plenty, *short, *never, *untracked}, nil)
	ledger.On("StockByProduct", ctx, tenantID).Return(map[uuid.UUID]decimal.Decimal{
		plenty.ID:    decimal.NewFromInt(20),
		short.ID:     decimal.NewFromInt(5),
		untracked.ID: decimal.NewFromInt(-1),
	}, nil)
	ledger.On("CountSince", ctx, tenantID, testNow.Add(-7*24*time.Hour)).Return(int64(12), nil)

	stats, err := svc.GetInventoryStats(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalActiveProducts)
	assert.Equal(t, int64(3), stats.ProductsWithThreshold)
	assert.Equal(t, int64(2), stats.LowStockProducts)
	assert.Equal(t, int64(12), stats.TransactionsLast7Days)
}
