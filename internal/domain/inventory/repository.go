package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRepository is the append-only store for ledger entries
type TransactionRepository interface {
	// Create appends a single entry
	Create(ctx context.Context, tx *InventoryTransaction) error

	// CreateBatch appends entries in slice order
	CreateBatch(ctx context.Context, txs []*InventoryTransaction) error

	// FindByProduct returns every entry for a product, newest first
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]InventoryTransaction, error)

	// FindByReference returns the entries written for a reference, oldest first
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) ([]InventoryTransaction, error)

	// CountSince counts entries created at or after since
	CountSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error)

	// StockByProduct folds the ledger per product in the datastore
	StockByProduct(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}
