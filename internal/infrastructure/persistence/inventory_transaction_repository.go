package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/posledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormInventoryTransactionRepository implements inventory.TransactionRepository.
// The ledger is append-only: there is no update or delete.
type GormInventoryTransactionRepository struct {
	db *gorm.DB
}

// NewGormInventoryTransactionRepository creates a new GormInventoryTransactionRepository
func NewGormInventoryTransactionRepository(db *gorm.DB) *GormInventoryTransactionRepository {
	return &GormInventoryTransactionRepository{db: db}
}

// Create appends a single entry
func (r *GormInventoryTransactionRepository) Create(ctx context.Context, tx *inventory.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(models.InventoryTransactionModelFromDomain(tx)).Error
}

// CreateBatch appends entries in slice order
func (r *GormInventoryTransactionRepository) CreateBatch(ctx context.Context, txs []*inventory.InventoryTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	rows := make([]*models.InventoryTransactionModel, len(txs))
	for i, t := range txs {
		rows[i] = models.InventoryTransactionModelFromDomain(t)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByProduct returns every entry for a product, newest first
func (r *GormInventoryTransactionRepository) FindByProduct(
	ctx context.Context,
	tenantID, productID uuid.UUID,
) ([]inventory.InventoryTransaction, error) {
	var rows []models.InventoryTransactionModel
	if err := r.db.WithContext(ctx).
		Scopes(forTenant(tenantID)).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toLedgerEntries(rows), nil
}

// FindByReference returns the entries written for a reference, oldest first
func (r *GormInventoryTransactionRepository) FindByReference(
	ctx context.Context,
	tenantID uuid.UUID,
	reference string,
) ([]inventory.InventoryTransaction, error) {
	var rows []models.InventoryTransactionModel
	if err := r.db.WithContext(ctx).
		Scopes(forTenant(tenantID)).
		Where("reference = ?", reference).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toLedgerEntries(rows), nil
}

// CountSince counts entries created at or after since
func (r *GormInventoryTransactionRepository) CountSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryTransactionModel{}).
		Scopes(forTenant(tenantID)).
		Where("created_at >= ?", since.UTC()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// StockByProduct folds the ledger per product: IN adds, every other type subtracts
func (r *GormInventoryTransactionRepository) StockByProduct(
	ctx context.Context,
	tenantID uuid.UUID,
) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []struct {
		ProductID uuid.UUID
		Stock     decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryTransactionModel{}).
		Scopes(forTenant(tenantID)).
		Select("product_id, SUM(CASE WHEN transaction_type = ? THEN quantity ELSE -quantity END) AS stock",
			inventory.TransactionTypeIn).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.ProductID] = nullDecimal(row.Stock)
	}
	return out, nil
}

func toLedgerEntries(rows []models.InventoryTransactionModel) []inventory.InventoryTransaction {
	out := make([]inventory.InventoryTransaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormInventoryTransactionRepository implements inventory.TransactionRepository
var _ inventory.TransactionRepository = (*GormInventoryTransactionRepository)(nil)
