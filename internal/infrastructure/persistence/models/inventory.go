package models

import (
	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// InventoryTransactionModel is one append-only ledger entry. Quantity is the
// magnitude; the sign follows from TransactionType.
type InventoryTransactionModel struct {
	BaseModel
	TenantID        uuid.UUID                 `gorm:"type:uuid;not null;index:idx_inv_tx_tenant_product_created,priority:1"`
	ProductID       uuid.UUID                 `gorm:"type:uuid;not null;index:idx_inv_tx_tenant_product_created,priority:2"`
	TransactionType inventory.TransactionType `gorm:"type:varchar(20);not null"`
	Quantity        decimal.Decimal           `gorm:"type:numeric(18,4);not null"`
	Reference       string                    `gorm:"type:varchar(100);index"`
	Notes           string                    `gorm:"type:text"`
	CreatedBy       *uuid.UUID                `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InventoryTransactionModel) TableName() string {
	return "inventory_transactions"
}

// ToDomain converts the persistence model to a domain ledger entry
func (m *InventoryTransactionModel) ToDomain() *inventory.InventoryTransaction {
	return &inventory.InventoryTransaction{
		BaseEntity:      m.BaseModel.ToDomain(),
		TenantID:        m.TenantID,
		ProductID:       m.ProductID,
		TransactionType: m.TransactionType,
		Quantity:        m.Quantity,
		Reference:       m.Reference,
		Notes:           m.Notes,
		CreatedBy:       m.CreatedBy,
	}
}

// InventoryTransactionModelFromDomain creates a persistence model from a ledger entry
func InventoryTransactionModelFromDomain(t *inventory.InventoryTransaction) *InventoryTransactionModel {
	m := &InventoryTransactionModel{
		TenantID:        t.TenantID,
		ProductID:       t.ProductID,
		TransactionType: t.TransactionType,
		Quantity:        t.Quantity,
		Reference:       t.Reference,
		Notes:           t.Notes,
		CreatedBy:       t.CreatedBy,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}
