package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// AddInventoryRequest appends one ledger entry
type AddInventoryRequest struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	TransactionType string          `json:"transaction_type" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	Reference       string          `json:"reference" binding:"max=100"`
	Notes           string          `json:"notes" binding:"max=500"`
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	TransactionType string          `json:"transaction_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	SignedQuantity  decimal.Decimal `json:"signed_quantity"`
	Reference       string          `json:"reference,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedBy       *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ProductStockResponse is the derived stock position of one product
type ProductStockResponse struct {
	ProductID    uuid.UUID             `json:"product_id"`
	ProductCode  string                `json:"product_code"`
	ProductName  string                `json:"product_name"`
	Unit         string                `json:"unit"`
	CurrentStock decimal.Decimal       `json:"current_stock"`
	MinStock     decimal.Decimal       `json:"min_stock"`
	IsLowStock   bool                  `json:"is_low_stock"`
	Transactions []TransactionResponse `json:"transactions"`
}

// InventoryStatsResponse summarises the tenant's stock position
type InventoryStatsResponse struct {
	TotalActiveProducts int64 `json:"total_active_products"`
	// ProductsWithThreshold counts products that have a minimum configured
	ProductsWithThreshold int64 `json:"products_with_threshold"`
	// LowStockProducts counts products whose derived stock is at or below
	// their minimum
	LowStockProducts      int64 `json:"low_stock_products"`
	TransactionsLast7Days int64 `json:"transactions_last_7_days"`
}

// ToTransactionResponse converts a ledger entry to a response
func ToTransactionResponse(t *inventory.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		ProductID:       t.ProductID,
		TransactionType: t.TransactionType.String(),
		Quantity:        t.Quantity,
		SignedQuantity:  t.SignedQuantity(),
		Reference:       t.Reference,
		Notes:           t.Notes,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of ledger entries
func ToTransactionResponses(txs []inventory.InventoryTransaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i := range txs {
		out[i] = ToTransactionResponse(&txs[i])
	}
	return out
}
