package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a stock movement.
// Quantities are stored as non-negative magnitudes; only IN adds to stock.
type TransactionType string

const (
	// TransactionTypeIn represents stock received (purchase, opening stock, cancelled sale)
	TransactionTypeIn TransactionType = "IN"
	// TransactionTypeOut represents stock sold
	TransactionTypeOut TransactionType = "OUT"
	// TransactionTypeAdjustment represents a shrinkage or write-off correction
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
	// TransactionTypeReturn represents stock returned to a supplier
	TransactionTypeReturn TransactionType = "RETURN"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIn,
		TransactionTypeOut,
		TransactionTypeAdjustment,
		TransactionTypeReturn:
		return true
	}
	return false
}

// IsIncrease returns true if this transaction type increases stock
func (t TransactionType) IsIncrease() bool {
	return t == TransactionTypeIn
}

// ParseTransactionType parses a case-insensitive transaction type token
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Transaction type must be one of IN, OUT, ADJUSTMENT, RETURN")
	}
	return t, nil
}

// InventoryTransaction is one immutable ledger entry. Once appended it is
// never modified; corrections are made with new entries.
type InventoryTransaction struct {
	shared.BaseEntity
	TenantID        uuid.UUID
	ProductID       uuid.UUID
	TransactionType TransactionType
	Quantity        decimal.Decimal // magnitude, direction comes from TransactionType
	Reference       string
	Notes           string
	CreatedBy       *uuid.UUID
}

// NewInventoryTransaction creates a new ledger entry
func NewInventoryTransaction(
	tenantID uuid.UUID,
	productID uuid.UUID,
	txType TransactionType,
	quantity decimal.Decimal,
) (*InventoryTransaction, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if err := shared.CheckScale("INVALID_QUANTITY", "Quantity", quantity); err != nil {
		return nil, err
	}

	return &InventoryTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        tenantID,
		ProductID:       productID,
		TransactionType: txType,
		Quantity:        quantity,
	}, nil
}

// WithReference sets the reference (usually a bill number)
func (t *InventoryTransaction) WithReference(reference string) *InventoryTransaction {
	t.Reference = reference
	return t
}

// WithNotes sets free-form notes
func (t *InventoryTransaction) WithNotes(notes string) *InventoryTransaction {
	t.Notes = notes
	return t
}

// WithCreatedBy stamps the acting user
func (t *InventoryTransaction) WithCreatedBy(actorID uuid.UUID) *InventoryTransaction {
	if actorID != uuid.Nil {
		t.CreatedBy = &actorID
	}
	return t
}

// WithCreatedAt overrides the entry timestamp
func (t *InventoryTransaction) WithCreatedAt(at time.Time) *InventoryTransaction {
	t.CreatedAt = at
	t.UpdatedAt = at
	return t
}

// SignedQuantity returns the quantity with sign based on transaction type
func (t *InventoryTransaction) SignedQuantity() decimal.Decimal {
	if t.TransactionType.IsIncrease() {
		return t.Quantity
	}
	return t.Quantity.Neg()
}
