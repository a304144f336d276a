package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionType_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		txType   TransactionType
		expected bool
	}{
		{"IN is valid", TransactionTypeIn, true},
		{"OUT is valid", TransactionTypeOut, true},
		{"ADJUSTMENT is valid", TransactionTypeAdjustment, true},
		{"RETURN is valid", TransactionTypeReturn, true},
		{"lower case is not valid", TransactionType("in"), false},
		{"empty is not valid", TransactionType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.txType.IsValid())
		})
	}
}

func TestParseTransactionType(t *testing.T) {
	got, err := ParseTransactionType(" adjustment ")
	require.NoError(t, err)
	assert.Equal(t, TransactionTypeAdjustment, got)

	_, err = ParseTransactionType("TRANSFER")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestNewInventoryTransaction(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()

	t.Run("valid entry", func(t *testing.T) {
		actor := uuid.New()
		tx, err := NewInventoryTransaction(tenantID, productID, TransactionTypeOut, decimal.NewFromInt(3))
		require.NoError(t, err)
		tx.WithReference("CS261018001").WithNotes("sale").WithCreatedBy(actor)

		assert.NotEqual(t, uuid.Nil, tx.ID)
		assert.Equal(t, "CS261018001", tx.Reference)
		assert.Equal(t, "sale", tx.Notes)
		require.NotNil(t, tx.CreatedBy)
		assert.Equal(t, actor, *tx.CreatedBy)
	})

	t.Run("nil actor leaves creator empty", func(t *testing.T) {
		tx, err := NewInventoryTransaction(tenantID, productID, TransactionTypeIn, decimal.NewFromInt(1))
		require.NoError(t, err)
		tx.WithCreatedBy(uuid.Nil)
		assert.Nil(t, tx.CreatedBy)
	})

	invalid := []struct {
		name     string
		tenant   uuid.UUID
		product  uuid.UUID
		txType   TransactionType
		quantity decimal.Decimal
		code     string
	}{
		{"missing tenant", uuid.Nil, productID, TransactionTypeIn, decimal.NewFromInt(1), "INVALID_TENANT"},
		{"missing product", tenantID, uuid.Nil, TransactionTypeIn, decimal.NewFromInt(1), "INVALID_PRODUCT"},
		{"bad type", tenantID, productID, TransactionType("LOCK"), decimal.NewFromInt(1), "INVALID_TRANSACTION_TYPE"},
		{"zero quantity", tenantID, productID, TransactionTypeIn, decimal.Zero, "INVALID_QUANTITY"},
		{"negative quantity", tenantID, productID, TransactionTypeOut, decimal.NewFromInt(-3), "INVALID_QUANTITY"},
		{"quantity past four places", tenantID, productID, TransactionTypeIn, decimal.RequireFromString("2.50001"), "INVALID_QUANTITY"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInventoryTransaction(tt.tenant, tt.product, tt.txType, tt.quantity)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, shared.KindValidation, de.Kind)
		})
	}
}

func TestSignedQuantity(t *testing.T) {
	q := decimal.NewFromFloat(2.5)
	for _, txType := range []TransactionType{TransactionTypeOut, TransactionTypeAdjustment, TransactionTypeReturn} {
		tx := InventoryTransaction{TransactionType: txType, Quantity: q}
		assert.True(t, tx.SignedQuantity().Equal(q.Neg()), txType.String())
	}
	in := InventoryTransaction{TransactionType: TransactionTypeIn, Quantity: q}
	assert.True(t, in.SignedQuantity().Equal(q))
}

func TestFoldStock(t *testing.T) {
	entry := func(txType TransactionType, q string) InventoryTransaction {
		return InventoryTransaction{TransactionType: txType, Quantity: decimal.RequireFromString(q)}
	}
	ledger := []InventoryTransaction{
		entry(TransactionTypeIn, "10"),
		entry(TransactionTypeOut, "3"),
		entry(TransactionTypeAdjustment, "0.5"),
		entry(TransactionTypeReturn, "1"),
		entry(TransactionTypeIn, "2.25"),
	}

	t.Run("sums with sign from type", func(t *testing.T) {
		assert.Equal(t, "7.75", FoldStock(ledger).String())
	})

	t.Run("order independent", func(t *testing.T) {
		reversed := make([]InventoryTransaction, len(ledger))
		for i := range ledger {
			reversed[len(ledger)-1-i] = ledger[i]
		}
		assert.True(t, FoldStock(ledger).Equal(FoldStock(reversed)))
		assert.True(t, FoldStock(ledger).Equal(FoldStock(ledger)))
	})

	t.Run("empty ledger is zero", func(t *testing.T) {
		assert.True(t, FoldStock(nil).IsZero())
	})
}

func TestIsLowStock(t *testing.T) {
	five := decimal.NewFromInt(5)
	assert.True(t, IsLowStock(decimal.NewFromInt(5), five))
	assert.True(t, IsLowStock(decimal.NewFromInt(-1), five))
	assert.False(t, IsLowStock(decimal.NewFromInt(6), five))
	assert.False(t, IsLowStock(decimal.NewFromInt(-10), decimal.Zero))
}

func TestWithCreatedAt(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tx, err := NewInventoryTransaction(uuid.New(), uuid.New(), TransactionTypeIn, decimal.NewFromInt(1))
	require.NoError(t, err)
	tx.WithCreatedAt(at)
	assert.Equal(t, at, tx.CreatedAt)
}
