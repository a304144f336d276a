package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/domain/catalog"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedProduct(t *testing.T, db *Database, tenantID uuid.UUID, code string, price, minStock string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(tenantID, code, "Product "+code, "pcs")
	require.NoError(t, err)
	require.NoError(t, p.SetPrice(dec(price)))
	require.NoError(t, p.SetMinStock(dec(minStock)))
	require.NoError(t, NewGormProductRepository(db.DB).Save(context.Background(), p))
	return p
}

func seedStock(t *testing.T, db *Database, tenantID, productID uuid.UUID, qty string) {
	t.Helper()
	entry, err := inventory.NewInventoryTransaction(tenantID, productID, inventory.TransactionTypeIn, dec(qty))
	require.NoError(t, err)
	entry.WithReference("OPENING")
	require.NoError(t, NewGormInventoryTransactionRepository(db.DB).Create(context.Background(), entry))
}

func catalogLine(t *testing.T, productID uuid.UUID, qty, unitPrice string) billing.BillItem {
	t.Helper()
	q, p := dec(qty), dec(unitPrice)
	item, err := billing.NewBillItem(billing.BillItemInput{
		ProductID:  &productID,
		Quantity:   q,
		UnitPrice:  p,
		TotalPrice: q.Mul(p),
	})
	require.NoError(t, err)
	return *item
}

func customLine(t *testing.T, name, qty, unitPrice string) billing.BillItem {
	t.Helper()
	q, p := dec(qty), dec(unitPrice)
	item, err := billing.NewBillItem(billing.BillItemInput{
		CustomName: name,
		Quantity:   q,
		UnitPrice:  p,
		TotalPrice: q.Mul(p),
	})
	require.NoError(t, err)
	return *item
}

func newTestBill(t *testing.T, tenantID uuid.UUID, number string, items ...billing.BillItem) *billing.Bill {
	t.Helper()
	bill, err := billing.NewBill(tenantID, uuid.New(), number, items,
		decimal.Zero, decimal.Zero, billing.PaymentMethodCash)
	require.NoError(t, err)
	return bill
}
