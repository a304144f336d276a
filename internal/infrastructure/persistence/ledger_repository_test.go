package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormPaymentRepository(t *testing.T) {
	db := newTestDatabase(t)
	bills := NewGormBillRepository(db.DB)
	repo := NewGormPaymentRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	bill := newTestBill(t, tenantID, "CS260101001", customLine(t, "Saree fall", "1", "885"))
	require.NoError(t, bills.Create(ctx, bill))

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, amount := range []string{"300", "85.50", "0.50"} {
		p, err := billing.NewPayment(tenantID, bill.ID, dec(amount), billing.PaymentMethodCash)
		require.NoError(t, err)
		p.WithReference("R" + amount)
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, p))
	}

	t.Run("lists newest first", func(t *testing.T) {
		payments, err := repo.FindByBill(ctx, tenantID, bill.ID)
		require.NoError(t, err)
		require.Len(t, payments, 3)
		assert.Equal(t, "R0.50", payments[0].Reference)
		assert.Equal(t, "R300", payments[2].Reference)
		assert.Equal(t, billing.PaymentStatusCompleted, payments[0].Status)
	})

	t.Run("sums exactly", func(t *testing.T) {
		total, err := repo.SumByBill(ctx, tenantID, bill.ID)
		require.NoError(t, err)
		assert.True(t, total.Equal(dec("386")), total.String())
	})

	t.Run("unknown bill sums to zero", func(t *testing.T) {
		total, err := repo.SumByBill(ctx, tenantID, uuid.New())
		require.NoError(t, err)
		assert.True(t, total.IsZero())

		payments, err := repo.FindByBill(ctx, tenantID, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, payments)
	})
}

func TestGormSequenceRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormSequenceRepository(db.DB)
	ctx := context.Background()
	tenantA, tenantB := uuid.New(), uuid.New()

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Next(ctx, tenantA, "2026-01-01")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	t.Run("tenants count independently", func(t *testing.T) {
		got, err := repo.Next(ctx, tenantB, "2026-01-01")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})

	t.Run("a new day starts at one", func(t *testing.T) {
		got, err := repo.Next(ctx, tenantA, "2026-01-02")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})

	t.Run("rolled back increments are given back", func(t *testing.T) {
		err := db.Transaction(ctx, func(tx *gorm.DB) error {
			got, err := NewGormSequenceRepository(tx).Next(ctx, tenantA, "2026-01-01")
			require.NoError(t, err)
			assert.Equal(t, int64(4), got)
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)

		got, err := repo.Next(ctx, tenantA, "2026-01-01")
		require.NoError(t, err)
		assert.Equal(t, int64(4), got)
	})
}

func TestGormSequenceRepository_Resync(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormSequenceRepository(db.DB)
	bills := NewGormBillRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	for _, number := range []string{"CS260101004", "CS260101012", "CS260102099", "INV260101500"} {
		require.NoError(t, bills.Create(ctx, newTestBill(t, tenantID, number, customLine(t, "Alteration", "1", "50"))))
	}
	// another tenant's numbers never count
	require.NoError(t, bills.Create(ctx, newTestBill(t, uuid.New(), "CS260101900", customLine(t, "Alteration", "1", "50"))))

	t.Run("creates the row at the highest taken sequence", func(t *testing.T) {
		got, err := repo.Resync(ctx, tenantID, "2026-01-01", "CS260101")
		require.NoError(t, err)
		assert.Equal(t, int64(12), got)

		next, err := repo.Next(ctx, tenantID, "2026-01-01")
		require.NoError(t, err)
		assert.Equal(t, int64(13), next)
	})

	t.Run("never lowers the counter", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			_, err := repo.Next(ctx, tenantID, "2026-01-01")
			require.NoError(t, err)
		}
		got, err := repo.Resync(ctx, tenantID, "2026-01-01", "CS260101")
		require.NoError(t, err)
		assert.Equal(t, int64(23), got)
	})

	t.Run("nothing taken leaves no row", func(t *testing.T) {
		got, err := repo.Resync(ctx, tenantID, "2026-01-03", "CS260103")
		require.NoError(t, err)
		assert.Zero(t, got)
	})
}

func TestGormInventoryTransactionRepository(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormInventoryTransactionRepository(db.DB)
	ctx := context.Background()
	tenantID := uuid.New()
	shirt := seedProduct(t, db, tenantID, "SHIRT", "295", "5")
	trouser := seedProduct(t, db, tenantID, "TROUSER", "600", "0")

	base := time.Now().UTC().Add(-30 * 24 * time.Hour)
	entry := func(productID uuid.UUID, typ inventory.TransactionType, qty, ref string, at time.Time) *inventory.InventoryTransaction {
		e, err := inventory.NewInventoryTransaction(tenantID, productID, typ, dec(qty))
		require.NoError(t, err)
		return e.WithReference(ref).WithCreatedAt(at)
	}

	require.NoError(t, repo.Create(ctx, entry(shirt.ID, inventory.TransactionTypeIn, "10", "GRN-1", base)))
	require.NoError(t, repo.CreateBatch(ctx, []*inventory.InventoryTransaction{
		entry(shirt.ID, inventory.TransactionTypeOut, "3", "CS260101001", base.Add(time.Hour)),
		entry(trouser.ID, inventory.TransactionTypeOut, "1", "CS260101001", base.Add(time.Hour)),
	}))
	require.NoError(t, repo.Create(ctx, entry(shirt.ID, inventory.TransactionTypeAdjustment, "2", "", time.Now().UTC())))
	require.NoError(t, repo.Create(ctx, entry(shirt.ID, inventory.TransactionTypeReturn, "1", "", time.Now().UTC())))

	t.Run("product history is newest first", func(t *testing.T) {
		txs, err := repo.FindByProduct(ctx, tenantID, shirt.ID)
		require.NoError(t, err)
		require.Len(t, txs, 4)
		assert.Equal(t, inventory.TransactionTypeIn, txs[3].TransactionType)
		assert.True(t, inventory.FoldStock(txs).Equal(dec("4")))
	})

	t.Run("folds stock per product in the database", func(t *testing.T) {
		stock, err := repo.StockByProduct(ctx, tenantID)
		require.NoError(t, err)
		assert.True(t, stock[shirt.ID].Equal(dec("4")), stock[shirt.ID].String())
		assert.True(t, stock[trouser.ID].Equal(dec("-1")), stock[trouser.ID].String())
	})

	t.Run("finds entries by reference", func(t *testing.T) {
		txs, err := repo.FindByReference(ctx, tenantID, "CS260101001")
		require.NoError(t, err)
		assert.Len(t, txs, 2)
	})

	t.Run("counts recent entries", func(t *testing.T) {
		n, err := repo.CountSince(ctx, tenantID, time.Now().Add(-7*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("other tenants see nothing", func(t *testing.T) {
		stock, err := repo.StockByProduct(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, stock)
	})
}
