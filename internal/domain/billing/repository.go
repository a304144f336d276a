package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BillFilter narrows bill listings
type BillFilter struct {
	shared.Filter
	Status        BillStatus
	PaymentStatus PaymentStatus
	CustomerID    *uuid.UUID
	From          *time.Time
	To            *time.Time
}

// BillStats summarises bills created in a period
type BillStats struct {
	BillCount      int64
	CancelledCount int64
	GrossSales     decimal.Decimal // Σ final amount of non-cancelled bills
	Collected      decimal.Decimal // Σ payments on those bills
}

// Outstanding is what remains to be collected
func (s BillStats) Outstanding() decimal.Decimal {
	return s.GrossSales.Sub(s.Collected)
}

// DailySales is one day of the sales series
type DailySales struct {
	Day         string
	BillCount   int64
	TotalAmount decimal.Decimal
}

// BillRepository stores bills together with their items
type BillRepository interface {
	// Create inserts the bill header followed by its items in line order.
	// A duplicate bill number surfaces as a BILL_NUMBER_CONFLICT error.
	Create(ctx context.Context, bill *Bill) error

	// Update writes the header fields guarded by the bill version and bumps it
	Update(ctx context.Context, bill *Bill) error

	// ReplaceItems deletes the current lines and inserts bill.Items
	ReplaceItems(ctx context.Context, bill *Bill) error

	// FindByIDForTenant loads a bill with its items
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Bill, error)

	// FindByIDForUpdate loads a bill with its items and holds a row lock on
	// the header until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Bill, error)

	// FindAllForTenant lists bill headers (without items), newest first by default
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter BillFilter) ([]Bill, int64, error)

	// Stats aggregates bills created in [from, to)
	Stats(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*BillStats, error)

	// DailySales returns per-day totals of non-cancelled bills in [from, to)
	DailySales(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]DailySales, error)
}

// PaymentRepository is the append-only store for payments
type PaymentRepository interface {
	// Create appends a payment
	Create(ctx context.Context, payment *Payment) error

	// FindByBill returns the payments of a bill, newest first
	FindByBill(ctx context.Context, tenantID, billID uuid.UUID) ([]Payment, error)

	// SumByBill returns the total paid against a bill
	SumByBill(ctx context.Context, tenantID, billID uuid.UUID) (decimal.Decimal, error)
}

// SequenceRepository hands out per-tenant, per-day counters
type SequenceRepository interface {
	// Next atomically increments the counter for (tenantID, day) and returns
	// the new value, starting at 1. It must run inside the transaction that
	// persists the bill so a rolled-back bill also rolls back its number.
	Next(ctx context.Context, tenantID uuid.UUID, day string) (int64, error)
	// Resync raises the counter for (tenantID, day) to the highest SEQ
	// already used by a bill number starting with stem. It never lowers the
	// counter and returns the resulting value.
	Resync(ctx context.Context, tenantID uuid.UUID, day, stem string) (int64, error)
}
