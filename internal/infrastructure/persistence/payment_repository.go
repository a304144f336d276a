package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements billing.PaymentRepository using GORM.
// Rows are only ever inserted.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create appends a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	return r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error
}

// FindByBill returns the payments of a bill, newest first
func (r *GormPaymentRepository) FindByBill(ctx context.Context, tenantID, billID uuid.UUID) ([]billing.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Scopes(forTenant(tenantID)).
		Where("bill_id = ?", billID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	payments := make([]billing.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// SumByBill returns the total paid against a bill
func (r *GormPaymentRepository) SumByBill(ctx context.Context, tenantID, billID uuid.UUID) (decimal.Decimal, error) {
	var agg struct {
		Total decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Scopes(forTenant(tenantID)).
		Where("bill_id = ?", billID).
		Select("SUM(amount) AS total").
		Scan(&agg).Error; err != nil {
		return decimal.Zero, err
	}
	return nullDecimal(agg.Total), nil
}

// Ensure GormPaymentRepository implements billing.PaymentRepository
var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
