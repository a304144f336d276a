package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// Create inserts the header and then the lines in line order
func (r *GormBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	header := models.BillModelFromDomain(bill)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(header).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewConflictError(billing.ErrCodeBillNumberConflict,
				"Bill number "+bill.BillNumber+" is already in use")
		}
		return err
	}
	return r.insertItems(ctx, bill)
}

// Update writes the header guarded by version and bumps it
func (r *GormBillRepository) Update(ctx context.Context, bill *billing.Bill) error {
	m := models.BillModelFromDomain(bill)
	result := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", bill.ID, bill.TenantID, bill.Version).
		Updates(map[string]any{
			"customer_id":     m.CustomerID,
			"total_amount":    m.TotalAmount,
			"discount_amount": m.DiscountAmount,
			"tax_amount":      m.TaxAmount,
			"final_amount":    m.FinalAmount,
			"payment_method":  m.PaymentMethod,
			"payment_status":  m.PaymentStatus,
			"status":          m.Status,
			"notes":           m.Notes,
			"delivery_date":   m.DeliveryDate,
			"updated_at":      m.UpdatedAt,
			"version":         gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	bill.IncrementVersion()
	return nil
}

// ReplaceItems deletes the stored lines and inserts bill.Items
func (r *GormBillRepository) ReplaceItems(ctx context.Context, bill *billing.Bill) error {
	if err := r.db.WithContext(ctx).
		Where("bill_id = ? AND tenant_id = ?", bill.ID, bill.TenantID).
		Delete(&models.BillItemModel{}).Error; err != nil {
		return err
	}
	return r.insertItems(ctx, bill)
}

func (r *GormBillRepository) insertItems(ctx context.Context, bill *billing.Bill) error {
	items := models.BillItemModelsFromDomain(bill)
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// FindByIDForTenant loads a bill with its items
func (r *GormBillRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Bill, error) {
	return r.findOne(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate loads a bill and locks its header row. SQLite has no
// row locks; its single writer connection serialises transactions instead.
func (r *GormBillRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*billing.Bill, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findOne(q, tenantID, id)
}

func (r *GormBillRepository) findOne(q *gorm.DB, tenantID, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := q.Scopes(forTenant(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.db.WithContext(q.Statement.Context).
		Where("bill_id = ?", model.ID).
		Order("line_no ASC").
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists bill headers for a tenant
func (r *GormBillRepository) FindAllForTenant(
	ctx context.Context,
	tenantID uuid.UUID,
	filter billing.BillFilter,
) ([]billing.Bill, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BillModel{}).Scopes(forTenant(tenantID))

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", filter.To.UTC())
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("UPPER(bill_number) LIKE ? OR UPPER(notes) LIKE ?",
			"%"+strings.ToUpper(search)+"%", "%"+strings.ToUpper(search)+"%")
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.BillModel
	if err := query.Scopes(paginate(filter.Filter, BillSortFields, "created_at")).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	bills := make([]billing.Bill, len(rows))
	for i := range rows {
		bills[i] = *rows[i].ToDomain()
	}
	return bills, total, nil
}

// Stats aggregates bills created in [from, to)
func (r *GormBillRepository) Stats(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*billing.BillStats, error) {
	var agg struct {
		BillCount      int64
		CancelledCount int64
		GrossSales     decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Scopes(forTenant(tenantID)).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Select(`COUNT(*) AS bill_count,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS cancelled_count,
			SUM(CASE WHEN status <> ? THEN final_amount ELSE 0 END) AS gross_sales`,
			billing.BillStatusCancelled, billing.BillStatusCancelled).
		Scan(&agg).Error; err != nil {
		return nil, err
	}

	var paid struct {
		Collected decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).
		Table("payments AS p").
		Joins("JOIN bills AS b ON b.id = p.bill_id AND b.tenant_id = p.tenant_id").
		Where("p.tenant_id = ? AND b.created_at >= ? AND b.created_at < ? AND b.status <> ?",
			tenantID, from.UTC(), to.UTC(), billing.BillStatusCancelled).
		Select("SUM(p.amount) AS collected").
		Scan(&paid).Error; err != nil {
		return nil, err
	}

	return &billing.BillStats{
		BillCount:      agg.BillCount,
		CancelledCount: agg.CancelledCount,
		GrossSales:     nullDecimal(agg.GrossSales),
		Collected:      nullDecimal(paid.Collected),
	}, nil
}

// DailySales returns per-day totals of non-cancelled bills in [from, to)
func (r *GormBillRepository) DailySales(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]billing.DailySales, error) {
	day := dayExpression(r.db, "created_at")

	var rows []struct {
		Day         string
		BillCount   int64
		TotalAmount decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Scopes(forTenant(tenantID)).
		Where("created_at >= ? AND created_at < ? AND status <> ?", from.UTC(), to.UTC(), billing.BillStatusCancelled).
		Select(day + " AS day, COUNT(*) AS bill_count, SUM(final_amount) AS total_amount").
		Group(day).
		Order("day ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]billing.DailySales, len(rows))
	for i, row := range rows {
		out[i] = billing.DailySales{
			Day:         row.Day,
			BillCount:   row.BillCount,
			TotalAmount: nullDecimal(row.TotalAmount),
		}
	}
	return out, nil
}

// dayExpression renders a column as YYYY-MM-DD for the connected dialect
func dayExpression(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "postgres" {
		return "to_char(" + column + ", 'YYYY-MM-DD')"
	}
	return "substr(" + column + ", 1, 10)"
}

func nullDecimal(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// isUniqueViolation recognises duplicate-key errors from either driver
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

// Ensure GormBillRepository implements billing.BillRepository
var _ billing.BillRepository = (*GormBillRepository)(nil)
