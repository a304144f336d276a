package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// nextSequenceSQL creates the day's row at 1 or increments it in one
// statement. Both PostgreSQL and SQLite (3.35+) accept it.
const nextSequenceSQL = `INSERT INTO bill_sequences (tenant_id, sequence_date, last_value, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT (tenant_id, sequence_date)
DO UPDATE SET last_value = bill_sequences.last_value + 1, updated_at = excluded.updated_at
RETURNING last_value`

// raiseSequenceSQL lifts the day's row to a floor without ever lowering it
const raiseSequenceSQL = `INSERT INTO bill_sequences (tenant_id, sequence_date, last_value, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (tenant_id, sequence_date)
DO UPDATE SET last_value = excluded.last_value, updated_at = excluded.updated_at
WHERE bill_sequences.last_value < excluded.last_value`

// GormSequenceRepository implements billing.SequenceRepository with an
// upsert on bill_sequences. The row stays locked until the surrounding
// transaction ends, so concurrent creates queue on it.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next increments and returns the counter for (tenantID, day)
func (r *GormSequenceRepository) Next(ctx context.Context, tenantID uuid.UUID, day string) (int64, error) {
	var value int64
	result := r.db.WithContext(ctx).
		Raw(nextSequenceSQL, tenantID, day, time.Now().UTC()).
		Scan(&value)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return value, nil
}

// Resync raises the counter past every bill number already stored under
// stem, including soft-deleted bills, which still hold their number.
func (r *GormSequenceRepository) Resync(ctx context.Context, tenantID uuid.UUID, day, stem string) (int64, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Unscoped().
		Model(&models.BillModel{}).
		Where("tenant_id = ? AND bill_number LIKE ?", tenantID, stem+"%").
		Pluck("bill_number", &numbers).Error; err != nil {
		return 0, err
	}

	var highest int64
	for _, n := range numbers {
		if seq, ok := billing.ParseBillSequence(n, stem); ok && seq > highest {
			highest = seq
		}
	}
	if highest > 0 {
		if err := r.db.WithContext(ctx).
			Exec(raiseSequenceSQL, tenantID, day, highest, time.Now().UTC()).Error; err != nil {
			return 0, err
		}
	}

	var row models.BillSequenceModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sequence_date = ?", tenantID, day).
		Limit(1).Find(&row).Error
	if err != nil {
		return 0, err
	}
	return row.LastValue, nil
}

// Ensure GormSequenceRepository implements billing.SequenceRepository
var _ billing.SequenceRepository = (*GormSequenceRepository)(nil)
