package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// BillModel is the persistence model for the Bill aggregate root.
type BillModel struct {
	AggregateModel
	TenantID       uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_bills_tenant_number,priority:1;index:idx_bills_tenant_created,priority:1"`
	BillNumber     string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_bills_tenant_number,priority:2"`
	CustomerID     *uuid.UUID            `gorm:"type:uuid;index"`
	TotalAmount    decimal.Decimal       `gorm:"type:numeric(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal       `gorm:"type:numeric(18,4);not null;default:0"`
	TaxAmount      decimal.Decimal       `gorm:"type:numeric(18,4);not null;default:0"`
	FinalAmount    decimal.Decimal       `gorm:"type:numeric(18,4);not null;default:0"`
	PaymentMethod  billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	PaymentStatus  billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Status         billing.BillStatus    `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Notes          string                `gorm:"type:text"`
	DeliveryDate   *time.Time
	CreatedBy      *uuid.UUID      `gorm:"type:uuid"`
	Items          []BillItemModel `gorm:"foreignKey:BillID;references:ID"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill. Items are mapped
// only when they were preloaded.
func (m *BillModel) ToDomain() *billing.Bill {
	b := &billing.Bill{
		TenantAggregateRoot: m.TenantAggregateRoot(m.TenantID, m.CreatedBy),
		BillNumber:          m.BillNumber,
		CustomerID:          m.CustomerID,
		TotalAmount:         m.TotalAmount,
		DiscountAmount:      m.DiscountAmount,
		TaxAmount:           m.TaxAmount,
		FinalAmount:         m.FinalAmount,
		PaymentMethod:       m.PaymentMethod,
		PaymentStatus:       m.PaymentStatus,
		Status:              m.Status,
		Notes:               m.Notes,
		DeliveryDate:        m.DeliveryDate,
	}
	if len(m.Items) > 0 {
		b.Items = make([]billing.BillItem, len(m.Items))
		for i := range m.Items {
			b.Items[i] = *m.Items[i].ToDomain()
		}
	}
	return b
}

// FromDomain populates the header columns from a domain Bill
func (m *BillModel) FromDomain(b *billing.Bill) {
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	m.TenantID = b.TenantID
	m.CreatedBy = b.CreatedBy
	m.BillNumber = b.BillNumber
	m.CustomerID = b.CustomerID
	m.TotalAmount = b.TotalAmount
	m.DiscountAmount = b.DiscountAmount
	m.TaxAmount = b.TaxAmount
	m.FinalAmount = b.FinalAmount
	m.PaymentMethod = b.PaymentMethod
	m.PaymentStatus = b.PaymentStatus
	m.Status = b.Status
	m.Notes = b.Notes
	m.DeliveryDate = b.DeliveryDate
}

// BillModelFromDomain creates a header model from a domain Bill. Items are
// written separately so their order is explicit.
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{}
	m.FromDomain(b)
	return m
}

// BillItemModel is one line of a bill.
type BillItemModel struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	BillID         uuid.UUID         `gorm:"type:uuid;not null;index:idx_bill_items_bill_line,priority:1"`
	LineNo         int               `gorm:"not null;index:idx_bill_items_bill_line,priority:2"`
	ProductID      *uuid.UUID        `gorm:"type:uuid;index"`
	CustomName     string            `gorm:"type:varchar(200)"`
	Description    string            `gorm:"type:varchar(500)"`
	Quantity       decimal.Decimal   `gorm:"type:numeric(18,4);not null"`
	Unit           string            `gorm:"type:varchar(20);not null;default:'pcs'"`
	UnitPrice      decimal.Decimal   `gorm:"type:numeric(18,4);not null;default:0"`
	TotalPrice     decimal.Decimal   `gorm:"type:numeric(18,4);not null;default:0"`
	Discount       decimal.Decimal   `gorm:"type:numeric(18,4);not null;default:0"`
	IsTailoring    bool              `gorm:"not null;default:false"`
	TailoringPrice decimal.Decimal   `gorm:"type:numeric(18,4);not null;default:0"`
	Measurements   map[string]string `gorm:"type:text;serializer:json"`
	Notes          string            `gorm:"type:text"`
	CreatedAt      time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BillItemModel) TableName() string {
	return "bill_items"
}

// ToDomain converts the persistence model to a domain BillItem
func (m *BillItemModel) ToDomain() *billing.BillItem {
	return &billing.BillItem{
		ID:             m.ID,
		BillID:         m.BillID,
		LineNo:         m.LineNo,
		ProductID:      m.ProductID,
		CustomName:     m.CustomName,
		Description:    m.Description,
		Quantity:       m.Quantity,
		Unit:           m.Unit,
		UnitPrice:      m.UnitPrice,
		TotalPrice:     m.TotalPrice,
		Discount:       m.Discount,
		IsTailoring:    m.IsTailoring,
		TailoringPrice: m.TailoringPrice,
		Measurements:   m.Measurements,
		Notes:          m.Notes,
	}
}

// BillItemModelsFromDomain maps the lines of b in line order
func BillItemModelsFromDomain(b *billing.Bill) []BillItemModel {
	out := make([]BillItemModel, len(b.Items))
	for i, item := range b.Items {
		out[i] = BillItemModel{
			ID:             item.ID,
			TenantID:       b.TenantID,
			BillID:         b.ID,
			LineNo:         item.LineNo,
			ProductID:      item.ProductID,
			CustomName:     item.CustomName,
			Description:    item.Description,
			Quantity:       item.Quantity,
			Unit:           item.Unit,
			UnitPrice:      item.UnitPrice,
			TotalPrice:     item.TotalPrice,
			Discount:       item.Discount,
			IsTailoring:    item.IsTailoring,
			TailoringPrice: item.TailoringPrice,
			Measurements:   item.Measurements,
			Notes:          item.Notes,
			CreatedAt:      b.UpdatedAt,
		}
		if out[i].ID == uuid.Nil {
			out[i].ID = uuid.New()
		}
	}
	return out
}

// PaymentModel is an append-only payment row.
type PaymentModel struct {
	BaseModel
	TenantID  uuid.UUID             `gorm:"type:uuid;not null;index:idx_payments_tenant_bill,priority:1"`
	BillID    uuid.UUID             `gorm:"type:uuid;not null;index:idx_payments_tenant_bill,priority:2"`
	Amount    decimal.Decimal       `gorm:"type:numeric(18,4);not null"`
	Method    billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference string                `gorm:"type:varchar(100)"`
	Notes     string                `gorm:"type:text"`
	Status    billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	CreatedBy *uuid.UUID            `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		BillID:     m.BillID,
		Amount:     m.Amount,
		Method:     m.Method,
		Reference:  m.Reference,
		Notes:      m.Notes,
		Status:     m.Status,
		CreatedBy:  m.CreatedBy,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{
		TenantID:  p.TenantID,
		BillID:    p.BillID,
		Amount:    p.Amount,
		Method:    p.Method,
		Reference: p.Reference,
		Notes:     p.Notes,
		Status:    p.Status,
		CreatedBy: p.CreatedBy,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// BillSequenceModel is the per-tenant, per-day bill counter. The composite
// primary key is what makes the upsert in SequenceRepository atomic.
type BillSequenceModel struct {
	TenantID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	SequenceDate string    `gorm:"type:varchar(10);primaryKey"` // YYYY-MM-DD
	LastValue    int64     `gorm:"not null;default:0"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BillSequenceModel) TableName() string {
	return "bill_sequences"
}
