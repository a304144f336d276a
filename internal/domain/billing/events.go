package billing

import (
	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeBillCreated     = "BillCreated"
	EventTypeBillCancelled   = "BillCancelled"
	EventTypePaymentRecorded = "PaymentRecorded"
)

// BillCreatedEvent is raised when a bill is committed
type BillCreatedEvent struct {
	shared.BaseDomainEvent
	BillNumber    string          `json:"bill_number"`
	FinalAmount   decimal.Decimal `json:"final_amount"`
	ItemCount     int             `json:"item_count"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	ProductIDs    []uuid.UUID     `json:"product_ids,omitempty"`
}

// NewBillCreatedEvent creates a BillCreatedEvent
func NewBillCreatedEvent(b *Bill) *BillCreatedEvent {
	return &BillCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillCreated, AggregateTypeBill, b.ID, b.TenantID),
		BillNumber:      b.BillNumber,
		FinalAmount:     b.FinalAmount,
		ItemCount:       len(b.Items),
		PaymentMethod:   b.PaymentMethod,
		ProductIDs:      b.ProductIDs(),
	}
}

// BillCancelledEvent is raised when a bill is cancelled
type BillCancelledEvent struct {
	shared.BaseDomainEvent
	BillNumber  string          `json:"bill_number"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	Reason      string          `json:"reason"`
}

// NewBillCancelledEvent creates a BillCancelledEvent
func NewBillCancelledEvent(b *Bill, reason string) *BillCancelledEvent {
	return &BillCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillCancelled, AggregateTypeBill, b.ID, b.TenantID),
		BillNumber:      b.BillNumber,
		FinalAmount:     b.FinalAmount,
		Reason:          reason,
	}
}

// PaymentRecordedEvent is raised after a payment is reconciled
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	BillNumber    string          `json:"bill_number"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewPaymentRecordedEvent creates a PaymentRecordedEvent
func NewPaymentRecordedEvent(b *Bill, p *Payment, totalPaid decimal.Decimal) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeBill, b.ID, b.TenantID),
		PaymentID:       p.ID,
		BillNumber:      b.BillNumber,
		Amount:          p.Amount,
		Method:          p.Method,
		TotalPaid:       totalPaid,
		PaymentStatus:   b.PaymentStatus,
	}
}
