package billing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Payment is one payment event against a bill. Payments are append-only.
type Payment struct {
	shared.BaseEntity
	TenantID  uuid.UUID
	BillID    uuid.UUID
	Amount    decimal.Decimal
	Method    PaymentMethod
	Reference string
	Notes     string
	Status    PaymentStatus
	CreatedBy *uuid.UUID
}

// NewPayment creates a completed payment
func NewPayment(tenantID, billID uuid.UUID, amount decimal.Decimal, method PaymentMethod) (*Payment, error) {
	if billID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BILL", "Bill ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if err := shared.CheckScale("INVALID_AMOUNT", "Payment amount", amount); err != nil {
		return nil, err
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}

	return &Payment{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		BillID:     billID,
		Amount:     amount,
		Method:     method,
		Status:     PaymentStatusCompleted,
	}, nil
}

// WithReference sets the external reference (UPI ref, cheque number)
func (p *Payment) WithReference(reference string) *Payment {
	p.Reference = strings.TrimSpace(reference)
	return p
}

// WithNotes sets free-form notes
func (p *Payment) WithNotes(notes string) *Payment {
	p.Notes = notes
	return p
}

// WithCreatedBy stamps the acting user
func (p *Payment) WithCreatedBy(actorID uuid.UUID) *Payment {
	if actorID != uuid.Nil {
		p.CreatedBy = &actorID
	}
	return p
}

// TotalPaid sums payment amounts
func TotalPaid(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
