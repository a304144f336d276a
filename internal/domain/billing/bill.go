package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeBill is the aggregate type name used in events
const AggregateTypeBill = "Bill"

// Bill is one sale transaction and the aggregate root for its items.
// Payments reference the bill but are stored separately (append-only).
type Bill struct {
	shared.TenantAggregateRoot
	BillNumber     string
	CustomerID     *uuid.UUID
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	FinalAmount    decimal.Decimal
	PaymentMethod  PaymentMethod
	PaymentStatus  PaymentStatus
	Status         BillStatus
	Notes          string
	DeliveryDate   *time.Time
	Items          []BillItem
}

// NewBill creates an active, unpaid bill. Items keep the order given.
func NewBill(
	tenantID uuid.UUID,
	actorID uuid.UUID,
	billNumber string,
	items []BillItem,
	discountAmount decimal.Decimal,
	taxAmount decimal.Decimal,
	method PaymentMethod,
) (*Bill, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if strings.TrimSpace(billNumber) == "" {
		return nil, shared.NewDomainError("INVALID_BILL_NUMBER", "Bill number cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}

	bill := &Bill{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, actorID),
		BillNumber:          billNumber,
		PaymentMethod:       method,
		PaymentStatus:       PaymentStatusPending,
		Status:              BillStatusActive,
	}
	if err := bill.setItems(items); err != nil {
		return nil, err
	}
	if err := bill.setAdjustments(discountAmount, taxAmount); err != nil {
		return nil, err
	}

	return bill, nil
}

// ReplaceItems swaps the bill lines and recomputes totals. The ledger is not
// adjusted; stock corrections for edited lines are the caller's job.
func (b *Bill) ReplaceItems(items []BillItem) error {
	if err := b.ensureEditable(); err != nil {
		return err
	}
	if err := b.setItems(items); err != nil {
		return err
	}
	if err := b.recalculateTotals(); err != nil {
		return err
	}
	b.touch()
	return nil
}

// SetAdjustments sets the bill-level discount and tax
func (b *Bill) SetAdjustments(discountAmount, taxAmount decimal.Decimal) error {
	if err := b.ensureEditable(); err != nil {
		return err
	}
	if err := b.setAdjustments(discountAmount, taxAmount); err != nil {
		return err
	}
	b.touch()
	return nil
}

// SetCustomer attaches or detaches the customer
func (b *Bill) SetCustomer(customerID *uuid.UUID) error {
	if err := b.ensureEditable(); err != nil {
		return err
	}
	if customerID != nil && *customerID == uuid.Nil {
		customerID = nil
	}
	b.CustomerID = customerID
	b.touch()
	return nil
}

// SetPaymentMethod changes the payment method
func (b *Bill) SetPaymentMethod(method PaymentMethod) error {
	if err := b.ensureEditable(); err != nil {
		return err
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	b.PaymentMethod = method
	b.touch()
	return nil
}

// SetPaymentStatus overrides the payment status. Used for administrative
// FAILED/REFUNDED marking; normal reconciliation goes through ReconcilePayments.
func (b *Bill) SetPaymentStatus(status PaymentStatus) error {
	if err := b.ensureEditable(); err != nil {
		return err
	}
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATUS", "Invalid payment status")
	}
	b.PaymentStatus = status
	b.touch()
	return nil
}

// SetDeliveryDate sets or clears the promised delivery date
func (b *Bill) SetDeliveryDate(date *time.Time) error {
	if err := b.ensureEditable(); err != nil {
		return err
	}
	b.DeliveryDate = date
	b.touch()
	return nil
}

// SetNotes replaces the notes. Allowed in every state.
func (b *Bill) SetNotes(notes string) {
	b.Notes = notes
	b.touch()
}

// TransitionTo moves the bill to a new status. Cancellation must go through
// Cancel so the reason is recorded.
func (b *Bill) TransitionTo(target BillStatus) error {
	if target == BillStatusCancelled {
		return shared.NewDomainError("USE_CANCEL", "Use cancel to cancel a bill")
	}
	if target == b.Status {
		return nil
	}
	if !b.Status.CanTransitionTo(target) {
		return shared.NewKindError(shared.KindConflict, "INVALID_STATE",
			fmt.Sprintf("Cannot change bill status from %s to %s", b.Status, target))
	}
	b.Status = target
	b.touch()
	return nil
}

// Cancel marks the bill cancelled and appends the reason to the notes
func (b *Bill) Cancel(reason string, at time.Time) error {
	if b.Status == BillStatusCancelled {
		return shared.NewKindError(shared.KindConflict, "INVALID_STATE", "Bill is already cancelled")
	}
	if !b.Status.CanTransitionTo(BillStatusCancelled) {
		return shared.NewKindError(shared.KindConflict, "INVALID_STATE",
			fmt.Sprintf("Cannot cancel a bill in status %s", b.Status))
	}

	entry := fmt.Sprintf("[%s] Cancelled", at.UTC().Format(time.RFC3339))
	if r := strings.TrimSpace(reason); r != "" {
		entry += ": " + r
	}
	b.appendNote(entry)
	b.Status = BillStatusCancelled
	b.touch()

	b.AddDomainEvent(NewBillCancelledEvent(b, reason))
	return nil
}

// ReconcilePayments derives the payment status from the total paid so far
func (b *Bill) ReconcilePayments(totalPaid decimal.Decimal) PaymentStatus {
	b.PaymentStatus = DerivePaymentStatus(totalPaid, b.FinalAmount)
	b.touch()
	return b.PaymentStatus
}

// CatalogItems returns the lines that reference a product
func (b *Bill) CatalogItems() []BillItem {
	out := make([]BillItem, 0, len(b.Items))
	for _, item := range b.Items {
		if item.IsCatalogLine() {
			out = append(out, item)
		}
	}
	return out
}

// ProductIDs returns the distinct products sold on the bill, in line order
func (b *Bill) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, item := range b.Items {
		if item.ProductID == nil {
			continue
		}
		if _, ok := seen[*item.ProductID]; ok {
			continue
		}
		seen[*item.ProductID] = struct{}{}
		ids = append(ids, *item.ProductID)
	}
	return ids
}

// IsCancelled returns true if the bill is cancelled
func (b *Bill) IsCancelled() bool {
	return b.Status == BillStatusCancelled
}

// DerivePaymentStatus maps the amount paid against the amount due
func DerivePaymentStatus(totalPaid, finalAmount decimal.Decimal) PaymentStatus {
	switch {
	case totalPaid.GreaterThanOrEqual(finalAmount):
		return PaymentStatusCompleted
	case totalPaid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusPending
	}
}

func (b *Bill) ensureEditable() error {
	if b.Status == BillStatusCancelled {
		return shared.NewKindError(shared.KindConflict, "INVALID_STATE", "Cancelled bills cannot be modified")
	}
	return nil
}

func (b *Bill) setItems(items []BillItem) error {
	if len(items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Bill must contain at least one item")
	}
	b.Items = make([]BillItem, len(items))
	for i := range items {
		item := items[i]
		item.BillID = b.ID
		item.LineNo = i + 1
		b.Items[i] = item
	}
	return nil
}

func (b *Bill) setAdjustments(discountAmount, taxAmount decimal.Decimal) error {
	if discountAmount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount amount cannot be negative")
	}
	if taxAmount.IsNegative() {
		return shared.NewDomainError("INVALID_TAX", "Tax amount cannot be negative")
	}
	if err := shared.CheckScale("INVALID_DISCOUNT", "Discount amount", discountAmount); err != nil {
		return err
	}
	if err := shared.CheckScale("INVALID_TAX", "Tax amount", taxAmount); err != nil {
		return err
	}
	b.DiscountAmount = discountAmount
	b.TaxAmount = taxAmount
	return b.recalculateTotals()
}

func (b *Bill) recalculateTotals() error {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.TotalPrice)
	}
	final := total.Sub(b.DiscountAmount).Add(b.TaxAmount)
	if final.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount exceeds bill total")
	}
	b.TotalAmount = total
	b.FinalAmount = final
	return nil
}

func (b *Bill) appendNote(entry string) {
	if b.Notes == "" {
		b.Notes = entry
		return
	}
	b.Notes = b.Notes + "\n" + entry
}

func (b *Bill) touch() {
	b.Touch()
}
