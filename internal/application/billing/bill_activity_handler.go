package billing

import (
	"context"
	"fmt"

	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BillActivityHandler writes an audit log line for every committed bill
// event
type BillActivityHandler struct {
	logger *zap.Logger
}

// NewBillActivityHandler creates a new BillActivityHandler
func NewBillActivityHandler(logger *zap.Logger) *BillActivityHandler {
	return &BillActivityHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *BillActivityHandler) EventTypes() []string {
	return []string{
		billing.EventTypeBillCreated,
		billing.EventTypeBillCancelled,
		billing.EventTypePaymentRecorded,
	}
}

// Handle logs the event with its business fields
func (h *BillActivityHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	base := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("bill_id", event.AggregateID().String()),
	}

	switch e := event.(type) {
	case *billing.BillCreatedEvent:
		h.logger.Info("bill.created", append(base,
			zap.String("bill_number", e.BillNumber),
			zap.String("final_amount", e.FinalAmount.String()),
			zap.Int("item_count", e.ItemCount),
			zap.String("payment_method", e.PaymentMethod.String()),
		)...)
	case *billing.BillCancelledEvent:
		h.logger.Info("bill.cancelled", append(base,
			zap.String("bill_number", e.BillNumber),
			zap.String("final_amount", e.FinalAmount.String()),
			zap.String("reason", e.Reason),
		)...)
	case *billing.PaymentRecordedEvent:
		h.logger.Info("bill.payment_recorded", append(base,
			zap.String("bill_number", e.BillNumber),
			zap.String("payment_id", e.PaymentID.String()),
			zap.String("amount", e.Amount.String()),
			zap.String("total_paid", e.TotalPaid.String()),
			zap.String("payment_status", e.PaymentStatus.String()),
		)...)
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}
