package telemetry

import (
	"context"
	"errors"

	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics constructor gets a nil meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// BillingMetrics counts committed bills and payments. It is subscribed to
// the event bus, so only committed work is counted.
type BillingMetrics struct {
	billsCreated   *Counter
	billsCancelled *Counter
	billedAmount   *FloatCounter
	payments       *Counter
	paymentAmount  *FloatCounter
}

// NewBillingMetrics registers the billing instruments on meter
func NewBillingMetrics(meter metric.Meter) (*BillingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &BillingMetrics{}
	var err error
	if m.billsCreated, err = NewCounter(meter, "pos_bills_created_total", "Bills created", "{bills}"); err != nil {
		return nil, err
	}
	if m.billsCancelled, err = NewCounter(meter, "pos_bills_cancelled_total", "Bills cancelled", "{bills}"); err != nil {
		return nil, err
	}
	if m.billedAmount, err = NewFloatCounter(meter, "pos_billed_amount_total", "Sum of final amounts of created bills", "{currency}"); err != nil {
		return nil, err
	}
	if m.payments, err = NewCounter(meter, "pos_payments_total", "Payments recorded", "{payments}"); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = NewFloatCounter(meter, "pos_payment_amount_total", "Sum of recorded payment amounts", "{currency}"); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes returns the event types this handler is interested in
func (m *BillingMetrics) EventTypes() []string {
	return []string{
		billing.EventTypeBillCreated,
		billing.EventTypeBillCancelled,
		billing.EventTypePaymentRecorded,
	}
}

// Handle updates the counters for event
func (m *BillingMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := AttrTenantID.String(event.TenantID().String())

	switch e := event.(type) {
	case *billing.BillCreatedEvent:
		method := AttrPaymentMethod.String(e.PaymentMethod.String())
		m.billsCreated.Inc(ctx, tenant, method)
		m.billedAmount.Add(ctx, e.FinalAmount.InexactFloat64(), tenant, method)
	case *billing.BillCancelledEvent:
		m.billsCancelled.Inc(ctx, tenant)
	case *billing.PaymentRecordedEvent:
		attrs := []attribute.KeyValue{
			tenant,
			AttrPaymentMethod.String(e.Method.String()),
			AttrPaymentStatus.String(e.PaymentStatus.String()),
		}
		m.payments.Inc(ctx, attrs...)
		m.paymentAmount.Add(ctx, e.Amount.InexactFloat64(), attrs...)
	}
	return nil
}

var _ shared.EventHandler = (*BillingMetrics)(nil)
