package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService records payments and reconciles bill payment status.
// Reconciliation of one bill is serialized by a row lock on the bill, so
// concurrent payments always converge on the status of the full sum.
type PaymentService struct {
	scope          TransactionScope
	payments       billing.PaymentRepository
	bills          billing.BillRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	scope TransactionScope,
	bills billing.BillRepository,
	payments billing.PaymentRepository,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		scope:    scope,
		bills:    bills,
		payments: payments,
		logger:   logger,
	}
}

// SetEventPublisher sets the publisher for payment events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AddPayment appends a payment and recomputes the bill's payment status in
// one transaction
func (s *PaymentService) AddPayment(
	ctx context.Context,
	tenantID, actorID, billID uuid.UUID,
	req AddPaymentRequest,
) (_ *PaymentResultResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "add",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrBillID, billID.String(),
		telemetry.SpanAttrAmount, req.Amount,
	)
	defer telemetry.EndSpan(span, &err)

	method, err := billing.ParsePaymentMethod(req.Method)
	if err != nil {
		return nil, err
	}
	payment, err := billing.NewPayment(tenantID, billID, req.Amount, method)
	if err != nil {
		return nil, err
	}
	payment.WithReference(req.Reference).WithNotes(req.Notes).WithCreatedBy(actorID)

	var (
		bill      *billing.Bill
		totalPaid decimal.Decimal
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		bill, err = repos.BillRepo().FindByIDForUpdate(ctx, tenantID, billID)
		if err != nil {
			return notFoundAs(err, "Bill")
		}
		if bill.IsCancelled() {
			return shared.NewKindError(shared.KindConflict, "INVALID_STATE", "Cannot record a payment on a cancelled bill")
		}

		if err := repos.PaymentRepo().Create(ctx, payment); err != nil {
			return shared.WrapInternal(err, "failed to save payment")
		}
		totalPaid, err = repos.PaymentRepo().SumByBill(ctx, tenantID, billID)
		if err != nil {
			return shared.WrapInternal(err, "failed to total payments")
		}

		bill.ReconcilePayments(totalPaid)
		if err := repos.BillRepo().Update(ctx, bill); err != nil {
			return shared.WrapInternal(err, "failed to update payment status")
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Payment not recorded",
			zap.String("tenant_id", tenantID.String()),
			zap.String("bill_id", billID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Payment recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("bill_id", billID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("total_paid", totalPaid.String()),
		zap.String("payment_status", bill.PaymentStatus.String()),
	)

	if s.eventPublisher != nil {
		event := billing.NewPaymentRecordedEvent(bill, payment, totalPaid)
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish payment event", zap.Error(err))
		}
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentStatus, bill.PaymentStatus.String())

	balance := bill.FinalAmount.Sub(totalPaid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	return &PaymentResultResponse{
		Payment:       ToPaymentResponse(payment),
		TotalPaid:     totalPaid,
		BalanceDue:    balance,
		PaymentStatus: bill.PaymentStatus.String(),
	}, nil
}

// GetBillPayments returns the payments of a bill, newest first
func (s *PaymentService) GetBillPayments(ctx context.Context, tenantID, billID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.bills.FindByIDForTenant(ctx, tenantID, billID); err != nil {
		return nil, notFoundAs(err, "Bill")
	}
	payments, err := s.payments.FindByBill(ctx, tenantID, billID)
	if err != nil {
		return nil, shared.WrapInternal(err, "failed to load payments")
	}
	return ToPaymentResponses(payments), nil
}
