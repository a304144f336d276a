package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/domain/catalog"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/posledger/backend/internal/domain/partner"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CancelReferencePrefix marks ledger entries that reverse a cancelled sale
const CancelReferencePrefix = "CANCEL-"

// BillServiceConfig tunes the bill service
type BillServiceConfig struct {
	// CreateAttempts bounds how often a create is retried after a bill
	// number collision. Default: 3
	CreateAttempts int
	Idempotency    shared.IdempotencyConfig
}

// BillService creates, edits and cancels bills. It is the only writer of
// sale-driven ledger entries.
type BillService struct {
	scope            TransactionScope
	bills            billing.BillRepository
	payments         billing.PaymentRepository
	products         catalog.ProductRepository
	customers        partner.CustomerRepository
	allocator        *SequenceAllocator
	idempotencyStore shared.IdempotencyStore
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
	config           BillServiceConfig
	now              func() time.Time
}

// NewBillService creates a new BillService. The read repositories are used
// outside transactions; writes always go through scope.
func NewBillService(
	scope TransactionScope,
	bills billing.BillRepository,
	payments billing.PaymentRepository,
	products catalog.ProductRepository,
	customers partner.CustomerRepository,
	allocator *SequenceAllocator,
	logger *zap.Logger,
	cfg BillServiceConfig,
) *BillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CreateAttempts <= 0 {
		cfg.CreateAttempts = 3
	}
	if cfg.Idempotency.TTL <= 0 {
		cfg.Idempotency = shared.DefaultIdempotencyConfig()
	}
	return &BillService{
		scope:     scope,
		bills:     bills,
		payments:  payments,
		products:  products,
		customers: customers,
		allocator: allocator,
		logger:    logger,
		config:    cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetEventPublisher sets the publisher for bill events
func (s *BillService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables Idempotency-Key handling on create
func (s *BillService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotencyStore = store
}

// SetClock overrides the time source
func (s *BillService) SetClock(now func() time.Time) {
	s.now = now
}

// Create turns a cart into a persisted bill. Number allocation, the bill
// header, its lines and one OUT ledger entry per catalog line are written in
// a single transaction.
func (s *BillService) Create(ctx context.Context, tenantID, actorID uuid.UUID, req CreateBillRequest) (_ *BillResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "create",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrItemCount, len(req.Items),
	)
	defer telemetry.EndSpan(span, &err)

	method, err := billing.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	items, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}
	discount := decimalOrZero(req.DiscountAmount)
	tax := decimalOrZero(req.TaxAmount)

	// Build once without a number so totals are validated before any write
	if _, err := billing.NewBill(tenantID, actorID, "PENDING", items, discount, tax, method); err != nil {
		return nil, err
	}

	if key := req.IdempotencyKey; key != "" && s.idempotencyStore != nil && s.config.Idempotency.Enabled {
		return s.createIdempotent(ctx, tenantID, actorID, key, req, items, method)
	}
	return s.create(ctx, tenantID, actorID, req, items, method)
}

func (s *BillService) createIdempotent(
	ctx context.Context,
	tenantID, actorID uuid.UUID,
	key string,
	req CreateBillRequest,
	items []billing.BillItem,
	method billing.PaymentMethod,
) (*BillResponse, error) {
	storeKey := fmt.Sprintf("bill:create:%s:%s", tenantID, key)
	existing, claimed, err := s.idempotencyStore.Claim(ctx, storeKey, s.config.Idempotency.TTL)
	if err != nil {
		return nil, shared.WrapInternal(err, "failed to check idempotency key")
	}
	if !claimed {
		if existing == "" {
			return nil, shared.NewConflictError("REQUEST_IN_PROGRESS", "A request with this idempotency key is still being processed")
		}
		billID, err := uuid.Parse(existing)
		if err != nil {
			return nil, shared.WrapInternal(err, "corrupt idempotency record")
		}
		s.logger.Info("Replaying bill create for idempotency key",
			zap.String("tenant_id", tenantID.String()),
			zap.String("bill_id", existing),
		)
		bill, err := s.bills.FindByIDForTenant(ctx, tenantID, billID)
		if err != nil {
			return nil, notFoundAs(err, "Bill")
		}
		resp := ToBillResponse(bill)
		return &resp, nil
	}

	resp, err := s.create(ctx, tenantID, actorID, req, items, method)
	if err != nil {
		if relErr := s.idempotencyStore.Release(ctx, storeKey); relErr != nil {
			s.logger.Warn("Failed to release idempotency key", zap.String("key", storeKey), zap.Error(relErr))
		}
		return nil, err
	}
	if err := s.idempotencyStore.Complete(ctx, storeKey, resp.ID.String(), s.config.Idempotency.TTL); err != nil {
		s.logger.Warn("Failed to record idempotency result", zap.String("key", storeKey), zap.Error(err))
	}
	return resp, nil
}

func (s *BillService) create(
	ctx context.Context,
	tenantID, actorID uuid.UUID,
	req CreateBillRequest,
	items []billing.BillItem,
	method billing.PaymentMethod,
) (*BillResponse, error) {
	prefix, err := s.allocator.Prefix(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var bill *billing.Bill
	for attempt := 1; ; attempt++ {
		bill, err = s.createOnce(ctx, tenantID, actorID, prefix, req, items, method)
		if err == nil {
			break
		}
		if !isBillNumberConflict(err) || attempt >= s.config.CreateAttempts {
			s.logger.Warn("Bill creation failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return nil, err
		}
		s.logger.Info("Bill number collision, retrying",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("attempt", attempt),
		)
		// The failed transaction rolled its increment back; resync in a
		// transaction of its own so the next attempt starts past the taken
		// numbers.
		if err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			return s.allocator.Resync(ctx, repos.SequenceRepo(), tenantID, prefix, s.now())
		}); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Bill created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("bill_id", bill.ID.String()),
		zap.String("bill_number", bill.BillNumber),
		zap.String("final_amount", bill.FinalAmount.String()),
	)
	bill.AddDomainEvent(billing.NewBillCreatedEvent(bill))
	s.publish(ctx, bill)

	resp := ToBillResponse(bill)
	return &resp, nil
}

func (s *BillService) createOnce(
	ctx context.Context,
	tenantID, actorID uuid.UUID,
	prefix string,
	req CreateBillRequest,
	items []billing.BillItem,
	method billing.PaymentMethod,
) (*billing.Bill, error) {
	var bill *billing.Bill
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if req.CustomerID != nil && *req.CustomerID != uuid.Nil {
			if _, err := repos.CustomerRepo().FindByIDForTenant(ctx, tenantID, *req.CustomerID); err != nil {
				return notFoundAs(err, "Customer")
			}
		}
		if err := ensureProductsSellable(ctx, repos.ProductRepo(), tenantID, items); err != nil {
			return err
		}

		number, err := s.allocator.Next(ctx, repos.SequenceRepo(), tenantID, prefix, s.now())
		if err != nil {
			return err
		}

		bill, err = billing.NewBill(tenantID, actorID, number, items,
			decimalOrZero(req.DiscountAmount), decimalOrZero(req.TaxAmount), method)
		if err != nil {
			return err
		}
		if err := bill.SetCustomer(req.CustomerID); err != nil {
			return err
		}
		bill.Notes = req.Notes
		bill.DeliveryDate = req.DeliveryDate

		if err := repos.BillRepo().Create(ctx, bill); err != nil {
			return shared.WrapInternal(err, "failed to save bill")
		}

		entries, err := ledgerEntries(bill, inventory.TransactionTypeOut, bill.BillNumber, "Sale", actorID)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			if err := repos.LedgerRepo().CreateBatch(ctx, entries); err != nil {
				return shared.WrapInternal(err, "failed to record stock movement")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// Update applies a partial patch. Line edits recompute totals but never touch
// the ledger; a change of totals re-derives the payment status from the
// payments already recorded. Setting status to CANCELLED behaves like Cancel.
func (s *BillService) Update(ctx context.Context, tenantID, actorID, billID uuid.UUID, req UpdateBillRequest) (*BillResponse, error) {
	var target *billing.BillStatus
	if req.Status != nil {
		st, err := billing.ParseBillStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		target = &st
		if st == billing.BillStatusCancelled && req.Items != nil {
			return nil, shared.NewDomainError("INVALID_UPDATE", "Items cannot be replaced while cancelling a bill")
		}
	}

	var bill *billing.Bill
	err := s.applyUpdate(ctx, tenantID, billID, req, func(repos TransactionalRepositories, b *billing.Bill) error {
		bill = b
		switch {
		case target == nil:
			return nil
		case *target == billing.BillStatusCancelled:
			return s.cancelInTx(ctx, repos, b, req.CancelReason, actorID)
		default:
			return b.TransitionTo(*target)
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bill updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("bill_id", billID.String()),
		zap.String("status", bill.Status.String()),
	)
	s.publish(ctx, bill)

	resp := ToBillResponse(bill)
	return &resp, nil
}

func (s *BillService) applyUpdate(
	ctx context.Context,
	tenantID, billID uuid.UUID,
	req UpdateBillRequest,
	finish func(repos TransactionalRepositories, b *billing.Bill) error,
) error {
	var items []billing.BillItem
	if req.Items != nil {
		var err error
		if items, err = buildItems(req.Items); err != nil {
			return err
		}
	}

	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		bill, err := repos.BillRepo().FindByIDForUpdate(ctx, tenantID, billID)
		if err != nil {
			return notFoundAs(err, "Bill")
		}

		if req.Notes != nil {
			bill.SetNotes(*req.Notes)
		}
		if req.ClearCustomer {
			if err := bill.SetCustomer(nil); err != nil {
				return err
			}
		} else if req.CustomerID != nil {
			if _, err := repos.CustomerRepo().FindByIDForTenant(ctx, tenantID, *req.CustomerID); err != nil {
				return notFoundAs(err, "Customer")
			}
			if err := bill.SetCustomer(req.CustomerID); err != nil {
				return err
			}
		}
		itemsChanged := false
		if items != nil {
			if err := ensureProductsSellable(ctx, repos.ProductRepo(), tenantID, items); err != nil {
				return err
			}
			if err := bill.ReplaceItems(items); err != nil {
				return err
			}
			itemsChanged = true
		}
		totalsChanged := itemsChanged
		if req.DiscountAmount != nil || req.TaxAmount != nil {
			totalsChanged = true
			discount := bill.DiscountAmount
			tax := bill.TaxAmount
			if req.DiscountAmount != nil {
				discount = *req.DiscountAmount
			}
			if req.TaxAmount != nil {
				tax = *req.TaxAmount
			}
			if err := bill.SetAdjustments(discount, tax); err != nil {
				return err
			}
		}
		if req.PaymentMethod != nil {
			method, err := billing.ParsePaymentMethod(*req.PaymentMethod)
			if err != nil {
				return err
			}
			if err := bill.SetPaymentMethod(method); err != nil {
				return err
			}
		}
		if req.PaymentStatus != nil {
			status, err := billing.ParsePaymentStatus(*req.PaymentStatus)
			if err != nil {
				return err
			}
			if err := bill.SetPaymentStatus(status); err != nil {
				return err
			}
		}
		if req.DeliveryDate != nil {
			if err := bill.SetDeliveryDate(req.DeliveryDate); err != nil {
				return err
			}
		}
		if totalsChanged && req.PaymentStatus == nil && bill.PaymentStatus.IsDerived() {
			totalPaid, err := repos.PaymentRepo().SumByBill(ctx, tenantID, billID)
			if err != nil {
				return shared.WrapInternal(err, "failed to total payments")
			}
			bill.ReconcilePayments(totalPaid)
		}
		if finish != nil {
			if err := finish(repos, bill); err != nil {
				return err
			}
		}

		if err := repos.BillRepo().Update(ctx, bill); err != nil {
			return shared.WrapInternal(err, "failed to update bill")
		}
		if itemsChanged {
			if err := repos.BillRepo().ReplaceItems(ctx, bill); err != nil {
				return shared.WrapInternal(err, "failed to replace bill items")
			}
		}
		return nil
	})
}

// Cancel marks a bill cancelled, records the reason in its notes and puts
// the sold stock back with compensating IN entries.
func (s *BillService) Cancel(ctx context.Context, tenantID, actorID, billID uuid.UUID, req CancelBillRequest) (_ *BillResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bill", "cancel",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrBillID, billID.String(),
	)
	defer telemetry.EndSpan(span, &err)

	var bill *billing.Bill
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		bill, err = repos.BillRepo().FindByIDForUpdate(ctx, tenantID, billID)
		if err != nil {
			return notFoundAs(err, "Bill")
		}
		if err := s.cancelInTx(ctx, repos, bill, req.Reason, actorID); err != nil {
			return err
		}
		if err := repos.BillRepo().Update(ctx, bill); err != nil {
			return shared.WrapInternal(err, "failed to cancel bill")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bill cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("bill_id", billID.String()),
		zap.String("bill_number", bill.BillNumber),
	)
	s.publish(ctx, bill)

	resp := ToBillResponse(bill)
	return &resp, nil
}

// cancelInTx flips the bill to CANCELLED and appends the reversing ledger
// entries. The caller persists the bill header.
func (s *BillService) cancelInTx(
	ctx context.Context,
	repos TransactionalRepositories,
	bill *billing.Bill,
	reason string,
	actorID uuid.UUID,
) error {
	if err := bill.Cancel(reason, s.now()); err != nil {
		return err
	}
	entries, err := ledgerEntries(bill, inventory.TransactionTypeIn,
		CancelReferencePrefix+bill.BillNumber, "Bill cancelled", actorID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	if err := repos.LedgerRepo().CreateBatch(ctx, entries); err != nil {
		return shared.WrapInternal(err, "failed to reverse stock movement")
	}
	return nil
}

// GetWithDetails returns the bill with its lines, payments and the customer
// and product projections needed to render an invoice.
func (s *BillService) GetWithDetails(ctx context.Context, tenantID, billID uuid.UUID) (*BillDetailResponse, error) {
	bill, err := s.bills.FindByIDForTenant(ctx, tenantID, billID)
	if err != nil {
		return nil, notFoundAs(err, "Bill")
	}
	payments, err := s.payments.FindByBill(ctx, tenantID, billID)
	if err != nil {
		return nil, shared.WrapInternal(err, "failed to load payments")
	}

	totalPaid := billing.TotalPaid(payments)
	detail := &BillDetailResponse{
		BillResponse: ToBillResponse(bill),
		Payments:     ToPaymentResponses(payments),
		TotalPaid:    totalPaid,
		BalanceDue:   bill.FinalAmount.Sub(totalPaid),
	}
	if detail.BalanceDue.IsNegative() {
		detail.BalanceDue = decimal.Zero
	}

	if bill.CustomerID != nil {
		customer, err := s.customers.FindByIDForTenant(ctx, tenantID, *bill.CustomerID)
		switch {
		case err == nil:
			detail.Customer = toCustomerProjection(customer)
		case !errors.Is(err, shared.ErrNotFound):
			return nil, shared.WrapInternal(err, "failed to load customer")
		}
	}

	if ids := productIDs(bill.Items); len(ids) > 0 {
		products, err := s.products.FindByIDs(ctx, tenantID, ids)
		if err != nil {
			return nil, shared.WrapInternal(err, "failed to load products")
		}
		detail.Products = make(map[uuid.UUID]ProductProjection, len(products))
		for i := range products {
			detail.Products[products[i].ID] = toProductProjection(&products[i])
		}
	}

	return detail, nil
}

// List returns a page of bill headers
func (s *BillService) List(ctx context.Context, tenantID uuid.UUID, filter BillListFilter) ([]BillResponse, int64, error) {
	domainFilter := billing.BillFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		CustomerID: filter.CustomerID,
		From:       filter.From,
		To:         filter.To,
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
	}
	if filter.Status != "" {
		st, err := billing.ParseBillStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Status = st
	}
	if filter.PaymentStatus != "" {
		st, err := billing.ParsePaymentStatus(filter.PaymentStatus)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.PaymentStatus = st
	}

	bills, total, err := s.bills.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, shared.WrapInternal(err, "failed to list bills")
	}
	out := make([]BillResponse, len(bills))
	for i := range bills {
		out[i] = ToBillResponse(&bills[i])
	}
	return out, total, nil
}

// Stats summarises bills created in [from, to)
func (s *BillService) Stats(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*BillStatsResponse, error) {
	if !to.After(from) {
		return nil, shared.NewDomainError("INVALID_RANGE", "End of range must be after start")
	}
	stats, err := s.bills.Stats(ctx, tenantID, from, to)
	if err != nil {
		return nil, shared.WrapInternal(err, "failed to compute bill stats")
	}
	return &BillStatsResponse{
		From:           from,
		To:             to,
		BillCount:      stats.BillCount,
		CancelledCount: stats.CancelledCount,
		GrossSales:     stats.GrossSales,
		Collected:      stats.Collected,
		Outstanding:    stats.Outstanding(),
	}, nil
}

// DailySales returns per-day sales in [from, to)
func (s *BillService) DailySales(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]DailySalesResponse, error) {
	if !to.After(from) {
		return nil, shared.NewDomainError("INVALID_RANGE", "End of range must be after start")
	}
	rows, err := s.bills.DailySales(ctx, tenantID, from, to)
	if err != nil {
		return nil, shared.WrapInternal(err, "failed to compute daily sales")
	}
	out := make([]DailySalesResponse, len(rows))
	for i, r := range rows {
		out[i] = DailySalesResponse{Day: r.Day, BillCount: r.BillCount, TotalAmount: r.TotalAmount}
	}
	return out, nil
}

func (s *BillService) publish(ctx context.Context, bill *billing.Bill) {
	events := bill.GetDomainEvents()
	bill.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish bill events",
			zap.String("bill_id", bill.ID.String()),
			zap.Error(err),
		)
	}
}
