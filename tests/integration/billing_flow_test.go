package integration

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	appbilling "github.com/posledger/backend/internal/application/billing"
	appcatalog "github.com/posledger/backend/internal/application/catalog"
	appinventory "github.com/posledger/backend/internal/application/inventory"
	appsettings "github.com/posledger/backend/internal/application/settings"
	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/infrastructure/event"
	"github.com/posledger/backend/internal/infrastructure/migration"
	"github.com/posledger/backend/internal/infrastructure/persistence"
	"github.com/posledger/backend/migrations"
	"github.com/posledger/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

type stack struct {
	bills    *appbilling.BillService
	payments *appbilling.PaymentService
	ledger   *appinventory.LedgerService
	products *appcatalog.ProductService
	settings *appsettings.Service
	events   *testutil.RecordingHandler
	tenantID uuid.UUID
	actorID  uuid.UUID
}

func newStack(t *testing.T, db *TestDB) *stack {
	t.Helper()
	scope := persistence.NewGormTransactionScope(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	settingsSvc := appsettings.NewService(persistence.NewGormSettingsRepository(db.DB), appsettings.Defaults{}, zap.NewNop())

	bus := event.NewInMemoryEventBusWithConfig(zap.NewNop(), event.BusConfig{Workers: 2})
	recorder := testutil.NewRecordingHandler()
	bus.Subscribe(recorder)
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	bills := appbilling.NewBillService(
		scope, billRepo, paymentRepo, productRepo, persistence.NewGormCustomerRepository(db.DB),
		appbilling.NewSequenceAllocator(settingsSvc, time.UTC),
		zap.NewNop(),
		appbilling.BillServiceConfig{CreateAttempts: 5},
	)
	bills.SetEventPublisher(bus)
	payments := appbilling.NewPaymentService(scope, billRepo, paymentRepo, zap.NewNop())
	payments.SetEventPublisher(bus)

	return &stack{
		bills:    bills,
		payments: payments,
		ledger:   appinventory.NewLedgerService(persistence.NewGormInventoryTransactionRepository(db.DB), productRepo, zap.NewNop()),
		products: appcatalog.NewProductService(productRepo),
		settings: settingsSvc,
		events:   recorder,
		tenantID: uuid.New(),
		actorID:  uuid.New(),
	}
}

func (s *stack) product(t *testing.T, code string, price, minStock, opening int64) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	p, m := decimal.NewFromInt(price), decimal.NewFromInt(minStock)
	resp, err := s.products.Create(ctx, s.tenantID, appcatalog.CreateProductRequest{
		Code: code, Name: "Product " + code, Unit: "pcs", Price: &p, MinStock: &m,
	})
	require.NoError(t, err)
	if opening > 0 {
		_, err = s.ledger.AddInventory(ctx, s.tenantID, s.actorID, appinventory.AddInventoryRequest{
			ProductID:       resp.ID,
			TransactionType: "IN",
			Quantity:        decimal.NewFromInt(opening),
			Reference:       "OPENING",
		})
		require.NoError(t, err)
	}
	return resp.ID
}

func (s *stack) stock(t *testing.T, productID uuid.UUID) decimal.Decimal {
	t.Helper()
	resp, err := s.ledger.GetProductStock(context.Background(), s.tenantID, productID)
	require.NoError(t, err)
	return resp.CurrentStock
}

func cart(productID uuid.UUID, qty, price int64) appbilling.CreateBillRequest {
	q, p := decimal.NewFromInt(qty), decimal.NewFromInt(price)
	return appbilling.CreateBillRequest{
		PaymentMethod: "CASH",
		Items: []appbilling.BillItemInput{{
			ProductID:  &productID,
			Quantity:   q,
			UnitPrice:  p,
			TotalPrice: q.Mul(p),
		}},
	}
}

func TestMigrations_Applied(t *testing.T) {
	db := NewSharedTestDB(t)

	files, err := migration.ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, files)

	m, err := migration.NewFromURL(db.Config.DSN(), migrations.FS, zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, files[len(files)-1].Version, version)
}

func TestBillingFlow_Postgres(t *testing.T) {
	db := NewSharedTestDB(t)
	s := newStack(t, db)
	ctx := context.Background()

	shirt := s.product(t, "SHIRT", 295, 5, 10)

	bill, err := s.bills.Create(ctx, s.tenantID, s.actorID, cart(shirt, 3, 295))
	require.NoError(t, err)
	assert.Regexp(t, `^CS\d{6}001$`, bill.BillNumber)
	assert.True(t, bill.FinalAmount.Equal(decimal.NewFromInt(885)))
	assert.True(t, s.stock(t, shirt).Equal(decimal.NewFromInt(7)))

	result, err := s.payments.AddPayment(ctx, s.tenantID, s.actorID, bill.ID, appbilling.AddPaymentRequest{
		Amount: decimal.NewFromInt(500), Method: "UPI",
	})
	require.NoError(t, err)
	assert.Equal(t, "PARTIAL", result.PaymentStatus)

	result, err = s.payments.AddPayment(ctx, s.tenantID, s.actorID, bill.ID, appbilling.AddPaymentRequest{
		Amount: decimal.NewFromInt(385), Method: "CASH",
	})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", result.PaymentStatus)
	assert.True(t, result.BalanceDue.IsZero())

	history, err := s.payments.GetBillPayments(ctx, s.tenantID, bill.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "CASH", history[0].Method, "newest first")

	cancelled, err := s.bills.Cancel(ctx, s.tenantID, s.actorID, bill.ID, appbilling.CancelBillRequest{Reason: "returned"})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.True(t, s.stock(t, shirt).Equal(decimal.NewFromInt(10)))

	_, err = s.bills.Cancel(ctx, s.tenantID, s.actorID, bill.ID, appbilling.CancelBillRequest{})
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))

	require.True(t, testutil.WaitForEvents(t, s.events, 4, 5*time.Second))
	var types []string
	for _, e := range s.events.ForAggregate(bill.ID) {
		types = append(types, e.EventType())
	}
	assert.Contains(t, types, billing.EventTypeBillCreated)
	assert.Contains(t, types, billing.EventTypePaymentRecorded)
	assert.Contains(t, types, billing.EventTypeBillCancelled)
}

func TestBillingFlow_ConcurrentNumbering(t *testing.T) {
	db := NewSharedTestDB(t)
	s := newStack(t, db)
	ctx := context.Background()
	shirt := s.product(t, "SHIRT", 100, 0, 100)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]struct{})
		errs    []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bill, err := s.bills.Create(ctx, s.tenantID, s.actorID, cart(shirt, 1, 100))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers[bill.BillNumber] = struct{}{}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, numbers, workers)
	assert.True(t, s.stock(t, shirt).Equal(decimal.NewFromInt(100-workers)))
}

func TestBillingFlow_TenantIsolation(t *testing.T) {
	db := NewSharedTestDB(t)
	a := newStack(t, db)
	b := newStack(t, db)
	ctx := context.Background()

	billA, err := a.bills.Create(ctx, a.tenantID, a.actorID, cart(a.product(t, "SHIRT", 100, 0, 5), 1, 100))
	require.NoError(t, err)
	billB, err := b.bills.Create(ctx, b.tenantID, b.actorID, cart(b.product(t, "SHIRT", 100, 0, 5), 1, 100))
	require.NoError(t, err)

	assert.Equal(t, billA.BillNumber, billB.BillNumber, "sequences are per tenant")

	_, err = b.bills.GetWithDetails(ctx, b.tenantID, billA.ID)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, shared.KindNotFound, de.Kind)
}

func TestSettings_PrefixDrivesNumbering(t *testing.T) {
	db := NewSharedTestDB(t)
	s := newStack(t, db)
	ctx := context.Background()

	prefix := "INV"
	_, err := s.settings.Update(ctx, s.tenantID, appsettings.UpdateSettingsRequest{InvoicePrefix: &prefix})
	require.NoError(t, err)

	bill, err := s.bills.Create(ctx, s.tenantID, s.actorID, cart(s.product(t, "CAP", 50, 0, 2), 1, 50))
	require.NoError(t, err)
	assert.Regexp(t, `^INV\d{6}001$`, bill.BillNumber)
}
