package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/catalog"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// statsWindow is the look-back for the recent activity counter
const statsWindow = 7 * 24 * time.Hour

// LedgerService records manual stock movements and derives stock levels from
// the append-only ledger. Stock is never stored; it is always folded from
// entries.
type LedgerService struct {
	ledger   inventory.TransactionRepository
	products catalog.ProductRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	ledger inventory.TransactionRepository,
	products catalog.ProductRepository,
	logger *zap.Logger,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		ledger:   ledger,
		products: products,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source
func (s *LedgerService) SetClock(now func() time.Time) {
	s.now = now
}

// AddInventory appends a manual ledger entry (receipt, write-off, supplier
// return)
func (s *LedgerService) AddInventory(
	ctx context.Context,
	tenantID, actorID uuid.UUID,
	req AddInventoryRequest,
) (_ *TransactionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "add",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrProductID, req.ProductID.String(),
		telemetry.SpanAttrTxnType, req.TransactionType,
		telemetry.SpanAttrQuantity, req.Quantity,
	)
	defer telemetry.EndSpan(span, &err)

	txType, err := inventory.ParseTransactionType(req.TransactionType)
	if err != nil {
		return nil, err
	}
	entry, err := inventory.NewInventoryTransaction(tenantID, req.ProductID, txType, req.Quantity)
	if err != nil {
		return nil, err
	}
	entry.WithReference(req.Reference).WithNotes(req.Notes).WithCreatedBy(actorID)

	if _, err := s.products.FindByIDForTenant(ctx, tenantID, req.ProductID); err != nil {
		return nil, productLookupError(err)
	}

	if err := s.ledger.Create(ctx, entry); err != nil {
		return nil, shared.WrapInternal(err, "failed to record inventory transaction")
	}

	s.logger.Info("Inventory transaction recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("product_id", req.ProductID.String()),
		zap.String("type", txType.String()),
		zap.String("quantity", entry.Quantity.String()),
		zap.String("reference", entry.Reference),
	)

	resp := ToTransactionResponse(entry)
	return &resp, nil
}

// GetProductStock folds the product's ledger into its current stock and
// returns the entries newest first
func (s *LedgerService) GetProductStock(ctx context.Context, tenantID, productID uuid.UUID) (*ProductStockResponse, error) {
	product, err := s.products.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, productLookupError(err)
	}
	txs, err := s.ledger.FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, shared.WrapInternal(err, "failed to load inventory transactions")
	}

	stock := inventory.FoldStock(txs)
	return &ProductStockResponse{
		ProductID:    product.ID,
		ProductCode:  product.Code,
		ProductName:  product.Name,
		Unit:         product.Unit,
		CurrentStock: stock,
		MinStock:     product.MinStock,
		IsLowStock:   inventory.IsLowStock(stock, product.MinStock),
		Transactions: ToTransactionResponses(txs),
	}, nil
}

// GetInventoryStats reports product counts, low-stock counts and recent
// ledger activity
func (s *LedgerService) GetInventoryStats(ctx context.Context, tenantID uuid.UUID) (*InventoryStatsResponse, error) {
	products, err := s.products.FindActive(ctx, tenantID)
	if err != nil {
		return nil, shared.WrapInternal(err, "failed to load products")
	}
	stock, err := s.ledger.StockByProduct(ctx, tenantID)
	if err != nil {
		return nil, shared.WrapInternal(err, "failed to fold stock")
	}
	recent, err := s.ledger.CountSince(ctx, tenantID, s.now().Add(-statsWindow))
	if err != nil {
		return nil, shared.WrapInternal(err, "failed to count inventory transactions")
	}

	stats := &InventoryStatsResponse{
		TotalActiveProducts:   int64(len(products)),
		TransactionsLast7Days: recent,
	}
	for i := range products {
		p := &products[i]
		if !p.MinStock.IsPositive() {
			continue
		}
		stats.ProductsWithThreshold++
		// products without entries have a stock of zero
		if inventory.IsLowStock(stock[p.ID], p.MinStock) {
			stats.LowStockProducts++
		}
	}
	return stats, nil
}

func productLookupError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError("Product")
	}
	return shared.WrapInternal(err, "failed to load product")
}
