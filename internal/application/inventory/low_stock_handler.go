package inventory

import (
	"context"
	"fmt"

	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/domain/catalog"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/posledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockAlert describes a product that dropped to or below its minimum
type LowStockAlert struct {
	TenantID     string `json:"tenant_id"`
	ProductID    string `json:"product_id"`
	ProductCode  string `json:"product_code"`
	CurrentStock string `json:"current_stock"`
	MinStock     string `json:"min_stock"`
	BillNumber   string `json:"bill_number"`
}

// LowStockNotifier delivers low-stock alerts
type LowStockNotifier interface {
	Notify(ctx context.Context, alert LowStockAlert) error
}

// LowStockHandler re-derives stock for the products on a new bill and raises
// an alert for each one at or below its minimum
type LowStockHandler struct {
	ledger   inventory.TransactionRepository
	products catalog.ProductRepository
	notifier LowStockNotifier
	logger   *zap.Logger
}

// NewLowStockHandler creates a new LowStockHandler
func NewLowStockHandler(
	ledger inventory.TransactionRepository,
	products catalog.ProductRepository,
	logger *zap.Logger,
) *LowStockHandler {
	return &LowStockHandler{
		ledger:   ledger,
		products: products,
		logger:   logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockHandler) WithNotifier(notifier LowStockNotifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{billing.EventTypeBillCreated}
}

// Handle processes a BillCreatedEvent
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*billing.BillCreatedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", billing.EventTypeBillCreated),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			billing.EventTypeBillCreated, event.EventType())
	}
	if len(created.ProductIDs) == 0 {
		return nil
	}

	products, err := h.products.FindByIDs(ctx, created.TenantID(), created.ProductIDs)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	for i := range products {
		p := &products[i]
		if !p.MinStock.IsPositive() {
			continue
		}
		txs, err := h.ledger.FindByProduct(ctx, p.TenantID, p.ID)
		if err != nil {
			return fmt.Errorf("load ledger for product %s: %w", p.ID, err)
		}
		stock := inventory.FoldStock(txs)
		if !inventory.IsLowStock(stock, p.MinStock) {
			continue
		}

		alert := LowStockAlert{
			TenantID:     p.TenantID.String(),
			ProductID:    p.ID.String(),
			ProductCode:  p.Code,
			CurrentStock: stock.String(),
			MinStock:     p.MinStock.String(),
			BillNumber:   created.BillNumber,
		}
		h.logger.Warn("Stock at or below minimum",
			zap.String("tenant_id", alert.TenantID),
			zap.String("product_id", alert.ProductID),
			zap.String("product_code", alert.ProductCode),
			zap.String("current_stock", alert.CurrentStock),
			zap.String("min_stock", alert.MinStock),
			zap.String("bill_number", alert.BillNumber),
		)
		if h.notifier != nil {
			if err := h.notifier.Notify(ctx, alert); err != nil {
				h.logger.Error("Failed to send low stock alert", zap.String("product_id", alert.ProductID), zap.Error(err))
			}
		}
	}
	return nil
}
