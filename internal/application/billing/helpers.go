package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/domain/catalog"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

func buildItems(inputs []BillItemInput) ([]billing.BillItem, error) {
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Bill must contain at least one item")
	}
	items := make([]billing.BillItem, 0, len(inputs))
	for i, in := range inputs {
		item, err := billing.NewBillItem(toDomainItemInput(in))
		if err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) {
				return nil, shared.NewKindError(de.Kind, de.Code, fmt.Sprintf("Item %d: %s", i+1, de.Message))
			}
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// ensureProductsSellable checks every referenced product exists in the
// tenant and is still active
func ensureProductsSellable(ctx context.Context, repo catalog.ProductRepository, tenantID uuid.UUID, items []billing.BillItem) error {
	ids := productIDs(items)
	if len(ids) == 0 {
		return nil
	}
	products, err := repo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return shared.WrapInternal(err, "failed to load products")
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return shared.NewNotFoundError(fmt.Sprintf("Product %s", id))
		}
		if !p.IsActive() {
			return shared.NewDomainError("PRODUCT_INACTIVE", fmt.Sprintf("Product %s is inactive", p.Code))
		}
	}
	return nil
}

// productIDs returns the distinct product IDs in line order
func productIDs(items []billing.BillItem) []uuid.UUID {
	b := billing.Bill{Items: items}
	return b.ProductIDs()
}

// ledgerEntries builds one entry per catalog line, in line order
func ledgerEntries(
	bill *billing.Bill,
	txType inventory.TransactionType,
	reference, notes string,
	actorID uuid.UUID,
) ([]*inventory.InventoryTransaction, error) {
	var entries []*inventory.InventoryTransaction
	for _, item := range bill.CatalogItems() {
		entry, err := inventory.NewInventoryTransaction(bill.TenantID, *item.ProductID, txType, item.Quantity)
		if err != nil {
			return nil, err
		}
		entry.WithReference(reference).WithNotes(notes).WithCreatedBy(actorID)
		entries = append(entries, entry)
	}
	return entries, nil
}

// notFoundAs turns a repository miss into a NOT_FOUND for resource and any
// other failure into an internal error
func notFoundAs(err error, resource string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError(resource)
	}
	return shared.WrapInternal(err, "failed to load "+resource)
}

func isBillNumberConflict(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de) && de.Code == billing.ErrCodeBillNumberConflict
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
