package inventory

import (
	"github.com/shopspring/decimal"
)

// FoldStock derives the current balance from ledger entries. Addition is
// commutative, so the result does not depend on the order of txs.
func FoldStock(txs []InventoryTransaction) decimal.Decimal {
	stock := decimal.Zero
	for i := range txs {
		stock = stock.Add(txs[i].SignedQuantity())
	}
	return stock
}

// IsLowStock reports whether a derived balance is at or below the configured
// minimum. A zero threshold disables the check.
func IsLowStock(stock, minStock decimal.Decimal) bool {
	if !minStock.IsPositive() {
		return false
	}
	return stock.LessThanOrEqual(minStock)
}
