package billing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PriceDriftTolerance is how far a caller-computed line total may stray from
// quantity*unitPrice - discount before the line is rejected.
var PriceDriftTolerance = decimal.NewFromFloat(0.01)

// BillItem is one priced line of a bill. Catalog lines carry a ProductID;
// ad-hoc lines carry a CustomName instead.
type BillItem struct {
	ID             uuid.UUID
	BillID         uuid.UUID
	LineNo         int
	ProductID      *uuid.UUID
	CustomName     string
	Description    string
	Quantity       decimal.Decimal
	Unit           string
	UnitPrice      decimal.Decimal
	TotalPrice     decimal.Decimal
	Discount       decimal.Decimal
	IsTailoring    bool
	TailoringPrice decimal.Decimal
	Measurements   map[string]string
	Notes          string
}

// BillItemInput carries the caller-supplied values for one line
type BillItemInput struct {
	ProductID      *uuid.UUID
	CustomName     string
	Description    string
	Quantity       decimal.Decimal
	Unit           string
	UnitPrice      decimal.Decimal
	TotalPrice     decimal.Decimal
	Discount       decimal.Decimal
	IsTailoring    bool
	TailoringPrice decimal.Decimal
	Measurements   map[string]string
	Notes          string
}

// NewBillItem validates a line and builds the item
func NewBillItem(in BillItemInput) (*BillItem, error) {
	if in.ProductID != nil && *in.ProductID == uuid.Nil {
		in.ProductID = nil
	}
	if in.ProductID == nil && strings.TrimSpace(in.CustomName) == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item needs a product or a custom name")
	}
	if !in.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if in.UnitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if in.Discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if in.TailoringPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Tailoring price cannot be negative")
	}
	if in.TotalPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TOTAL", "Total price cannot be negative")
	}
	if err := checkItemScale(in); err != nil {
		return nil, err
	}
	if !lineTotalMatches(in) {
		return nil, shared.NewDomainError("PRICE_MISMATCH",
			"Total price does not match quantity * unit price - discount")
	}

	unit := in.Unit
	if unit == "" {
		unit = "pcs"
	}

	return &BillItem{
		ID:             uuid.New(),
		ProductID:      in.ProductID,
		CustomName:     strings.TrimSpace(in.CustomName),
		Description:    in.Description,
		Quantity:       in.Quantity,
		Unit:           unit,
		UnitPrice:      in.UnitPrice,
		TotalPrice:     in.TotalPrice,
		Discount:       in.Discount,
		IsTailoring:    in.IsTailoring,
		TailoringPrice: in.TailoringPrice,
		Measurements:   in.Measurements,
		Notes:          in.Notes,
	}, nil
}

func checkItemScale(in BillItemInput) error {
	checks := []struct {
		code, field string
		value       decimal.Decimal
	}{
		{"INVALID_QUANTITY", "Quantity", in.Quantity},
		{"INVALID_PRICE", "Unit price", in.UnitPrice},
		{"INVALID_DISCOUNT", "Discount", in.Discount},
		{"INVALID_PRICE", "Tailoring price", in.TailoringPrice},
		{"INVALID_TOTAL", "Total price", in.TotalPrice},
	}
	for _, c := range checks {
		if err := shared.CheckScale(c.code, c.field, c.value); err != nil {
			return err
		}
	}
	return nil
}

// lineTotalMatches accepts the plain line total, or for tailoring lines the
// total with the stitching charge folded in.
func lineTotalMatches(in BillItemInput) bool {
	expected := in.Quantity.Mul(in.UnitPrice).Sub(in.Discount)
	if in.TotalPrice.Sub(expected).Abs().LessThanOrEqual(PriceDriftTolerance) {
		return true
	}
	if in.IsTailoring && in.TailoringPrice.IsPositive() {
		withTailoring := expected.Add(in.TailoringPrice)
		return in.TotalPrice.Sub(withTailoring).Abs().LessThanOrEqual(PriceDriftTolerance)
	}
	return false
}

// IsCatalogLine returns true if the line references a catalog product
func (i *BillItem) IsCatalogLine() bool {
	return i.ProductID != nil
}

// DisplayName returns the custom name, falling back to the description
func (i *BillItem) DisplayName() string {
	if i.CustomName != "" {
		return i.CustomName
	}
	return i.Description
}
