// Package billing holds the bill aggregate: a sale with its priced lines,
// the payments recorded against it and the reconciliation rules that derive
// its payment status.
//
// Money and quantities are decimal.Decimal throughout. A bill always keeps
//
//	TotalAmount == Σ item.TotalPrice
//	FinalAmount == TotalAmount - DiscountAmount + TaxAmount
//
// and becomes read-only (apart from notes) once cancelled.
package billing
