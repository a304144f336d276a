package billing

import (
	"strings"

	"github.com/posledger/backend/internal/domain/shared"
)

// PaymentMethod is how a bill is (mainly) settled
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "CASH"
	PaymentMethodUPI        PaymentMethod = "UPI"
	PaymentMethodCard       PaymentMethod = "CARD"
	PaymentMethodNetBanking PaymentMethod = "NETBANKING"
	PaymentMethodWallet     PaymentMethod = "WALLET"
	PaymentMethodCheque     PaymentMethod = "CHEQUE"
)

// IsValid returns true if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodUPI, PaymentMethodCard,
		PaymentMethodNetBanking, PaymentMethodWallet, PaymentMethodCheque:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// ParsePaymentMethod parses a case-insensitive payment method token
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be one of CASH, UPI, CARD, NETBANKING, WALLET, CHEQUE")
	}
	return m, nil
}

// PaymentStatus is the reconciliation state of a bill
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPartial   PaymentStatus = "PARTIAL"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// IsValid returns true if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// IsDerived reports whether the status follows from the payments on the
// bill. FAILED and REFUNDED are only ever set by an administrator.
func (s PaymentStatus) IsDerived() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// ParsePaymentStatus parses a case-insensitive payment status token
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	st := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", shared.NewDomainError("INVALID_PAYMENT_STATUS", "Payment status must be one of PENDING, PARTIAL, COMPLETED, FAILED, REFUNDED")
	}
	return st, nil
}

// BillStatus represents the lifecycle state of a bill
type BillStatus string

const (
	BillStatusDraft     BillStatus = "DRAFT"
	BillStatusActive    BillStatus = "ACTIVE"
	BillStatusCancelled BillStatus = "CANCELLED"
	BillStatusReturned  BillStatus = "RETURNED"
)

// IsValid returns true if the bill status is valid
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusDraft, BillStatusActive, BillStatusCancelled, BillStatusReturned:
		return true
	}
	return false
}

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed
func (s BillStatus) IsTerminal() bool {
	return s == BillStatusCancelled || s == BillStatusReturned
}

// CanTransitionTo checks whether a status change is allowed
func (s BillStatus) CanTransitionTo(target BillStatus) bool {
	switch s {
	case BillStatusDraft:
		return target == BillStatusActive || target == BillStatusCancelled
	case BillStatusActive:
		return target == BillStatusCancelled || target == BillStatusReturned
	}
	return false
}

// ParseBillStatus parses a case-insensitive bill status token
func ParseBillStatus(s string) (BillStatus, error) {
	st := BillStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", "Status must be one of DRAFT, ACTIVE, CANCELLED, RETURNED")
	}
	return st, nil
}
