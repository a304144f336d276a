package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultInvoicePrefix is used when a tenant has not configured one
const DefaultInvoicePrefix = "CS"

// SequenceDate is the per-day counter key in the tenant's calendar
func SequenceDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatBillNumber renders PREFIX YY MM DD SEQ without separators, SEQ padded
// to three digits. Sequences above 999 widen instead of wrapping.
func FormatBillNumber(prefix string, day time.Time, seq int64) string {
	return fmt.Sprintf("%s%03d", BillNumberStem(prefix, day), seq)
}

// BillNumberStem is the part of a bill number that precedes SEQ
func BillNumberStem(prefix string, day time.Time) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	return prefix + day.Format("060102")
}

// ParseBillSequence returns the SEQ of number when it starts with stem
func ParseBillSequence(number, stem string) (int64, bool) {
	rest, ok := strings.CutPrefix(number, stem)
	if !ok || len(rest) < 3 {
		return 0, false
	}
	if strings.TrimLeft(rest, "0123456789") != "" {
		return 0, false
	}
	seq, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return seq, true
}

// ErrCodeBillNumberConflict is reported when a bill number is already taken
const ErrCodeBillNumberConflict = "BILL_NUMBER_CONFLICT"
