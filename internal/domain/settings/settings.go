package settings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BusinessSettings is the per-tenant configuration read by billing
type BusinessSettings struct {
	TenantID       uuid.UUID
	InvoicePrefix  string
	TaxRate        decimal.Decimal // percentage, informational
	CurrencySymbol string
	UpdatedAt      time.Time
}

// Defaults returns the settings used when a tenant has none stored
func Defaults(tenantID uuid.UUID, invoicePrefix, currencySymbol string) *BusinessSettings {
	return &BusinessSettings{
		TenantID:       tenantID,
		InvoicePrefix:  invoicePrefix,
		TaxRate:        decimal.Zero,
		CurrencySymbol: currencySymbol,
	}
}

// SetInvoicePrefix validates and stores the bill-number prefix
func (s *BusinessSettings) SetInvoicePrefix(prefix string) error {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" || len(prefix) > 10 {
		return shared.NewDomainError("INVALID_PREFIX", "Invoice prefix must be 1 to 10 characters")
	}
	for _, r := range prefix {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return shared.NewDomainError("INVALID_PREFIX", "Invoice prefix can only contain letters and digits")
		}
	}
	s.InvoicePrefix = prefix
	return nil
}

// SetTaxRate stores the tax percentage
func (s *BusinessSettings) SetTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	s.TaxRate = rate
	return nil
}

// SetCurrencySymbol stores the display currency symbol
func (s *BusinessSettings) SetCurrencySymbol(symbol string) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" || len(symbol) > 8 {
		return shared.NewDomainError("INVALID_CURRENCY_SYMBOL", "Currency symbol must be 1 to 8 bytes")
	}
	s.CurrencySymbol = symbol
	return nil
}

// Repository stores business settings
type Repository interface {
	// FindByTenant returns shared.ErrNotFound when the tenant has no row
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*BusinessSettings, error)

	// Save upserts the tenant's settings
	Save(ctx context.Context, s *BusinessSettings) error
}
