package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/settings"
	"github.com/shopspring/decimal"
)

// BusinessSettingsModel holds one row per tenant.
type BusinessSettingsModel struct {
	TenantID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoicePrefix  string          `gorm:"type:varchar(10);not null;default:'CS'"`
	TaxRate        decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	CurrencySymbol string          `gorm:"type:varchar(8);not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BusinessSettingsModel) TableName() string {
	return "business_settings"
}

// ToDomain converts the persistence model to domain settings
func (m *BusinessSettingsModel) ToDomain() *settings.BusinessSettings {
	return &settings.BusinessSettings{
		TenantID:       m.TenantID,
		InvoicePrefix:  m.InvoicePrefix,
		TaxRate:        m.TaxRate,
		CurrencySymbol: m.CurrencySymbol,
		UpdatedAt:      m.UpdatedAt,
	}
}

// BusinessSettingsModelFromDomain creates a persistence model from domain settings
func BusinessSettingsModelFromDomain(s *settings.BusinessSettings) *BusinessSettingsModel {
	return &BusinessSettingsModel{
		TenantID:       s.TenantID,
		InvoicePrefix:  s.InvoicePrefix,
		TaxRate:        s.TaxRate,
		CurrencySymbol: s.CurrencySymbol,
		UpdatedAt:      s.UpdatedAt,
	}
}
