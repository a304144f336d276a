package settings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/settings"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Defaults are the values reported for a tenant that never saved settings
type Defaults struct {
	InvoicePrefix  string
	CurrencySymbol string
}

// UpdateSettingsRequest is a partial update; nil fields are left untouched
type UpdateSettingsRequest struct {
	InvoicePrefix  *string          `json:"invoice_prefix" binding:"omitempty,max=10"`
	TaxRate        *decimal.Decimal `json:"tax_rate"`
	CurrencySymbol *string          `json:"currency_symbol" binding:"omitempty,max=8"`
}

// SettingsResponse represents business settings in API responses
type SettingsResponse struct {
	TenantID       uuid.UUID       `json:"tenant_id"`
	InvoicePrefix  string          `json:"invoice_prefix"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	CurrencySymbol string          `json:"currency_symbol"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"`
}

// Service reads and writes per-tenant business settings. It also serves as
// the settings provider for bill numbering.
type Service struct {
	repo     settings.Repository
	defaults Defaults
	logger   *zap.Logger
}

// NewService creates a new settings Service
func NewService(repo settings.Repository, defaults Defaults, logger *zap.Logger) *Service {
	if defaults.InvoicePrefix == "" {
		defaults.InvoicePrefix = "CS"
	}
	if defaults.CurrencySymbol == "" {
		defaults.CurrencySymbol = "₹"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, defaults: defaults, logger: logger}
}

// GetSettings returns the stored settings or the defaults
func (s *Service) GetSettings(ctx context.Context, tenantID uuid.UUID) (*settings.BusinessSettings, error) {
	stored, err := s.repo.FindByTenant(ctx, tenantID)
	if err == nil {
		return stored, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return settings.Defaults(tenantID, s.defaults.InvoicePrefix, s.defaults.CurrencySymbol), nil
	}
	return nil, shared.WrapInternal(err, "failed to load business settings")
}

// Get returns the tenant's settings as a response
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID) (*SettingsResponse, error) {
	bs, err := s.GetSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return toResponse(bs), nil
}

// Update applies a partial update and stores the result
func (s *Service) Update(ctx context.Context, tenantID uuid.UUID, req UpdateSettingsRequest) (*SettingsResponse, error) {
	bs, err := s.GetSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if req.InvoicePrefix != nil {
		if err := bs.SetInvoicePrefix(*req.InvoicePrefix); err != nil {
			return nil, err
		}
	}
	if req.TaxRate != nil {
		if err := bs.SetTaxRate(*req.TaxRate); err != nil {
			return nil, err
		}
	}
	if req.CurrencySymbol != nil {
		if err := bs.SetCurrencySymbol(*req.CurrencySymbol); err != nil {
			return nil, err
		}
	}
	bs.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, bs); err != nil {
		return nil, shared.WrapInternal(err, "failed to save business settings")
	}
	s.logger.Info("Business settings updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_prefix", bs.InvoicePrefix),
	)
	return toResponse(bs), nil
}

func toResponse(bs *settings.BusinessSettings) *SettingsResponse {
	resp := &SettingsResponse{
		TenantID:       bs.TenantID,
		InvoicePrefix:  bs.InvoicePrefix,
		TaxRate:        bs.TaxRate,
		CurrencySymbol: bs.CurrencySymbol,
	}
	if !bs.UpdatedAt.IsZero() {
		at := bs.UpdatedAt
		resp.UpdatedAt = &at
	}
	return resp
}
