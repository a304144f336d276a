package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/domain/settings"
	"github.com/posledger/backend/internal/domain/shared"
)

// SettingsProvider supplies tenant business settings
type SettingsProvider interface {
	GetSettings(ctx context.Context, tenantID uuid.UUID) (*settings.BusinessSettings, error)
}

// SequenceAllocator mints bill numbers of the form PREFIX YYMMDD SEQ.
// SEQ comes from a per-tenant, per-day counter row that is incremented
// atomically inside the bill's own transaction, so concurrent callers never
// observe the same value and a rolled-back bill gives its number back.
type SequenceAllocator struct {
	settings SettingsProvider
	location *time.Location
}

// NewSequenceAllocator creates a SequenceAllocator. Day boundaries are taken
// in loc (UTC when nil).
func NewSequenceAllocator(provider SettingsProvider, loc *time.Location) *SequenceAllocator {
	if loc == nil {
		loc = time.UTC
	}
	return &SequenceAllocator{settings: provider, location: loc}
}

// Prefix resolves the tenant's invoice prefix. Call it before opening the
// transaction; settings are read-only for billing.
func (a *SequenceAllocator) Prefix(ctx context.Context, tenantID uuid.UUID) (string, error) {
	if a.settings == nil {
		return billing.DefaultInvoicePrefix, nil
	}
	s, err := a.settings.GetSettings(ctx, tenantID)
	if err != nil {
		return "", shared.WrapInternal(err, "failed to load business settings")
	}
	if s == nil || s.InvoicePrefix == "" {
		return billing.DefaultInvoicePrefix, nil
	}
	return s.InvoicePrefix, nil
}

// Next increments the tenant's counter for the day containing now and
// formats the bill number. repo must be bound to the caller's transaction.
func (a *SequenceAllocator) Next(
	ctx context.Context,
	repo billing.SequenceRepository,
	tenantID uuid.UUID,
	prefix string,
	now time.Time,
) (string, error) {
	day := now.In(a.location)
	seq, err := repo.Next(ctx, tenantID, billing.SequenceDate(day))
	if err != nil {
		return "", shared.WrapInternal(err, "failed to allocate bill sequence")
	}
	return billing.FormatBillNumber(prefix, day, seq), nil
}

// Resync moves the day's counter past every number already taken, so the
// next call to Next cannot collide with a bill written outside the counter
// (imports, restored backups, a counter row lost with its day).
func (a *SequenceAllocator) Resync(
	ctx context.Context,
	repo billing.SequenceRepository,
	tenantID uuid.UUID,
	prefix string,
	now time.Time,
) error {
	day := now.In(a.location)
	if _, err := repo.Resync(ctx, tenantID, billing.SequenceDate(day), billing.BillNumberStem(prefix, day)); err != nil {
		return shared.WrapInternal(err, "failed to resync bill sequence")
	}
	return nil
}
