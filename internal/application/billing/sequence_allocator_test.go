package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/settings"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceAllocator_Prefix(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("without provider", func(t *testing.T) {
		prefix, err := NewSequenceAllocator(nil, nil).Prefix(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, "CS", prefix)
	})

	t.Run("tenant prefix", func(t *testing.T) {
		provider := new(MockSettingsProvider)
		provider.On("GetSettings", ctx, tenantID).Return(settings.Defaults(tenantID, "INV", "₹"), nil)

		prefix, err := NewSequenceAllocator(provider, nil).Prefix(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, "INV", prefix)
	})

	t.Run("empty prefix falls back", func(t *testing.T) {
		provider := new(MockSettingsProvider)
		s := settings.Defaults(tenantID, "", "₹")
		s.InvoicePrefix = ""
		provider.On("GetSettings", ctx, tenantID).Return(s, nil)

		prefix, err := NewSequenceAllocator(provider, nil).Prefix(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, "CS", prefix)
	})

	t.Run("settings failure is internal", func(t *testing.T) {
		provider := new(MockSettingsProvider)
		provider.On("GetSettings", ctx, tenantID).Return(nil, errors.New("connection reset"))

		_, err := NewSequenceAllocator(provider, nil).Prefix(ctx, tenantID)
		require.Error(t, err)
		assert.Equal(t, shared.KindInternal, shared.KindOf(err))
	})
}

func TestSequenceAllocator_Next(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("formats the sequence for the day", func(t *testing.T) {
		repo := new(MockSequenceRepository)
		repo.On("Next", ctx, tenantID, "2024-03-15").Return(int64(12), nil)

		number, err := NewSequenceAllocator(nil, time.UTC).Next(ctx, repo, tenantID, "CS", testNow)
		require.NoError(t, err)
		assert.Equal(t, "CS240315012", number)
	})

	t.Run("day boundary follows the configured zone", func(t *testing.T) {
		ist := time.FixedZone("IST", 5*3600+1800)
		lateEvening := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)
		repo := new(MockSequenceRepository)
		repo.On("Next", ctx, tenantID, "2024-03-16").Return(int64(1), nil)

		number, err := NewSequenceAllocator(nil, ist).Next(ctx, repo, tenantID, "CS", lateEvening)
		require.NoError(t, err)
		assert.Equal(t, "CS240316001", number)
	})

	t.Run("counter failure is internal", func(t *testing.T) {
		repo := new(MockSequenceRepository)
		repo.On("Next", ctx, tenantID, "2024-03-15").Return(int64(0), errors.New("deadlock detected"))

		_, err := NewSequenceAllocator(nil, nil).Next(ctx, repo, tenantID, "CS", testNow)
		require.Error(t, err)
		assert.Equal(t, shared.KindInternal, shared.KindOf(err))
	})
}
