package telemetry_test

import (
	"context"
	"testing"

	"github.com/posledger/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&widget{}))
	return db
}

func TestDBMetrics(t *testing.T) {
	mp, reader := setupTestMeter(t)
	db := openTestDB(t)

	plugin, err := telemetry.NewDBMetrics(mp.Meter("db"))
	require.NoError(t, err)
	require.NoError(t, db.Use(plugin))
	defer plugin.Close()

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "a"}).Error)
	var found widget
	require.NoError(t, db.WithContext(ctx).First(&found).Error)

	metrics := collect(t, reader)

	hist := metrics["pos_db_query_duration_seconds"].Data.(metricdata.Histogram[float64])
	ops := make(map[string]uint64)
	for _, dp := range hist.DataPoints {
		op, _ := dp.Attributes.Value(telemetry.AttrDBOperation)
		ops[op.AsString()] += dp.Count
	}
	assert.Equal(t, uint64(1), ops["insert"])
	assert.Equal(t, uint64(1), ops["select"])

	open := metrics["pos_db_connections_open"].Data.(metricdata.Gauge[int64])
	require.Len(t, open.DataPoints, 1)
	assert.GreaterOrEqual(t, open.DataPoints[0].Value, int64(0))
}

func TestRegisterDBTracing(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{}, zap.NewNop()))
	})

	t.Run("queries become child spans", func(t *testing.T) {
		sr := setupTestTracer(t)
		db := openTestDB(t)
		require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop()))

		ctx, parent := otel.Tracer("test").Start(context.Background(), "request")
		require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "b"}).Error)
		parent.End()

		spans := sr.Ended()
		require.GreaterOrEqual(t, len(spans), 2)
		var child bool
		for _, s := range spans {
			if s.Parent().SpanID() == parent.SpanContext().SpanID() {
				child = true
			}
		}
		assert.True(t, child, "expected a database span under the request span")
	})
}
