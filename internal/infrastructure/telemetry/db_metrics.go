package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

const dbMetricsName = "telemetry:db_metrics"

// DBMetrics is a GORM plugin recording query durations and connection pool
// usage
type DBMetrics struct {
	queryDuration *Histogram
	meter         metric.Meter
	registration  metric.Registration
}

// NewDBMetrics creates the plugin. Register it with db.Use.
func NewDBMetrics(meter metric.Meter) (*DBMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	h, err := NewHistogram(meter, "pos_db_query_duration_seconds", "Duration of SQL statements", "s", DBDurationBuckets...)
	if err != nil {
		return nil, err
	}
	return &DBMetrics{queryDuration: h, meter: meter}, nil
}

// Name implements gorm.Plugin
func (m *DBMetrics) Name() string {
	return dbMetricsName
}

// Initialize implements gorm.Plugin
func (m *DBMetrics) Initialize(db *gorm.DB) error {
	if err := registerAround(db, dbMetricsName, m.afterQuery); err != nil {
		return fmt.Errorf("register db metrics callbacks: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	open, err := m.meter.Int64ObservableGauge("pos_db_connections_open", metric.WithDescription("Open database connections"))
	if err != nil {
		return err
	}
	inUse, err := m.meter.Int64ObservableGauge("pos_db_connections_in_use", metric.WithDescription("Database connections in use"))
	if err != nil {
		return err
	}
	waits, err := m.meter.Int64ObservableCounter("pos_db_connection_waits_total", metric.WithDescription("Waits for a free database connection"))
	if err != nil {
		return err
	}

	m.registration, err = m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(open, int64(stats.OpenConnections))
		o.ObserveInt64(inUse, int64(stats.InUse))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, inUse, waits)
	return err
}

// Close stops pool observation
func (m *DBMetrics) Close() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}

func (m *DBMetrics) afterQuery(operation string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		elapsed, ok := elapsedSince(tx, dbMetricsName)
		if !ok {
			return
		}
		outcome := "ok"
		if isQueryFailure(tx.Error) {
			outcome = "error"
		}
		m.queryDuration.RecordDuration(tx.Statement.Context, elapsed,
			AttrDBOperation.String(operation),
			AttrDBTable.String(tx.Statement.Table),
			AttrDBOutcome.String(outcome),
		)
	}
}

var _ gorm.Plugin = (*DBMetrics)(nil)
