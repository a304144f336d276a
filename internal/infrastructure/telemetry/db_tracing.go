package telemetry

import (
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dbTracingName = "telemetry:db_tracing"

// DBTracingConfig holds configuration for database tracing
type DBTracingConfig struct {
	Enabled         bool
	DBSystem        string // default "postgresql"
	LogFullSQL      bool   // include bound variables; development only
	SlowQueryThresh time.Duration
}

// RegisterDBTracing installs otelgorm and annotates its spans with the
// affected table, row count and a slow-query marker
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	if cfg.SlowQueryThresh == 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := registerAround(db, dbTracingName, annotateSpan(cfg.SlowQueryThresh)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateSpan(threshold time.Duration) func(operation string) func(*gorm.DB) {
	return func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			span := trace.SpanFromContext(tx.Statement.Context)
			if !span.IsRecording() {
				return
			}
			span.SetAttributes(
				attribute.String("db.operation", operation),
				attribute.Int64("db.rows_affected", tx.Statement.RowsAffected),
			)
			if tx.Statement.Table != "" {
				span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
			}
			if isQueryFailure(tx.Error) {
				RecordError(span, tx.Error)
			}
			if elapsed, ok := elapsedSince(tx, dbTracingName); ok && elapsed > threshold {
				span.SetAttributes(attribute.Bool("db.slow_query", true))
				span.AddEvent("slow_query", trace.WithAttributes(
					attribute.Int64("duration_ms", elapsed.Milliseconds()),
					attribute.Int64("threshold_ms", threshold.Milliseconds()),
				))
			}
		}
	}
}
