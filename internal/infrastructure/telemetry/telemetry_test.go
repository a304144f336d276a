package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func setupTestMeter(t *testing.T) (*telemetry.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewMeterProviderWithReader(reader, zap.NewNop())
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "bill", "create",
		telemetry.SpanAttrBillNumber, "CS260101001",
		telemetry.SpanAttrItemCount, 3,
		42, "ignored",
	)
	telemetry.SetAttributes(span, telemetry.SpanAttrAmount, decimal.RequireFromString("885.00"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "bill.create", spans[0].Name())

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "CS260101001", attrs["bill_number"].AsString())
	assert.Equal(t, int64(3), attrs["item_count"].AsInt64())
	assert.Equal(t, "885", attrs["amount"].AsString())
	assert.Len(t, attrs, 3)
}

func TestEndSpan(t *testing.T) {
	sr := setupTestTracer(t)

	run := func(fail bool) (err error) {
		_, span := telemetry.StartServiceSpan(context.Background(), "payment", "add")
		defer telemetry.EndSpan(span, &err)
		if fail {
			return errors.New("bill is cancelled")
		}
		return nil
	}

	require.NoError(t, run(false))
	require.Error(t, run(true))

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "bill is cancelled", spans[1].Status().Description)
	require.Len(t, spans[1].Events(), 1)
	assert.Equal(t, "exception", spans[1].Events()[0].Name)
}

func TestBillingMetrics_Handle(t *testing.T) {
	mp, reader := setupTestMeter(t)
	m, err := telemetry.NewBillingMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()
	bill := &billing.Bill{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BillNumber:          "CS260101001",
		FinalAmount:         decimal.RequireFromString("885"),
		PaymentMethod:       billing.PaymentMethodCash,
		PaymentStatus:       billing.PaymentStatusPartial,
	}
	payment, err := billing.NewPayment(tenantID, bill.ID, decimal.RequireFromString("100.50"), billing.PaymentMethodCard)
	require.NoError(t, err)

	require.NoError(t, m.Handle(ctx, billing.NewBillCreatedEvent(bill)))
	require.NoError(t, m.Handle(ctx, billing.NewBillCreatedEvent(bill)))
	require.NoError(t, m.Handle(ctx, billing.NewPaymentRecordedEvent(bill, payment, payment.Amount)))
	require.NoError(t, m.Handle(ctx, billing.NewBillCancelledEvent(bill, "customer left")))

	metrics := collect(t, reader)

	created := metrics["pos_bills_created_total"].Data.(metricdata.Sum[int64])
	require.Len(t, created.DataPoints, 1)
	assert.Equal(t, int64(2), created.DataPoints[0].Value)
	method, _ := created.DataPoints[0].Attributes.Value(telemetry.AttrPaymentMethod)
	assert.Equal(t, "CASH", method.AsString())

	billed := metrics["pos_billed_amount_total"].Data.(metricdata.Sum[float64])
	assert.InDelta(t, 1770.0, billed.DataPoints[0].Value, 0.0001)

	paid := metrics["pos_payment_amount_total"].Data.(metricdata.Sum[float64])
	assert.InDelta(t, 100.5, paid.DataPoints[0].Value, 0.0001)
	status, _ := paid.DataPoints[0].Attributes.Value(telemetry.AttrPaymentStatus)
	assert.Equal(t, "PARTIAL", status.AsString())

	cancelled := metrics["pos_bills_cancelled_total"].Data.(metricdata.Sum[int64])
	assert.Equal(t, int64(1), cancelled.DataPoints[0].Value)

	assert.ElementsMatch(t, []string{
		billing.EventTypeBillCreated, billing.EventTypeBillCancelled, billing.EventTypePaymentRecorded,
	}, m.EventTypes())
}

func TestNewBillingMetrics_NilMeter(t *testing.T) {
	_, err := telemetry.NewBillingMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	require.NoError(t, tp.Shutdown(ctx))

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, mp.Meter("x"))
	require.NoError(t, mp.Shutdown(ctx))
}
