package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Bill", uuid.New(), uuid.New()),
	}
}

type testHandler struct {
	eventTypes []string
	err        error
	panicMsg   string

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to handlers of the event type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		created := newTestHandler("BillCreated")
		other := newTestHandler("PaymentRecorded")
		bus.Subscribe(created)
		bus.Subscribe(other)

		require.NoError(t, bus.Publish(ctx, newTestEvent("BillCreated"), newTestEvent("BillCreated")))

		assert.Equal(t, 2, created.count())
		assert.Zero(t, other.count())
	})

	t.Run("explicit types override the handler's own", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newTestHandler("BillCreated")
		bus.Subscribe(h, "BillCancelled")

		_ = bus.Publish(ctx, newTestEvent("BillCreated"), newTestEvent("BillCancelled"))
		assert.Equal(t, 1, h.count())
	})

	t.Run("handler failures are logged and isolated", func(t *testing.T) {
		core, recorded := observer.New(zapcore.ErrorLevel)
		bus := NewInMemoryEventBus(zap.New(core))

		failing := newTestHandler("BillCreated")
		failing.err = errors.New("sink unavailable")
		panicking := newTestHandler("BillCreated")
		panicking.panicMsg = "boom"
		healthy := newTestHandler("BillCreated")
		bus.Subscribe(failing)
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newTestEvent("BillCreated")))

		assert.Equal(t, 1, healthy.count())
		entries := recorded.FilterMessage("handler failed to process event").All()
		require.Len(t, entries, 2)
		assert.Contains(t, entries[1].ContextMap()["error"], "handler panicked: boom")
	})

	t.Run("unsubscribed handlers stop receiving", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newTestHandler("BillCreated")
		bus.Subscribe(h)
		_ = bus.Publish(ctx, newTestEvent("BillCreated"))
		bus.Unsubscribe(h)
		_ = bus.Publish(ctx, newTestEvent("BillCreated"))

		assert.Equal(t, 1, h.count())
	})
}

func TestInMemoryEventBus_Async(t *testing.T) {
	bus := NewInMemoryEventBusWithConfig(zap.NewNop(), BusConfig{Workers: 3, QueueSize: 8})
	h := newTestHandler("PaymentRecorded")
	bus.Subscribe(h)

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Start(context.Background()))

	reqCtx, cancel := context.WithCancel(context.Background())
	for range 50 {
		require.NoError(t, bus.Publish(reqCtx, newTestEvent("PaymentRecorded")))
	}
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, bus.Stop(stopCtx))

	assert.Equal(t, 50, h.count())

	// after Stop, delivery falls back to inline
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("PaymentRecorded")))
	assert.Equal(t, 51, h.count())
	require.NoError(t, bus.Stop(stopCtx))
}

func TestInMemoryEventBus_SyncStartStopAreNoops(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	h := newTestHandler("BillCreated")
	bus.Subscribe(h)
	_ = bus.Publish(context.Background(), newTestEvent("BillCreated"))
	assert.Equal(t, 1, h.count())
	require.NoError(t, bus.Stop(context.Background()))
}
