package event

import (
	"context"
	"errors"
	"testing"

	"github.com/arledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New()),
	}
}

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func TestInMemoryEventBus_PublishSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("typed handler receives only its type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"payment.created"}}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(ctx, newTestEvent("payment.created")))
		require.NoError(t, bus.Publish(ctx, newTestEvent("invoice.paid")))

		require.Len(t, handler.received, 1)
		assert.Equal(t, "payment.created", handler.received[0].EventType())
	})

	t.Run("wildcard handler receives everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(ctx,
			newTestEvent("payment.created"),
			newTestEvent("invoice.paid"),
		))

		assert.Len(t, handler.received, 2)
	})

	t.Run("explicit types override the handler's own", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"payment.created"}}
		bus.Subscribe(handler, "invoice.paid")

		require.NoError(t, bus.Publish(ctx, newTestEvent("payment.created")))
		require.NoError(t, bus.Publish(ctx, newTestEvent("invoice.paid")))

		require.Len(t, handler.received, 1)
		assert.Equal(t, "invoice.paid", handler.received[0].EventType())
	})

	t.Run("handler error does not stop other handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{err: errors.New("boom")}
		healthy := &recordingHandler{}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newTestEvent("payment.created")))
		assert.Len(t, healthy.received, 1)
	})

	t.Run("handler panic is contained", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := &recordingHandler{panics: true}
		healthy := &recordingHandler{}
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newTestEvent("payment.created")))
		assert.Len(t, healthy.received, 1)
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{types: []string{"payment.created"}}
		bus.Subscribe(handler)
		bus.Unsubscribe(handler)

		require.NoError(t, bus.Publish(ctx, newTestEvent("payment.created")))
		assert.Empty(t, handler.received)
	})
}

func TestAuditLogHandler(t *testing.T) {
	handler := NewAuditLogHandler(zap.NewNop())
	assert.Empty(t, handler.EventTypes())
	assert.NoError(t, handler.Handle(context.Background(), newTestEvent("payment.created")))
}
