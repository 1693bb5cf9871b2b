package event

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldserve/backend/internal/domain/shared"
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
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "test", uuid.New(), uuid.New()),
	}
}

type capturingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *capturingHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, evt)
	return h.err
}

func (h *capturingHandler) EventTypes() []string { return h.types }

func TestPublishRoutesByType(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())
	completed := &capturingHandler{types: []string{"workorder.completed"}}
	created := &capturingHandler{types: []string{"invoice.created"}}
	bus.Subscribe(completed)
	bus.Subscribe(created)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("workorder.completed")))

	assert.Len(t, completed.received, 1)
	assert.Empty(t, created.received)
}

func TestPublishWildcardHandler(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())
	all := &capturingHandler{}
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("invoice.created"), newTestEvent("workorder.completed")))

	assert.Len(t, all.received, 2)
}

func TestHandlerErrorDoesNotPropagate(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())
	failing := &capturingHandler{types: []string{"invoice.created"}, err: errors.New("smtp down")}
	healthy := &capturingHandler{types: []string{"invoice.created"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("invoice.created"))

	require.NoError(t, err)
	assert.Len(t, healthy.received, 1)
}

func TestHandlerPanicIsContained(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())
	bus.Subscribe(&capturingHandler{types: []string{"invoice.created"}, panics: true})

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("invoice.created"))
	})
}

func TestUnsubscribe(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())
	h := &capturingHandler{types: []string{"invoice.created"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("invoice.created")))
	assert.Empty(t, h.received)
}
