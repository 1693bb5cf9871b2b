package event

import (
	"context"

	"github.com/fieldserve/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryBus dispatches domain events synchronously to subscribed handlers.
// Handler failures are logged and never returned to the publisher, so a
// broken handler cannot fail business operations that already committed.
type InMemoryBus struct {
	subs   *subscriptions
	logger *zap.Logger
}

// NewInMemoryBus creates a new in-memory event bus
func NewInMemoryBus(logger *zap.Logger) *InMemoryBus {
	return &InMemoryBus{
		subs:   newSubscriptions(),
		logger: logger,
	}
}

// Publish dispatches events to all handlers registered for their types
func (b *InMemoryBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		for _, handler := range b.subs.handlersFor(evt.EventType()) {
			if err := b.dispatch(ctx, handler, evt); err != nil {
				b.logger.Error("event handler failed",
					zap.String("event_type", evt.EventType()),
					zap.String("event_id", evt.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. When no event types are given the handler's
// own EventTypes are used; an empty result subscribes it to all events.
func (b *InMemoryBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.subs.add(handler, eventTypes...)
	b.logger.Debug("event handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler from all event types
func (b *InMemoryBus) Unsubscribe(handler shared.EventHandler) {
	b.subs.remove(handler)
}

// dispatch invokes one handler, converting a panic into a logged failure
func (b *InMemoryBus) dispatch(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", evt.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return handler.Handle(ctx, evt)
}

var _ shared.EventBus = (*InMemoryBus)(nil)
