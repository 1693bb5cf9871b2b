package event

import (
	"sync"

	"github.com/fieldserve/backend/internal/domain/shared"
)

// subscriptions maps event types to their handlers. Handlers registered
// without event types are wildcard and receive every event.
type subscriptions struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	wildcard []shared.EventHandler
}

func newSubscriptions() *subscriptions {
	return &subscriptions{
		byType: make(map[string][]shared.EventHandler),
	}
}

func (s *subscriptions) add(handler shared.EventHandler, eventTypes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(eventTypes) == 0 {
		s.wildcard = append(s.wildcard, handler)
		return
	}
	for _, eventType := range eventTypes {
		s.byType[eventType] = append(s.byType[eventType], handler)
	}
}

func (s *subscriptions) remove(handler shared.EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wildcard = without(s.wildcard, handler)
	for eventType, handlers := range s.byType {
		s.byType[eventType] = without(handlers, handler)
		if len(s.byType[eventType]) == 0 {
			delete(s.byType, eventType)
		}
	}
}

// handlersFor returns the type-specific handlers followed by the wildcard ones
func (s *subscriptions) handlersFor(eventType string) []shared.EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()

	typed := s.byType[eventType]
	result := make([]shared.EventHandler, 0, len(typed)+len(s.wildcard))
	result = append(result, typed...)
	result = append(result, s.wildcard...)
	return result
}

func without(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	result := make([]shared.EventHandler, 0, len(handlers))
	for _, h := range handlers {
		if h != target {
			result = append(result, h)
		}
	}
	return result
}
