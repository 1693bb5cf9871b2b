package workorder

import (
	"context"

	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/fieldserve/backend/internal/domain/workorder"
	"go.uber.org/zap"
)

// CustomerNotifier is the external collaborator that tells the customer
// their vehicle is ready. Implementations send email or SMS; the core only
// knows the contract.
type CustomerNotifier interface {
	NotifyWorkOrderCompleted(ctx context.Context, event *workorder.WorkOrderCompletedEvent) error
}

// CompletionNotificationHandler bridges the post-commit completed event to
// the customer notifier. Notification failures are logged and dropped; the
// business transaction they follow has already committed.
type CompletionNotificationHandler struct {
	notifier CustomerNotifier
	logger   *zap.Logger
}

// NewCompletionNotificationHandler creates a new handler
func NewCompletionNotificationHandler(notifier CustomerNotifier, logger *zap.Logger) *CompletionNotificationHandler {
	return &CompletionNotificationHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CompletionNotificationHandler) EventTypes() []string {
	return []string{workorder.EventTypeWorkOrderCompleted}
}

// Handle forwards the completed event to the notifier
func (h *CompletionNotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*workorder.WorkOrderCompletedEvent)
	if !ok {
		return nil
	}
	if err := h.notifier.NotifyWorkOrderCompleted(ctx, completed); err != nil {
		h.logger.Warn("customer notification failed",
			zap.String("work_order_id", completed.AggregateID().String()),
			zap.String("customer_id", completed.CustomerID.String()),
			zap.Error(err))
	}
	return nil
}

// Ensure CompletionNotificationHandler implements the handler interface
var _ shared.EventHandler = (*CompletionNotificationHandler)(nil)
