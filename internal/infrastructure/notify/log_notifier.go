package notify

import (
	"context"

	"github.com/fieldserve/backend/internal/domain/workorder"
	"go.uber.org/zap"
)

// LogNotifier writes customer notifications to the process log. It stands in
// for an email or SMS gateway in environments that have none configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyWorkOrderCompleted records the notification that would be sent
func (n *LogNotifier) NotifyWorkOrderCompleted(_ context.Context, event *workorder.WorkOrderCompletedEvent) error {
	n.logger.Info("work order completed notification",
		zap.String("work_order_id", event.AggregateID().String()),
		zap.String("customer_id", event.CustomerID.String()),
		zap.String("vehicle_id", event.VehicleID.String()),
	)
	return nil
}
