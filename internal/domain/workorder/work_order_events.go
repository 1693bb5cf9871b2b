package workorder

import (
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event type constants for the work order context
const (
	EventTypeWorkOrderCompleted = "workorder.completed"
)

// WorkOrderCompletedEvent is raised when a work order reaches completed.
// It is published only after the completion transaction commits, so the
// customer notification handler never fires for a rolled-back completion.
type WorkOrderCompletedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	VehicleID  uuid.UUID `json:"vehicle_id"`
}

// NewWorkOrderCompletedEvent creates a new work order completed event
func NewWorkOrderCompletedEvent(order *WorkOrder) *WorkOrderCompletedEvent {
	return &WorkOrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWorkOrderCompleted, "WorkOrder", order.ID, order.TenantID),
		CustomerID:      order.CustomerID,
		VehicleID:       order.VehicleID,
	}
}
