package workorder

import (
	"context"

	"github.com/google/uuid"
)

// WorkOrderRepository defines the persistence contract for work orders
type WorkOrderRepository interface {
	FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*WorkOrder, error)
	FindByVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) ([]WorkOrder, error)
	Save(ctx context.Context, order *WorkOrder) error
	Update(ctx context.Context, order *WorkOrder) error
}

// MaintenanceTaskRepository defines the persistence contract for
// maintenance tasks
type MaintenanceTaskRepository interface {
	FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*MaintenanceTask, error)
	// FindOpenByVehicle lists still-open tasks for a vehicle, the set the
	// completion cascade closes out
	FindOpenByVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) ([]MaintenanceTask, error)
	Save(ctx context.Context, task *MaintenanceTask) error
	Update(ctx context.Context, task *MaintenanceTask) error
}
