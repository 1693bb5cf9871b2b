package workorder

import (
	"time"

	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TaskStatus represents the maintenance task state
type TaskStatus string

const (
	TaskStatusOpen   TaskStatus = "open"
	TaskStatusClosed TaskStatus = "closed"
)

// MaintenanceTask is a scheduled service item for a vehicle (oil change,
// tire rotation). Completing a work order closes the vehicle's still-open
// tasks and stamps them with the service date and mileage.
type MaintenanceTask struct {
	shared.TenantAggregateRoot
	VehicleID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title       string     `gorm:"type:varchar(200);not null"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;index"`
	DueDate     *time.Time `gorm:"type:timestamptz"`
	ServicedAt  *time.Time `gorm:"type:timestamptz"`
	ServicedKms *int64
}

// TableName returns the table name for GORM
func (MaintenanceTask) TableName() string {
	return "maintenance_tasks"
}

// NewMaintenanceTask creates an open maintenance task
func NewMaintenanceTask(tenantID, vehicleID uuid.UUID, title string, dueDate *time.Time) (*MaintenanceTask, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if vehicleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VEHICLE", "Vehicle ID cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Task title cannot be empty")
	}

	return &MaintenanceTask{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		VehicleID:           vehicleID,
		Title:               title,
		Status:              TaskStatusOpen,
		DueDate:             dueDate,
	}, nil
}

// IsOpen returns true while the task awaits service
func (t *MaintenanceTask) IsOpen() bool {
	return t.Status == TaskStatusOpen
}

// Close stamps the task with the service date and mileage and marks it
// closed. Closing an already-closed task is a no-op.
func (t *MaintenanceTask) Close(servicedAt time.Time, mileage int64) error {
	if t.Status == TaskStatusClosed {
		return nil
	}
	if mileage < 0 {
		return shared.NewDomainError("INVALID_MILEAGE", "Service mileage cannot be negative")
	}
	t.Status = TaskStatusClosed
	t.ServicedAt = &servicedAt
	t.ServicedKms = &mileage
	t.Touch()
	return nil
}
