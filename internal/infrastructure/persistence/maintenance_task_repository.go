package persistence

import (
	"context"
	"errors"

	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/fieldserve/backend/internal/domain/workorder"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMaintenanceTaskRepository implements MaintenanceTaskRepository using GORM
type GormMaintenanceTaskRepository struct {
	db *gorm.DB
}

// NewGormMaintenanceTaskRepository creates a new GormMaintenanceTaskRepository
func NewGormMaintenanceTaskRepository(db *gorm.DB) *GormMaintenanceTaskRepository {
	return &GormMaintenanceTaskRepository{db: db}
}

// FindByIDForTenant finds a maintenance task by ID within a tenant
func (r *GormMaintenanceTaskRepository) FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*workorder.MaintenanceTask, error) {
	var task workorder.MaintenanceTask
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// FindOpenByVehicle lists still-open tasks for a vehicle, oldest first
func (r *GormMaintenanceTaskRepository) FindOpenByVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) ([]workorder.MaintenanceTask, error) {
	var tasks []workorder.MaintenanceTask
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND vehicle_id = ? AND status = ?", tenantID, vehicleID, workorder.TaskStatusOpen).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Save persists a new maintenance task
func (r *GormMaintenanceTaskRepository) Save(ctx context.Context, task *workorder.MaintenanceTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// Update persists changes to a maintenance task
func (r *GormMaintenanceTaskRepository) Update(ctx context.Context, task *workorder.MaintenanceTask) error {
	return r.db.WithContext(ctx).Save(task).Error
}

var _ workorder.MaintenanceTaskRepository = (*GormMaintenanceTaskRepository)(nil)
