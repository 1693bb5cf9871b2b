package persistence

import (
	"context"
	"errors"

	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/fieldserve/backend/internal/domain/workorder"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWorkOrderRepository implements WorkOrderRepository using GORM
type GormWorkOrderRepository struct {
	db *gorm.DB
}

// NewGormWorkOrderRepository creates a new GormWorkOrderRepository
func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

// FindByIDForTenant finds a work order with its items within a tenant
func (r *GormWorkOrderRepository) FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*workorder.WorkOrder, error) {
	var order workorder.WorkOrder
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByVehicle lists a vehicle's work orders, newest first
func (r *GormWorkOrderRepository) FindByVehicle(ctx context.Context, tenantID, vehicleID uuid.UUID) ([]workorder.WorkOrder, error) {
	var orders []workorder.WorkOrder
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("tenant_id = ? AND vehicle_id = ?", tenantID, vehicleID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save persists a new work order together with its items
func (r *GormWorkOrderRepository) Save(ctx context.Context, order *workorder.WorkOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Update persists changes to a work order and its items
func (r *GormWorkOrderRepository) Update(ctx context.Context, order *workorder.WorkOrder) error {
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(order).Error; err != nil {
		return err
	}
	// items are replaced as a set; the aggregate holds the complete list
	for i := range order.Items {
		if err := r.db.WithContext(ctx).Save(&order.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

var _ workorder.WorkOrderRepository = (*GormWorkOrderRepository)(nil)
