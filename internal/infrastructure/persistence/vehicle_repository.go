package persistence

import (
	"context"
	"errors"

	"github.com/fieldserve/backend/internal/domain/partner"
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVehicleRepository implements VehicleRepository using GORM
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByIDForTenant finds a vehicle by ID within a tenant
func (r *GormVehicleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Vehicle, error) {
	var vehicle partner.Vehicle
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

// Save persists a vehicle, inserting or updating by primary key
func (r *GormVehicleRepository) Save(ctx context.Context, vehicle *partner.Vehicle) error {
	return r.db.WithContext(ctx).Save(vehicle).Error
}

var _ partner.VehicleRepository = (*GormVehicleRepository)(nil)
