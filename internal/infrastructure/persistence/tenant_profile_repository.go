package persistence

import (
	"context"
	"errors"

	"github.com/fieldserve/backend/internal/domain/identity"
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTenantProfileRepository implements TenantProfileRepository using GORM
type GormTenantProfileRepository struct {
	db *gorm.DB
}

// NewGormTenantProfileRepository creates a new GormTenantProfileRepository
func NewGormTenantProfileRepository(db *gorm.DB) *GormTenantProfileRepository {
	return &GormTenantProfileRepository{db: db}
}

// FindByTenant finds the profile for a tenant
func (r *GormTenantProfileRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*identity.TenantProfile, error) {
	var profile identity.TenantProfile
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Save persists a tenant profile, inserting or updating by primary key
func (r *GormTenantProfileRepository) Save(ctx context.Context, profile *identity.TenantProfile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

var _ identity.TenantProfileRepository = (*GormTenantProfileRepository)(nil)
