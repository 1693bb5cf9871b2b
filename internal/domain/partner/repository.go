package partner

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository provides read access to customer reference data
type CustomerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
}

// VehicleRepository provides access to vehicle reference data
type VehicleRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Vehicle, error)
	Save(ctx context.Context, vehicle *Vehicle) error
}
