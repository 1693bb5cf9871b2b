package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository provides access to the product catalog
type ProductRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Product, error)
	Save(ctx context.Context, product *Product) error
}
