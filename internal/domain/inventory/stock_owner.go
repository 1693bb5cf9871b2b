package inventory

import (
	"github.com/fieldserve/backend/internal/domain/catalog"
	"github.com/fieldserve/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// ResolveStockOwner determines which pool a product's postings affect: the
// product's own tenant, or the shared pool when the tenant belongs to a
// connected business group.
//
// Every ledger-touching path must resolve ownership through this function so
// the indirection is applied identically everywhere.
func ResolveStockOwner(profile *identity.TenantProfile, product *catalog.Product) uuid.UUID {
	if profile != nil && profile.StockPoolID != nil {
		return *profile.StockPoolID
	}
	return product.TenantID
}
