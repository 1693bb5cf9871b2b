package persistence

import (
	"context"

	appinventory "github.com/fieldserve/backend/internal/application/inventory"
	"github.com/fieldserve/backend/internal/domain/catalog"
	"github.com/fieldserve/backend/internal/domain/identity"
	"github.com/fieldserve/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormInventoryTransactionScope implements the inventory TransactionScope
// using GORM transactions
type GormInventoryTransactionScope struct {
	db *gorm.DB
}

// NewGormInventoryTransactionScope creates a new GormInventoryTransactionScope
func NewGormInventoryTransactionScope(db *gorm.DB) *GormInventoryTransactionScope {
	return &GormInventoryTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormInventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormInventoryRepositories{tx: tx})
	})
}

// gormInventoryRepositories binds the inventory repositories to one transaction
type gormInventoryRepositories struct {
	tx *gorm.DB
}

// StockTransactionRepo returns the stock ledger repository scoped to the current transaction
func (r *gormInventoryRepositories) StockTransactionRepo() inventory.StockTransactionRepository {
	return NewGormStockTransactionRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormInventoryRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// TenantProfileRepo returns the tenant profile repository scoped to the current transaction
func (r *gormInventoryRepositories) TenantProfileRepo() identity.TenantProfileRepository {
	return NewGormTenantProfileRepository(r.tx)
}

var _ appinventory.TransactionScope = (*GormInventoryTransactionScope)(nil)
var _ appinventory.TransactionalRepositories = (*gormInventoryRepositories)(nil)
