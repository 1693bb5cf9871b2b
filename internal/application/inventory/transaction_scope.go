package inventory

import (
	"context"

	"github.com/fieldserve/backend/internal/domain/catalog"
	"github.com/fieldserve/backend/internal/domain/identity"
	"github.com/fieldserve/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the inventory
// repositories. When a function is executed within a transaction scope, all
// repository operations are part of the same database transaction and
// commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories a stock
// operation touches within a transaction
type TransactionalRepositories interface {
	// StockTransactionRepo returns the stock ledger repository scoped to the current transaction
	StockTransactionRepo() inventory.StockTransactionRepository
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// TenantProfileRepo returns the tenant profile repository scoped to the current transaction
	TenantProfileRepo() identity.TenantProfileRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not
// required.
type NoOpTransactionScope struct {
	stockRepo   inventory.StockTransactionRepository
	productRepo catalog.ProductRepository
	profileRepo identity.TenantProfileRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	stockRepo inventory.StockTransactionRepository,
	productRepo catalog.ProductRepository,
	profileRepo identity.TenantProfileRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockRepo:   stockRepo,
		productRepo: productRepo,
		profileRepo: profileRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockTransactionRepo returns the stock ledger repository.
func (s *NoOpTransactionScope) StockTransactionRepo() inventory.StockTransactionRepository {
	return s.stockRepo
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// TenantProfileRepo returns the tenant profile repository.
func (s *NoOpTransactionScope) TenantProfileRepo() identity.TenantProfileRepository {
	return s.profileRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
