package persistence

import (
	"context"

	appbilling "github.com/fieldserve/backend/internal/application/billing"
	"github.com/fieldserve/backend/internal/domain/billing"
	"github.com/fieldserve/backend/internal/domain/catalog"
	"github.com/fieldserve/backend/internal/domain/identity"
	"github.com/fieldserve/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormBillingTransactionScope implements the billing TransactionScope using
// GORM transactions. Line writes, ledger postings, and the invoice total
// recompute commit or roll back as one unit.
type GormBillingTransactionScope struct {
	db *gorm.DB
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope
func NewGormBillingTransactionScope(db *gorm.DB) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormBillingRepositories{tx: tx})
	})
}

// gormBillingRepositories binds every billing repository to one transaction
type gormBillingRepositories struct {
	tx *gorm.DB
}

// InvoiceRepo returns the invoice repository scoped to the current transaction
func (r *gormBillingRepositories) InvoiceRepo() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// LineRepo returns the line item repository scoped to the current transaction
func (r *gormBillingRepositories) LineRepo() billing.LineItemRepository {
	return NewGormLineItemRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction
func (r *gormBillingRepositories) PaymentRepo() billing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// StockTransactionRepo returns the stock ledger repository scoped to the current transaction
func (r *gormBillingRepositories) StockTransactionRepo() inventory.StockTransactionRepository {
	return NewGormStockTransactionRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormBillingRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// TenantProfileRepo returns the tenant profile repository scoped to the current transaction
func (r *gormBillingRepositories) TenantProfileRepo() identity.TenantProfileRepository {
	return NewGormTenantProfileRepository(r.tx)
}

var _ appbilling.TransactionScope = (*GormBillingTransactionScope)(nil)
var _ appbilling.TransactionalRepositories = (*gormBillingRepositories)(nil)
