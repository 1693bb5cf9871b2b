package billing

import (
	"context"

	"github.com/fieldserve/backend/internal/domain/billing"
	"github.com/fieldserve/backend/internal/domain/catalog"
	"github.com/fieldserve/backend/internal/domain/identity"
	"github.com/fieldserve/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the billing repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to every repository a line
// synchronization touches, all bound to the same transaction. Ledger
// postings, line writes, and the invoice total recompute must share one
// atomic scope so a reader never observes a total that disagrees with the
// ledger.
type TransactionalRepositories interface {
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// LineRepo returns the line item repository scoped to the current transaction
	LineRepo() billing.LineItemRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() billing.PaymentRepository
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
	invoiceRepo billing.InvoiceRepository
	lineRepo    billing.LineItemRepository
	paymentRepo billing.PaymentRepository
	stockRepo   inventory.StockTransactionRepository
	productRepo catalog.ProductRepository
	profileRepo identity.TenantProfileRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo billing.InvoiceRepository,
	lineRepo billing.LineItemRepository,
	paymentRepo billing.PaymentRepository,
	stockRepo inventory.StockTransactionRepository,
	productRepo catalog.ProductRepository,
	profileRepo identity.TenantProfileRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo: invoiceRepo,
		lineRepo:    lineRepo,
		paymentRepo: paymentRepo,
		stockRepo:   stockRepo,
		productRepo: productRepo,
		profileRepo: profileRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

// LineRepo returns the line item repository.
func (s *NoOpTransactionScope) LineRepo() billing.LineItemRepository {
	return s.lineRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository {
	return s.paymentRepo
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
