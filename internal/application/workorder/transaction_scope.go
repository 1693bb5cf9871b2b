package workorder

import (
	"context"

	appbilling "github.com/fieldserve/backend/internal/application/billing"
	"github.com/fieldserve/backend/internal/domain/partner"
	"github.com/fieldserve/backend/internal/domain/workorder"
)

// TransactionScope provides transactional access to everything the
// completion cascade touches. Steps 1 through 4 of a completion (status,
// invoice, line postings, maintenance tasks, back-link) run inside one
// Execute call and commit or roll back as a unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories widens the billing repositories with the work
// order side of the cascade, all bound to the same transaction
type TransactionalRepositories interface {
	appbilling.TransactionalRepositories
	// WorkOrderRepo returns the work order repository scoped to the current transaction
	WorkOrderRepo() workorder.WorkOrderRepository
	// MaintenanceTaskRepo returns the maintenance task repository scoped to the current transaction
	MaintenanceTaskRepo() workorder.MaintenanceTaskRepository
	// CustomerRepo returns the customer repository scoped to the current transaction
	CustomerRepo() partner.CustomerRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not
// required.
type NoOpTransactionScope struct {
	appbilling.TransactionalRepositories
	workOrderRepo   workorder.WorkOrderRepository
	maintenanceRepo workorder.MaintenanceTaskRepository
	customerRepo    partner.CustomerRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given
// billing repositories and work order repositories.
func NewNoOpTransactionScope(
	billingRepos appbilling.TransactionalRepositories,
	workOrderRepo workorder.WorkOrderRepository,
	maintenanceRepo workorder.MaintenanceTaskRepository,
	customerRepo partner.CustomerRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		TransactionalRepositories: billingRepos,
		workOrderRepo:             workOrderRepo,
		maintenanceRepo:           maintenanceRepo,
		customerRepo:              customerRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// WorkOrderRepo returns the work order repository.
func (s *NoOpTransactionScope) WorkOrderRepo() workorder.WorkOrderRepository {
	return s.workOrderRepo
}

// MaintenanceTaskRepo returns the maintenance task repository.
func (s *NoOpTransactionScope) MaintenanceTaskRepo() workorder.MaintenanceTaskRepository {
	return s.maintenanceRepo
}

// CustomerRepo returns the customer repository.
func (s *NoOpTransactionScope) CustomerRepo() partner.CustomerRepository {
	return s.customerRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
