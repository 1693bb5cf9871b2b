package persistence

import (
	"context"

	appworkorder "github.com/fieldserve/backend/internal/application/workorder"
	"github.com/fieldserve/backend/internal/domain/partner"
	"github.com/fieldserve/backend/internal/domain/workorder"
	"gorm.io/gorm"
)

// GormWorkOrderTransactionScope implements the work order TransactionScope
// using GORM transactions. The completion cascade runs entirely inside one
// Execute call: status change, invoice creation, ledger postings, task
// closure, and the invoice back-link commit or roll back together.
type GormWorkOrderTransactionScope struct {
	db *gorm.DB
}

// NewGormWorkOrderTransactionScope creates a new GormWorkOrderTransactionScope
func NewGormWorkOrderTransactionScope(db *gorm.DB) *GormWorkOrderTransactionScope {
	return &GormWorkOrderTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormWorkOrderTransactionScope) Execute(ctx context.Context, fn func(repos appworkorder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormWorkOrderRepositories{
			gormBillingRepositories: gormBillingRepositories{tx: tx},
		})
	})
}

// gormWorkOrderRepositories widens the billing repositories with the work
// order side of the cascade, all on the same transaction
type gormWorkOrderRepositories struct {
	gormBillingRepositories
}

// WorkOrderRepo returns the work order repository scoped to the current transaction
func (r *gormWorkOrderRepositories) WorkOrderRepo() workorder.WorkOrderRepository {
	return NewGormWorkOrderRepository(r.tx)
}

// MaintenanceTaskRepo returns the maintenance task repository scoped to the current transaction
func (r *gormWorkOrderRepositories) MaintenanceTaskRepo() workorder.MaintenanceTaskRepository {
	return NewGormMaintenanceTaskRepository(r.tx)
}

// CustomerRepo returns the customer repository scoped to the current transaction
func (r *gormWorkOrderRepositories) CustomerRepo() partner.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

var _ appworkorder.TransactionScope = (*GormWorkOrderTransactionScope)(nil)
var _ appworkorder.TransactionalRepositories = (*gormWorkOrderRepositories)(nil)
