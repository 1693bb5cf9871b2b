package partner

import (
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Customer is reference data consumed by the billing core: the invoicing
// subsystem only reads it, customer CRUD lives elsewhere.
type Customer struct {
	shared.TenantAggregateRoot
	Name      string `gorm:"type:varchar(255);not null"`
	Email     string `gorm:"type:varchar(255)"`
	Phone     string `gorm:"type:varchar(50)"`
	TaxExempt bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a customer record
func NewCustomer(tenantID uuid.UUID, name string) (*Customer, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
	}, nil
}
