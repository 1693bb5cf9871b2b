package catalog

import (
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable part or supply. A product belongs to one tenant,
// but its on-hand balance is tracked per stock owner (the tenant itself, or
// the connected group's shared pool).
type Product struct {
	shared.TenantAggregateRoot
	SKU  string `gorm:"type:varchar(50);not null;index:idx_products_tenant_sku,unique,priority:2"`
	Name string `gorm:"type:varchar(255);not null"`
	// UnitPrice is the default selling rate for invoice lines. A product
	// without a positive unit price cannot be priced on a work order.
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	// InventoryTracked products participate in the stock ledger; untracked
	// products (shop supplies, misc fees) are no-ops for inventory.
	InventoryTracked bool  `gorm:"not null;default:true"`
	ReorderLevel     int64 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a product with validated fields
func NewProduct(tenantID uuid.UUID, sku, name string, unitPrice decimal.Decimal) (*Product, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 sku,
		Name:                name,
		UnitPrice:           unitPrice,
		InventoryTracked:    true,
	}, nil
}

// HasPricing reports whether the product carries enough configuration to be
// priced on an invoice line. Work-order completion refuses to invoice a
// product line that fails this check.
func (p *Product) HasPricing() bool {
	return p.UnitPrice.IsPositive()
}

// SetReorderLevel configures the low-stock threshold
func (p *Product) SetReorderLevel(level int64) error {
	if level < 0 {
		return shared.NewDomainError("INVALID_REORDER_LEVEL", "Reorder level cannot be negative")
	}
	p.ReorderLevel = level
	p.Touch()
	return nil
}

// IsBelowReorderLevel reports whether the given on-hand balance has fallen
// below the configured threshold
func (p *Product) IsBelowReorderLevel(onHand int64) bool {
	return p.ReorderLevel > 0 && onHand < p.ReorderLevel
}
