package identity

import (
	"context"
	"time"

	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultPaymentTermDays is used when a tenant has not configured payment terms
const DefaultPaymentTermDays = 30

// TenantProfile holds the billing and inventory configuration for one tenant:
// tax jurisdiction, optional custom tax rate, payment terms, and the optional
// shared stock pool for connected business groups.
type TenantProfile struct {
	shared.BaseAggregateRoot
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	BusinessName     string          `gorm:"type:varchar(255);not null"`
	JurisdictionCode string          `gorm:"type:varchar(10);not null"`
	UseCustomTaxRate bool            `gorm:"not null;default:false"`
	CustomTaxRate    decimal.Decimal `gorm:"type:decimal(8,5);not null;default:0"`
	PaymentTermDays  int             `gorm:"not null"`
	TaxInclusive     bool            `gorm:"not null;default:false"`
	// StockPoolID, when set, designates the connected group's shared stock
	// pool: every ledger posting for this tenant's products lands there.
	StockPoolID *uuid.UUID `gorm:"type:uuid;index"`
	// InvoiceSeqOverride, when set, is the sequence the next invoice number
	// is allocated from. The allocator consumes it on use.
	InvoiceSeqOverride *int64 `gorm:"type:bigint"`
}

// TableName returns the table name for GORM
func (TenantProfile) TableName() string {
	return "tenant_profiles"
}

// NewTenantProfile creates a tenant profile with validated configuration
func NewTenantProfile(tenantID uuid.UUID, businessName, jurisdictionCode string) (*TenantProfile, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if businessName == "" {
		return nil, shared.NewDomainError("INVALID_BUSINESS_NAME", "Business name cannot be empty")
	}
	if jurisdictionCode == "" {
		return nil, shared.NewDomainError("INVALID_JURISDICTION", "Jurisdiction code cannot be empty")
	}

	return &TenantProfile{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		BusinessName:      businessName,
		JurisdictionCode:  jurisdictionCode,
		PaymentTermDays:   DefaultPaymentTermDays,
	}, nil
}

// SetCustomTaxRate opts the tenant into a single custom rate that overrides
// the jurisdiction table
func (p *TenantProfile) SetCustomTaxRate(taxRate decimal.Decimal) error {
	if taxRate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Custom tax rate cannot be negative")
	}
	p.UseCustomTaxRate = true
	p.CustomTaxRate = taxRate
	p.Touch()
	return nil
}

// ClearCustomTaxRate reverts the tenant to the jurisdiction table
func (p *TenantProfile) ClearCustomTaxRate() {
	p.UseCustomTaxRate = false
	p.CustomTaxRate = decimal.Zero
	p.Touch()
}

// EffectiveCustomRate returns the custom rate when the tenant has opted in,
// nil otherwise
func (p *TenantProfile) EffectiveCustomRate() *decimal.Decimal {
	if !p.UseCustomTaxRate {
		return nil
	}
	taxRate := p.CustomTaxRate
	return &taxRate
}

// SetPaymentTermDays configures how many days after issue an invoice is due
func (p *TenantProfile) SetPaymentTermDays(days int) error {
	if days < 0 {
		return shared.NewDomainError("INVALID_PAYMENT_TERM", "Payment term days cannot be negative")
	}
	p.PaymentTermDays = days
	p.Touch()
	return nil
}

// DueDateFrom computes an invoice due date from its issue date
func (p *TenantProfile) DueDateFrom(issuedAt time.Time) time.Time {
	return issuedAt.AddDate(0, 0, p.PaymentTermDays)
}

// OverrideNextInvoiceSequence forces the next invoice number to be allocated
// from the given sequence. The allocator clears the override once honored.
func (p *TenantProfile) OverrideNextInvoiceSequence(seq int64) error {
	if seq <= 0 {
		return shared.NewDomainError("INVALID_SEQUENCE", "Invoice sequence override must be positive")
	}
	p.InvoiceSeqOverride = &seq
	p.Touch()
	return nil
}

// ClearInvoiceSequenceOverride removes any pending sequence override
func (p *TenantProfile) ClearInvoiceSequenceOverride() {
	p.InvoiceSeqOverride = nil
	p.Touch()
}

// JoinStockPool connects this tenant to a shared stock pool
func (p *TenantProfile) JoinStockPool(poolTenantID uuid.UUID) error {
	if poolTenantID == uuid.Nil {
		return shared.NewDomainError("INVALID_STOCK_POOL", "Stock pool tenant ID cannot be empty")
	}
	p.StockPoolID = &poolTenantID
	p.Touch()
	return nil
}

// LeaveStockPool disconnects this tenant from any shared stock pool
func (p *TenantProfile) LeaveStockPool() {
	p.StockPoolID = nil
	p.Touch()
}

// TenantProfileRepository provides access to tenant profiles
type TenantProfileRepository interface {
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*TenantProfile, error)
	Save(ctx context.Context, profile *TenantProfile) error
}
