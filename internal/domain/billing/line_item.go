package billing

import (
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/fieldserve/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineType classifies an invoice line. The type is carried as data on the
// line, never inferred from the description text.
type LineType string

const (
	// LineTypeProduct is a part or stocked item; the only type that touches
	// the inventory ledger
	LineTypeProduct LineType = "product"
	// LineTypeLabor is billed work time
	LineTypeLabor LineType = "labor"
	// LineTypeFee is a flat charge (shop supplies, disposal)
	LineTypeFee LineType = "fee"
	// LineTypeInterestAdjustment is a finance charge on an overdue balance.
	// It joins the pre-tax subtotal but is never taxed.
	LineTypeInterestAdjustment LineType = "interest_adjustment"
)

// String returns the string representation of LineType
func (t LineType) String() string {
	return string(t)
}

// IsValid returns true if the line type is valid
func (t LineType) IsValid() bool {
	switch t {
	case LineTypeProduct, LineTypeLabor, LineTypeFee, LineTypeInterestAdjustment:
		return true
	}
	return false
}

// TaxExempt returns true for line types that never accrue tax
func (t LineType) TaxExempt() bool {
	return t == LineTypeInterestAdjustment
}

// TracksInventory returns true for line types whose quantities post to the
// stock ledger
func (t LineType) TracksInventory() bool {
	return t == LineTypeProduct
}

// InvoiceLineItem is one line on an invoice. Amount and TaxAmount are
// computed fields: callers supply quantity and unit rate, the line derives
// the rest and the invoice total is in turn derived from the lines.
type InvoiceLineItem struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID `gorm:"type:uuid;index"`
	Type        LineType   `gorm:"type:varchar(30);not null"`
	Description string     `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal
	UnitRate    valueobject.Money `gorm:"type:decimal(19,4)"`
	Amount      valueobject.Money `gorm:"type:decimal(19,4)"`
	TaxAmount   valueobject.Money `gorm:"type:decimal(19,4)"`
}

// TableName returns the table name for GORM
func (InvoiceLineItem) TableName() string {
	return "invoice_line_items"
}

// NewInvoiceLineItem creates a validated line with its amount derived from
// quantity and rate. TaxAmount starts at zero; the synchronizer sets it from
// the tax engine before the line is persisted.
func NewInvoiceLineItem(invoiceID uuid.UUID, lineType LineType, description string, productID *uuid.UUID, quantity decimal.Decimal, unitRate valueobject.Money) (*InvoiceLineItem, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !lineType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LINE_TYPE", "Invalid invoice line type")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Line description cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity cannot be negative")
	}
	if lineType.TracksInventory() {
		if productID == nil || *productID == uuid.Nil {
			return nil, shared.NewDomainError("MISSING_PRODUCT", "Product lines must reference a product")
		}
		if !quantity.IsInteger() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Product line quantity must be a whole number")
		}
	}

	line := &InvoiceLineItem{
		BaseEntity:  shared.NewBaseEntity(),
		InvoiceID:   invoiceID,
		ProductID:   productID,
		Type:        lineType,
		Description: description,
		Quantity:    quantity,
		UnitRate:    unitRate,
		TaxAmount:   valueobject.ZeroUSD(),
	}
	line.recomputeAmount()
	return line, nil
}

// Reprice replaces quantity and unit rate and re-derives the amount. Product
// and type never change on an existing line through this path.
func (l *InvoiceLineItem) Reprice(quantity decimal.Decimal, unitRate valueobject.Money) error {
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Line quantity cannot be negative")
	}
	if l.Type.TracksInventory() && !quantity.IsInteger() {
		return shared.NewDomainError("INVALID_QUANTITY", "Product line quantity must be a whole number")
	}
	l.Quantity = quantity
	l.UnitRate = unitRate
	l.recomputeAmount()
	l.Touch()
	return nil
}

// SetTaxAmount records the tax computed for this line
func (l *InvoiceLineItem) SetTaxAmount(tax valueobject.Money) {
	l.TaxAmount = tax.RoundCents()
	l.Touch()
}

// SetTaxation records the taxable base and tax together. In tax-inclusive
// mode the entered amount already contains the tax, so the base replaces the
// raw qty*rate amount and base + tax reproduces it exactly.
func (l *InvoiceLineItem) SetTaxation(base, tax valueobject.Money) {
	l.Amount = base.RoundCents()
	l.TaxAmount = tax.RoundCents()
	l.Touch()
}

// LedgerQuantity is the whole-unit quantity a product line posts to the
// stock ledger. Zero for non-product lines.
func (l *InvoiceLineItem) LedgerQuantity() int64 {
	if !l.Type.TracksInventory() {
		return 0
	}
	return l.Quantity.IntPart()
}

// recomputeAmount derives amount = round(qty * rate, 2)
func (l *InvoiceLineItem) recomputeAmount() {
	l.Amount = l.UnitRate.Multiply(l.Quantity).RoundCents()
}
