package billing

import (
	"time"

	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/fieldserve/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentStatus is the settlement state derived from payments against the
// invoice total
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// settlementTolerance absorbs residue from rounding and gateway fees when
// deciding whether an invoice is fully paid. The band is inclusive: a
// remaining balance of exactly one cent still counts as paid.
var settlementTolerance = valueobject.NewMoneyUSDFromFloat(0.01)

// Invoice is the billing aggregate root. TotalAmount is derived from the
// lines and is never set directly by callers; every line mutation ends with
// RecalculateTotal. An invoice is deleted only as a whole, which also
// reverses its inventory effect.
type Invoice struct {
	shared.TenantAggregateRoot
	Number     string            `gorm:"type:varchar(100);not null;uniqueIndex"`
	CustomerID uuid.UUID         `gorm:"type:uuid;not null;index"`
	VehicleID  *uuid.UUID        `gorm:"type:uuid;index"`
	TaxExempt  bool              `gorm:"not null;default:false"`
	Lines      []InvoiceLineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	// TotalAmount == round(sum(line.Amount) + sum(line.TaxAmount), 2),
	// recomputed on every line mutation
	TotalAmount valueobject.Money `gorm:"type:decimal(19,4)"`
	IssuedAt    time.Time         `gorm:"type:timestamptz;not null"`
	DueDate     time.Time         `gorm:"type:timestamptz;not null"`
	Notes       string            `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an empty invoice with its number already allocated.
// Lines are attached afterwards through the line synchronizer.
func NewInvoice(tenantID, customerID uuid.UUID, number string, taxExempt bool, issuedAt, dueDate time.Time) (*Invoice, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if _, err := ParseInvoiceSequence(number); err != nil {
		return nil, err
	}
	if dueDate.Before(issuedAt) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before the issue date")
	}

	invoice := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		CustomerID:          customerID,
		TaxExempt:           taxExempt,
		TotalAmount:         valueobject.ZeroUSD(),
		IssuedAt:            issuedAt,
		DueDate:             dueDate,
	}
	invoice.AddDomainEvent(NewInvoiceCreatedEvent(invoice))
	return invoice, nil
}

// AttachVehicle links the invoice to the serviced vehicle
func (i *Invoice) AttachVehicle(vehicleID uuid.UUID) {
	if vehicleID == uuid.Nil {
		return
	}
	i.VehicleID = &vehicleID
	i.Touch()
}

// FindLine returns the line with the given ID, or nil
func (i *Invoice) FindLine(lineID uuid.UUID) *InvoiceLineItem {
	for idx := range i.Lines {
		if i.Lines[idx].ID == lineID {
			return &i.Lines[idx]
		}
	}
	return nil
}

// AttachLine adds a line to the aggregate. The caller recalculates the total
// once the line's tax is set.
func (i *Invoice) AttachLine(line *InvoiceLineItem) error {
	if line.InvoiceID != i.ID {
		return shared.NewDomainError("INVALID_LINE", "Line does not belong to this invoice")
	}
	i.Lines = append(i.Lines, *line)
	i.Touch()
	return nil
}

// DetachLine removes a line from the aggregate
func (i *Invoice) DetachLine(lineID uuid.UUID) error {
	for idx := range i.Lines {
		if i.Lines[idx].ID == lineID {
			i.Lines = append(i.Lines[:idx], i.Lines[idx+1:]...)
			i.Touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// RecalculateTotal re-derives TotalAmount from the current lines. Every
// write path that touches lines must end with this call so the total never
// drifts from its parts.
func (i *Invoice) RecalculateTotal() error {
	total := valueobject.ZeroUSD()
	for idx := range i.Lines {
		var err error
		if total, err = total.Add(i.Lines[idx].Amount); err != nil {
			return err
		}
		if total, err = total.Add(i.Lines[idx].TaxAmount); err != nil {
			return err
		}
	}
	i.TotalAmount = total.RoundCents()
	i.Touch()
	return nil
}

// BalanceDue is TotalAmount minus everything settled against the invoice
// (payments and applied credits)
func (i *Invoice) BalanceDue(settled valueobject.Money) (valueobject.Money, error) {
	return i.TotalAmount.Subtract(settled)
}

// PaymentStatusFor derives the settlement state from the settled amount.
// A balance within settlementTolerance, boundary included, is paid.
func (i *Invoice) PaymentStatusFor(settled valueobject.Money) (PaymentStatus, error) {
	balance, err := i.BalanceDue(settled)
	if err != nil {
		return "", err
	}
	within, err := balance.LessThan(settlementTolerance)
	if err != nil {
		return "", err
	}
	switch {
	case within || balance.Equals(settlementTolerance):
		return PaymentStatusPaid, nil
	case settled.IsPositive():
		return PaymentStatusPartial, nil
	default:
		return PaymentStatusUnpaid, nil
	}
}

// IsOverdue reports whether the invoice is past due at the given time
func (i *Invoice) IsOverdue(now time.Time, settled valueobject.Money) (bool, error) {
	status, err := i.PaymentStatusFor(settled)
	if err != nil {
		return false, err
	}
	return status != PaymentStatusPaid && now.After(i.DueDate), nil
}

// MarkDeleted records the deletion event before the row and its lines are
// removed and their inventory effect reversed
func (i *Invoice) MarkDeleted() {
	i.AddDomainEvent(NewInvoiceDeletedEvent(i))
}
