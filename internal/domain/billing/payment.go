package billing

import (
	"time"

	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/fieldserve/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentKind distinguishes money received from credits applied
type PaymentKind string

const (
	// PaymentKindPayment is money received (gateway webhook or manual entry)
	PaymentKindPayment PaymentKind = "payment"
	// PaymentKindCredit is a credit applied against the balance
	PaymentKindCredit PaymentKind = "credit"
)

// String returns the string representation of PaymentKind
func (k PaymentKind) String() string {
	return string(k)
}

// IsValid returns true if the payment kind is valid
func (k PaymentKind) IsValid() bool {
	return k == PaymentKindPayment || k == PaymentKindCredit
}

// Payment is one settlement posting against an invoice. Postings arrive as
// simple "amount settled on invoice X" facts; gateway protocol handling
// happens upstream.
type Payment struct {
	shared.TenantAggregateRoot
	InvoiceID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	Kind       PaymentKind       `gorm:"type:varchar(20);not null"`
	Amount     valueobject.Money `gorm:"type:decimal(19,4)"`
	Method     string            `gorm:"type:varchar(50)"`
	Reference  string            `gorm:"type:varchar(100)"`
	ReceivedAt time.Time         `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a validated settlement posting
func NewPayment(tenantID, invoiceID uuid.UUID, kind PaymentKind, amount valueobject.Money, method, reference string, receivedAt time.Time) (*Payment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_KIND", "Invalid payment kind")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	payment := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceID:           invoiceID,
		Kind:                kind,
		Amount:              amount,
		Method:              method,
		Reference:           reference,
		ReceivedAt:          receivedAt,
	}
	payment.AddDomainEvent(NewPaymentPostedEvent(payment))
	return payment, nil
}
