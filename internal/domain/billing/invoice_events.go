package billing

import (
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event type constants for the billing context
const (
	EventTypeInvoiceCreated = "billing.invoice.created"
	EventTypeInvoiceDeleted = "billing.invoice.deleted"
	EventTypePaymentPosted  = "billing.payment.posted"
)

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	Number     string    `json:"number"`
	CustomerID uuid.UUID `json:"customer_id"`
}

// NewInvoiceCreatedEvent creates a new invoice created event
func NewInvoiceCreatedEvent(invoice *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, "Invoice", invoice.ID, invoice.TenantID),
		Number:          invoice.Number,
		CustomerID:      invoice.CustomerID,
	}
}

// InvoiceDeletedEvent is raised when an invoice is deleted as a whole
type InvoiceDeletedEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
}

// NewInvoiceDeletedEvent creates a new invoice deleted event
func NewInvoiceDeletedEvent(invoice *Invoice) *InvoiceDeletedEvent {
	return &InvoiceDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceDeleted, "Invoice", invoice.ID, invoice.TenantID),
		Number:          invoice.Number,
	}
}

// PaymentPostedEvent is raised when a payment or credit lands on an invoice
type PaymentPostedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
	Kind      string    `json:"kind"`
	Amount    string    `json:"amount"`
}

// NewPaymentPostedEvent creates a new payment posted event
func NewPaymentPostedEvent(payment *Payment) *PaymentPostedEvent {
	return &PaymentPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentPosted, "Payment", payment.ID, payment.TenantID),
		InvoiceID:       payment.InvoiceID,
		Kind:            payment.Kind.String(),
		Amount:          payment.Amount.Amount().String(),
	}
}
