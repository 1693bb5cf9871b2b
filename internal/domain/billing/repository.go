package billing

import (
	"context"

	"github.com/fieldserve/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// InvoiceRepository defines the persistence contract for invoices. Saving
// and deleting cascade to the invoice's lines.
type InvoiceRepository interface {
	FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Invoice, error)
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	Update(ctx context.Context, invoice *Invoice) error
	// Delete removes the invoice and its lines as a whole
	Delete(ctx context.Context, id, tenantID uuid.UUID) error
	// ExistsByNumber probes for a number collision before committing an
	// allocated invoice number
	ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error)
	// NextInvoiceNumber allocates the next tenant-unique invoice number.
	// Implementations must be safe under concurrent writers on the same
	// tenant: two concurrent calls never return the same number.
	NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// LineItemRepository gives line-level access for synchronization paths that
// mutate single lines without loading every sibling
type LineItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InvoiceLineItem, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]InvoiceLineItem, error)
	Save(ctx context.Context, line *InvoiceLineItem) error
	Update(ctx context.Context, line *InvoiceLineItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository defines the persistence contract for settlement postings
type PaymentRepository interface {
	Save(ctx context.Context, payment *Payment) error
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
	// SumSettledByInvoice totals payments plus applied credits for the
	// balance-due computation
	SumSettledByInvoice(ctx context.Context, invoiceID uuid.UUID) (valueobject.Money, error)
}
