package billing

import (
	"time"

	"github.com/fieldserve/backend/internal/domain/billing"
	"github.com/fieldserve/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest represents the request to create an invoice
type CreateInvoiceRequest struct {
	CustomerID uuid.UUID          `json:"customer_id" binding:"required"`
	VehicleID  *uuid.UUID         `json:"vehicle_id"`
	TaxExempt  bool               `json:"tax_exempt"`
	Notes      string             `json:"notes"`
	Lines      []LineItemRequest  `json:"lines" binding:"dive"`
}

// LineItemRequest represents one caller-settable invoice line. Amount and
// tax are derived server-side and never accepted from the caller.
type LineItemRequest struct {
	Type        string          `json:"type" binding:"required,oneof=product labor fee interest_adjustment"`
	Description string          `json:"description" binding:"required"`
	ProductID   *uuid.UUID      `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitRate    *float64        `json:"unit_rate"`
}

// toLineInput converts the request into the synchronizer's input
func (r LineItemRequest) toLineInput() LineInput {
	in := LineInput{
		Type:        billing.LineType(r.Type),
		Description: r.Description,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
	}
	if r.UnitRate != nil {
		rate := valueobject.NewMoneyUSDFromFloat(*r.UnitRate)
		in.UnitRate = &rate
	}
	return in
}

// ReturnProductRequest represents a product return against an invoice
type ReturnProductRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
}

// ReturnResponse reports a posted return and the cumulative returned
// quantity for the (invoice, product) pair
type ReturnResponse struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	ProductID     uuid.UUID `json:"product_id"`
	Quantity      int64     `json:"quantity"`
	TotalReturned int64     `json:"total_returned"`
}

// RecordPaymentRequest represents a settlement posting against an invoice
type RecordPaymentRequest struct {
	Kind      string  `json:"kind" binding:"required,oneof=payment credit"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
}

// LineItemResponse represents an invoice line in responses
type LineItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	Quantity    string     `json:"quantity"`
	UnitRate    string     `json:"unit_rate"`
	Amount      string     `json:"amount"`
	TaxAmount   string     `json:"tax_amount"`
}

// InvoiceResponse represents an invoice in responses
type InvoiceResponse struct {
	ID          uuid.UUID          `json:"id"`
	Number      string             `json:"number"`
	CustomerID  uuid.UUID          `json:"customer_id"`
	VehicleID   *uuid.UUID         `json:"vehicle_id,omitempty"`
	TaxExempt   bool               `json:"tax_exempt"`
	TotalAmount string             `json:"total_amount"`
	IssuedAt    time.Time          `json:"issued_at"`
	DueDate     time.Time          `json:"due_date"`
	Notes       string             `json:"notes,omitempty"`
	Lines       []LineItemResponse `json:"lines"`
}

// BalanceResponse carries the derived settlement view of an invoice
type BalanceResponse struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	TotalAmount   string    `json:"total_amount"`
	Settled       string    `json:"settled"`
	BalanceDue    string    `json:"balance_due"`
	PaymentStatus string    `json:"payment_status"`
}

// ToLineItemResponse converts a domain line to its response representation
func ToLineItemResponse(line *billing.InvoiceLineItem) LineItemResponse {
	return LineItemResponse{
		ID:          line.ID,
		Type:        line.Type.String(),
		Description: line.Description,
		ProductID:   line.ProductID,
		Quantity:    line.Quantity.String(),
		UnitRate:    line.UnitRate.Amount().StringFixed(2),
		Amount:      line.Amount.Amount().StringFixed(2),
		TaxAmount:   line.TaxAmount.Amount().StringFixed(2),
	}
}

// ToInvoiceResponse converts a domain invoice to its response representation
func ToInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	lines := make([]LineItemResponse, 0, len(invoice.Lines))
	for i := range invoice.Lines {
		lines = append(lines, ToLineItemResponse(&invoice.Lines[i]))
	}
	return InvoiceResponse{
		ID:          invoice.ID,
		Number:      invoice.Number,
		CustomerID:  invoice.CustomerID,
		VehicleID:   invoice.VehicleID,
		TaxExempt:   invoice.TaxExempt,
		TotalAmount: invoice.TotalAmount.Amount().StringFixed(2),
		IssuedAt:    invoice.IssuedAt,
		DueDate:     invoice.DueDate,
		Notes:       invoice.Notes,
		Lines:       lines,
	}
}
