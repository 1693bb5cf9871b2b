package billing

import (
	"context"
	"fmt"

	"github.com/fieldserve/backend/internal/domain/billing"
	"github.com/fieldserve/backend/internal/domain/catalog"
	"github.com/fieldserve/backend/internal/domain/identity"
	"github.com/fieldserve/backend/internal/domain/inventory"
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/fieldserve/backend/internal/domain/shared/valueobject"
	"github.com/fieldserve/backend/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger posting remarks. The remark is the idempotency key for derived
// postings, so these shapes are load-bearing.
func saleRemark(invoiceNumber string) string {
	return fmt.Sprintf("sold with invoice %s", invoiceNumber)
}

func reversalRemark(lineID uuid.UUID, invoiceNumber string) string {
	return fmt.Sprintf("reversed line %s of invoice %s", lineID, invoiceNumber)
}

func deletionRemark(invoiceNumber string) string {
	return fmt.Sprintf("deletion reversal for invoice %s", invoiceNumber)
}

func returnRemark(invoiceNumber string) string {
	return fmt.Sprintf("returned against invoice %s", invoiceNumber)
}

// LineInput carries the caller-settable fields of an invoice line. Amount
// and tax are always derived, never accepted from the caller.
type LineInput struct {
	Type        billing.LineType
	Description string
	ProductID   *uuid.UUID
	Quantity    decimal.Decimal
	// UnitRate, when nil, falls back to the product's configured unit price
	UnitRate *valueobject.Money
}

// LineSynchronizer keeps invoice lines, the stock ledger, and the invoice
// total in lock-step. It is constructed per unit of work over repositories
// bound to one transaction; each mutation leaves the ledger consistent with
// the current line state and ends by re-deriving the invoice total.
//
// Updates take the simple path on purpose: the previous posting is reversed
// in full and the new quantity posted in full. No delta math, nothing to
// double-count.
type LineSynchronizer struct {
	repos  TransactionalRepositories
	engine *tax.Engine
	ledger *inventory.Ledger
}

// NewLineSynchronizer creates a synchronizer over the given transactional
// repositories
func NewLineSynchronizer(repos TransactionalRepositories, engine *tax.Engine) *LineSynchronizer {
	return &LineSynchronizer{
		repos:  repos,
		engine: engine,
		ledger: inventory.NewLedger(repos.StockTransactionRepo()),
	}
}

// CreateLine adds a new line to the invoice: validates pricing, computes
// tax, posts the OUT for product lines, and re-derives the invoice total.
func (s *LineSynchronizer) CreateLine(ctx context.Context, invoice *billing.Invoice, in LineInput) (*billing.InvoiceLineItem, error) {
	product, unitRate, err := s.resolvePricing(ctx, invoice.TenantID, uuid.Nil, in)
	if err != nil {
		return nil, err
	}

	line, err := billing.NewInvoiceLineItem(invoice.ID, in.Type, in.Description, in.ProductID, in.Quantity, unitRate)
	if err != nil {
		return nil, err
	}

	profile, err := s.repos.TenantProfileRepo().FindByTenant(ctx, invoice.TenantID)
	if err != nil {
		return nil, err
	}
	if err := s.applyTax(invoice, line, profile); err != nil {
		return nil, err
	}

	// Untracked products are billed but never touch the ledger.
	if qty := line.LedgerQuantity(); qty > 0 && product.InventoryTracked {
		owner := inventory.ResolveStockOwner(profile, product)
		if err := s.ledger.PostOut(ctx, owner, product.ID, qty, saleRemark(invoice.Number)); err != nil {
			return nil, err
		}
	}

	if err := s.repos.LineRepo().Save(ctx, line); err != nil {
		return nil, err
	}
	if err := s.refreshTotal(ctx, invoice); err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateLine applies new (product, quantity, rate) values to an existing
// line. The previously persisted posting is compared against the new state:
// reverse the old in full, post the new in full, then re-derive the total.
func (s *LineSynchronizer) UpdateLine(ctx context.Context, invoice *billing.Invoice, lineID uuid.UUID, in LineInput) (*billing.InvoiceLineItem, error) {
	previous, err := s.repos.LineRepo().FindByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if previous.InvoiceID != invoice.ID {
		return nil, shared.ErrNotFound
	}
	if in.Type != previous.Type {
		return nil, NewLineValidationError(lineID, in.ProductID, "line type cannot change after creation")
	}

	profile, err := s.repos.TenantProfileRepo().FindByTenant(ctx, invoice.TenantID)
	if err != nil {
		return nil, err
	}

	if err := s.reverseLine(ctx, profile, previous, reversalRemark(previous.ID, invoice.Number)); err != nil {
		return nil, err
	}

	product, unitRate, err := s.resolvePricing(ctx, invoice.TenantID, lineID, in)
	if err != nil {
		return nil, err
	}

	previous.ProductID = in.ProductID
	previous.Description = in.Description
	if err := previous.Reprice(in.Quantity, unitRate); err != nil {
		return nil, err
	}
	if err := s.applyTax(invoice, previous, profile); err != nil {
		return nil, err
	}

	if qty := previous.LedgerQuantity(); qty > 0 && product.InventoryTracked {
		owner := inventory.ResolveStockOwner(profile, product)
		if err := s.ledger.PostOut(ctx, owner, product.ID, qty, saleRemark(invoice.Number)); err != nil {
			return nil, err
		}
	}

	if err := s.repos.LineRepo().Update(ctx, previous); err != nil {
		return nil, err
	}
	if err := s.refreshTotal(ctx, invoice); err != nil {
		return nil, err
	}
	return previous, nil
}

// DeleteLine removes a line, reversing its last-known posting with an IN
// entry before re-deriving the total
func (s *LineSynchronizer) DeleteLine(ctx context.Context, invoice *billing.Invoice, lineID uuid.UUID) error {
	line, err := s.repos.LineRepo().FindByID(ctx, lineID)
	if err != nil {
		return err
	}
	if line.InvoiceID != invoice.ID {
		return shared.ErrNotFound
	}

	profile, err := s.repos.TenantProfileRepo().FindByTenant(ctx, invoice.TenantID)
	if err != nil {
		return err
	}
	if err := s.reverseLine(ctx, profile, line, deletionRemark(invoice.Number)); err != nil {
		return err
	}
	if err := s.repos.LineRepo().Delete(ctx, lineID); err != nil {
		return err
	}
	return s.refreshTotal(ctx, invoice)
}

// ReverseAllLines undoes the inventory effect of every product line. Called
// when an invoice is deleted as a whole; the cascade removes the line rows.
func (s *LineSynchronizer) ReverseAllLines(ctx context.Context, invoice *billing.Invoice) error {
	lines, err := s.repos.LineRepo().FindByInvoice(ctx, invoice.ID)
	if err != nil {
		return err
	}
	profile, err := s.repos.TenantProfileRepo().FindByTenant(ctx, invoice.TenantID)
	if err != nil {
		return err
	}
	for i := range lines {
		if err := s.reverseLine(ctx, profile, &lines[i], deletionRemark(invoice.Number)); err != nil {
			return err
		}
	}
	return nil
}

// Resync is the backfill path: it re-derives the invoice total from the
// persisted lines and tops up any missing sale postings, keyed by the sale
// remark so re-running never double-posts.
func (s *LineSynchronizer) Resync(ctx context.Context, invoice *billing.Invoice) error {
	lines, err := s.repos.LineRepo().FindByInvoice(ctx, invoice.ID)
	if err != nil {
		return err
	}
	profile, err := s.repos.TenantProfileRepo().FindByTenant(ctx, invoice.TenantID)
	if err != nil {
		return err
	}

	// expected sold quantity per product across the invoice's lines
	expected := make(map[uuid.UUID]int64)
	for i := range lines {
		if qty := lines[i].LedgerQuantity(); qty > 0 {
			expected[*lines[i].ProductID] += qty
		}
	}
	for productID, qty := range expected {
		product, err := s.repos.ProductRepo().FindByIDForTenant(ctx, invoice.TenantID, productID)
		if err != nil {
			return err
		}
		if !product.InventoryTracked {
			continue
		}
		owner := inventory.ResolveStockOwner(profile, product)
		if err := s.ledger.EnsurePosted(ctx, owner, productID, inventory.TransactionTypeOut, qty, saleRemark(invoice.Number)); err != nil {
			return err
		}
	}

	return s.refreshTotal(ctx, invoice)
}

// ReturnProduct restocks goods a customer brings back against an invoice.
// The cumulative returned quantity for (invoice, product) can never exceed
// what the invoice's lines sold; postings are keyed by the return remark so
// the cap holds across any number of partial returns. Returns the new
// cumulative returned quantity.
func (s *LineSynchronizer) ReturnProduct(ctx context.Context, invoice *billing.Invoice, productID uuid.UUID, quantity int64) (int64, error) {
	if quantity <= 0 {
		return 0, NewLineValidationError(uuid.Nil, &productID, "return quantity must be positive")
	}
	product, err := s.repos.ProductRepo().FindByIDForTenant(ctx, invoice.TenantID, productID)
	if err != nil {
		return 0, err
	}
	if !product.InventoryTracked {
		return 0, NewLineValidationError(uuid.Nil, &productID,
			fmt.Sprintf("%q is not inventory tracked, nothing to restock", product.Name))
	}

	lines, err := s.repos.LineRepo().FindByInvoice(ctx, invoice.ID)
	if err != nil {
		return 0, err
	}
	var sold int64
	for i := range lines {
		if lines[i].ProductID != nil && *lines[i].ProductID == productID {
			sold += lines[i].LedgerQuantity()
		}
	}

	profile, err := s.repos.TenantProfileRepo().FindByTenant(ctx, invoice.TenantID)
	if err != nil {
		return 0, err
	}
	owner := inventory.ResolveStockOwner(profile, product)
	returned, err := s.repos.StockTransactionRepo().SumQuantityByRemark(ctx, owner, productID, inventory.TransactionTypeIn, returnRemark(invoice.Number))
	if err != nil {
		return 0, err
	}
	if returned+quantity > sold {
		return 0, shared.NewDomainError(shared.ErrOverReturn.Code,
			fmt.Sprintf("cannot return %d of %q: invoice %s sold %d and %d already returned",
				quantity, product.Name, invoice.Number, sold, returned))
	}

	if err := s.ledger.PostIn(ctx, owner, productID, quantity, returnRemark(invoice.Number)); err != nil {
		return 0, err
	}
	return returned + quantity, nil
}

// reverseLine posts the IN that undoes a product line's last-known
// (product, quantity). Non-product lines and untracked products have no
// ledger effect, so there is nothing to undo.
func (s *LineSynchronizer) reverseLine(ctx context.Context, profile *identity.TenantProfile, line *billing.InvoiceLineItem, remark string) error {
	qty := line.LedgerQuantity()
	if qty == 0 {
		return nil
	}
	product, err := s.repos.ProductRepo().FindByIDForTenant(ctx, profile.TenantID, *line.ProductID)
	if err != nil {
		return err
	}
	if !product.InventoryTracked {
		return nil
	}
	owner := inventory.ResolveStockOwner(profile, product)
	return s.ledger.PostIn(ctx, owner, product.ID, qty, remark)
}

// resolvePricing loads the referenced product and settles the unit rate.
// A product line whose product cannot price the sale aborts with a typed
// validation error naming the line and product.
func (s *LineSynchronizer) resolvePricing(ctx context.Context, tenantID uuid.UUID, lineID uuid.UUID, in LineInput) (*catalog.Product, valueobject.Money, error) {
	if !in.Type.TracksInventory() {
		if in.UnitRate == nil {
			return nil, valueobject.Money{}, NewLineValidationError(lineID, nil, "a unit rate is required for non-product lines")
		}
		return nil, *in.UnitRate, nil
	}

	if in.ProductID == nil || *in.ProductID == uuid.Nil {
		return nil, valueobject.Money{}, NewLineValidationError(lineID, nil, "product lines must reference a product")
	}
	product, err := s.repos.ProductRepo().FindByIDForTenant(ctx, tenantID, *in.ProductID)
	if err != nil {
		return nil, valueobject.Money{}, err
	}

	rate := valueobject.NewMoneyUSD(product.UnitPrice)
	if in.UnitRate != nil {
		rate = *in.UnitRate
	} else if !product.HasPricing() {
		return nil, valueobject.Money{}, NewLineValidationError(lineID, in.ProductID,
			fmt.Sprintf("insufficient configuration to price %q", product.Name))
	}
	return product, rate, nil
}

// applyTax computes and records the line's taxable base and tax from the
// tenant's jurisdiction configuration
func (s *LineSynchronizer) applyTax(invoice *billing.Invoice, line *billing.InvoiceLineItem, profile *identity.TenantProfile) error {
	result, err := s.engine.Compute(tax.Input{
		Amount:           line.Amount.Amount(),
		JurisdictionCode: profile.JurisdictionCode,
		Inclusive:        profile.TaxInclusive,
		Exempt:           invoice.TaxExempt || line.Type.TaxExempt(),
		CustomRate:       profile.EffectiveCustomRate(),
	})
	if err != nil {
		return err
	}
	line.SetTaxation(valueobject.NewMoneyUSD(result.TaxableBase), valueobject.NewMoneyUSD(result.TotalTax))
	return nil
}

// refreshTotal reloads the persisted lines into the aggregate and re-derives
// TotalAmount. Every mutation path funnels through here so the total never
// drifts from the sum of its lines.
func (s *LineSynchronizer) refreshTotal(ctx context.Context, invoice *billing.Invoice) error {
	lines, err := s.repos.LineRepo().FindByInvoice(ctx, invoice.ID)
	if err != nil {
		return err
	}
	invoice.Lines = lines
	if err := invoice.RecalculateTotal(); err != nil {
		return err
	}
	return s.repos.InvoiceRepo().Update(ctx, invoice)
}
