package billing

import (
	"context"
	"sync"

	"github.com/fieldserve/backend/internal/domain/billing"
	"github.com/fieldserve/backend/internal/domain/catalog"
	"github.com/fieldserve/backend/internal/domain/identity"
	"github.com/fieldserve/backend/internal/domain/inventory"
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/fieldserve/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// In-memory repositories backing the NoOp transaction scope in tests.

type memInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]billing.Invoice
	lines    *memLineRepo
	seqs     map[uuid.UUID]int64
}

func newMemInvoiceRepo(lines *memLineRepo) *memInvoiceRepo {
	return &memInvoiceRepo{
		invoices: make(map[uuid.UUID]billing.Invoice),
		lines:    lines,
		seqs:     make(map[uuid.UUID]int64),
	}
}

func (r *memInvoiceRepo) FindByIDForTenant(_ context.Context, id, tenantID uuid.UUID) (*billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := inv
	return &copied, nil
}

func (r *memInvoiceRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && inv.Number == number {
			copied := inv
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memInvoiceRepo) FindByCustomer(_ context.Context, tenantID, customerID uuid.UUID) ([]billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []billing.Invoice
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && inv.CustomerID == customerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) Save(_ context.Context, invoice *billing.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *memInvoiceRepo) Update(_ context.Context, invoice *billing.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[invoice.ID]; !ok {
		return shared.ErrNotFound
	}
	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *memInvoiceRepo) Delete(_ context.Context, id, tenantID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(r.invoices, id)
	r.lines.deleteByInvoice(id)
	return nil
}

func (r *memInvoiceRepo) ExistsByNumber(_ context.Context, tenantID uuid.UUID, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && inv.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memInvoiceRepo) NextInvoiceNumber(_ context.Context, tenantID uuid.UUID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seqs[tenantID]++
	return billing.FormatInvoiceNumber(tenantID, r.seqs[tenantID]), nil
}

// memLineRepo keeps lines in insertion order, matching the creation-order
// listing of the real repository
type memLineRepo struct {
	mu    sync.Mutex
	lines []billing.InvoiceLineItem
}

func newMemLineRepo() *memLineRepo {
	return &memLineRepo{}
}

func (r *memLineRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.InvoiceLineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range r.lines {
		if line.ID == id {
			copied := line
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memLineRepo) FindByInvoice(_ context.Context, invoiceID uuid.UUID) ([]billing.InvoiceLineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []billing.InvoiceLineItem
	for _, line := range r.lines {
		if line.InvoiceID == invoiceID {
			out = append(out, line)
		}
	}
	return out, nil
}

func (r *memLineRepo) Save(_ context.Context, line *billing.InvoiceLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, *line)
	return nil
}

func (r *memLineRepo) Update(_ context.Context, line *billing.InvoiceLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.lines {
		if r.lines[i].ID == line.ID {
			r.lines[i] = *line
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memLineRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.lines {
		if r.lines[i].ID == id {
			r.lines = append(r.lines[:i], r.lines[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memLineRepo) deleteByInvoice(invoiceID uuid.UUID) {
	kept := r.lines[:0]
	for _, line := range r.lines {
		if line.InvoiceID != invoiceID {
			kept = append(kept, line)
		}
	}
	r.lines = kept
}

type memPaymentRepo struct {
	mu       sync.Mutex
	payments []billing.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{}
}

func (r *memPaymentRepo) Save(_ context.Context, payment *billing.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, *payment)
	return nil
}

func (r *memPaymentRepo) FindByInvoice(_ context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []billing.Payment
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) SumSettledByInvoice(_ context.Context, invoiceID uuid.UUID) (valueobject.Money, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := valueobject.ZeroUSD()
	for _, p := range r.payments {
		if p.InvoiceID != invoiceID {
			continue
		}
		var err error
		if total, err = total.Add(p.Amount); err != nil {
			return valueobject.Money{}, err
		}
	}
	return total, nil
}

type memStockRepo struct {
	mu      sync.Mutex
	entries []inventory.StockTransaction
	nextSeq int64
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{}
}

func (r *memStockRepo) Append(_ context.Context, tx *inventory.StockTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSeq++
	tx.Seq = r.nextSeq
	r.entries = append(r.entries, *tx)
	return nil
}

func (r *memStockRepo) LastAdjustment(_ context.Context, ownerID, productID uuid.UUID) (*inventory.StockTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.OwnerID == ownerID && e.ProductID == productID && e.Type == inventory.TransactionTypeAdjustment {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *memStockRepo) SumQuantityAfter(_ context.Context, ownerID, productID uuid.UUID, txType inventory.TransactionType, afterSeq int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, e := range r.entries {
		if e.OwnerID == ownerID && e.ProductID == productID && e.Type == txType && e.Seq > afterSeq {
			sum += e.Quantity
		}
	}
	return sum, nil
}

func (r *memStockRepo) SumQuantityByRemark(_ context.Context, ownerID, productID uuid.UUID, txType inventory.TransactionType, remark string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, e := range r.entries {
		if e.OwnerID == ownerID && e.ProductID == productID && e.Type == txType && e.Remark == remark {
			sum += e.Quantity
		}
	}
	return sum, nil
}

func (r *memStockRepo) FindByOwnerProduct(_ context.Context, ownerID, productID uuid.UUID) ([]inventory.StockTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.StockTransaction
	for _, e := range r.entries {
		if e.OwnerID == ownerID && e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memStockRepo) balance(ownerID, productID uuid.UUID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var balance int64
	for _, e := range r.entries {
		if e.OwnerID != ownerID || e.ProductID != productID {
			continue
		}
		switch e.Type {
		case inventory.TransactionTypeIn:
			balance += e.Quantity
		case inventory.TransactionTypeOut:
			balance -= e.Quantity
		case inventory.TransactionTypeAdjustment:
			balance = e.Quantity
		}
	}
	return balance
}

type memProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]catalog.Product)}
}

func (r *memProductRepo) add(product *catalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
}

func (r *memProductRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok || product.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := product
	return &copied, nil
}

func (r *memProductRepo) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, product := range r.products {
		if product.TenantID == tenantID && product.SKU == sku {
			copied := product
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.add(product)
	return nil
}

type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]identity.TenantProfile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: make(map[uuid.UUID]identity.TenantProfile)}
}

func (r *memProfileRepo) FindByTenant(_ context.Context, tenantID uuid.UUID) (*identity.TenantProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[tenantID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := profile
	return &copied, nil
}

func (r *memProfileRepo) Save(_ context.Context, profile *identity.TenantProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.TenantID] = *profile
	return nil
}

// testEnv bundles the in-memory repositories behind a NoOp scope
type testEnv struct {
	scope    *NoOpTransactionScope
	invoices *memInvoiceRepo
	lines    *memLineRepo
	payments *memPaymentRepo
	stock    *memStockRepo
	products *memProductRepo
	profiles *memProfileRepo
}

func newTestEnv() *testEnv {
	lines := newMemLineRepo()
	invoices := newMemInvoiceRepo(lines)
	payments := newMemPaymentRepo()
	stock := newMemStockRepo()
	products := newMemProductRepo()
	profiles := newMemProfileRepo()
	return &testEnv{
		scope:    NewNoOpTransactionScope(invoices, lines, payments, stock, products, profiles),
		invoices: invoices,
		lines:    lines,
		payments: payments,
		stock:    stock,
		products: products,
		profiles: profiles,
	}
}
