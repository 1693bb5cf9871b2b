package workorder

import (
	"context"

	"github.com/fieldserve/backend/internal/domain/billing"
	"github.com/fieldserve/backend/internal/domain/catalog"
	"github.com/fieldserve/backend/internal/domain/identity"
	"github.com/fieldserve/backend/internal/domain/inventory"
	"github.com/fieldserve/backend/internal/domain/partner"
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/fieldserve/backend/internal/domain/shared/valueobject"
	"github.com/fieldserve/backend/internal/domain/workorder"
	"github.com/google/uuid"
)

// memStore holds every table as value copies, so snapshotting the maps and
// slices gives the rollback semantics of a real transaction
type memStore struct {
	invoices   map[uuid.UUID]billing.Invoice
	lines      []billing.InvoiceLineItem
	payments   []billing.Payment
	stock      []inventory.StockTransaction
	stockSeq   int64
	invoiceSeq map[uuid.UUID]int64
	products   map[uuid.UUID]catalog.Product
	profiles   map[uuid.UUID]identity.TenantProfile
	orders     map[uuid.UUID]workorder.WorkOrder
	tasks      map[uuid.UUID]workorder.MaintenanceTask
	customers  map[uuid.UUID]partner.Customer
}

func newMemStore() *memStore {
	return &memStore{
		invoices:   make(map[uuid.UUID]billing.Invoice),
		invoiceSeq: make(map[uuid.UUID]int64),
		products:   make(map[uuid.UUID]catalog.Product),
		profiles:   make(map[uuid.UUID]identity.TenantProfile),
		orders:     make(map[uuid.UUID]workorder.WorkOrder),
		tasks:      make(map[uuid.UUID]workorder.MaintenanceTask),
		customers:  make(map[uuid.UUID]partner.Customer),
	}
}

func (s *memStore) snapshot() *memStore {
	copied := newMemStore()
	for k, v := range s.invoices {
		copied.invoices[k] = v
	}
	copied.lines = append([]billing.InvoiceLineItem(nil), s.lines...)
	copied.payments = append([]billing.Payment(nil), s.payments...)
	copied.stock = append([]inventory.StockTransaction(nil), s.stock...)
	copied.stockSeq = s.stockSeq
	for k, v := range s.invoiceSeq {
		copied.invoiceSeq[k] = v
	}
	for k, v := range s.products {
		copied.products[k] = v
	}
	for k, v := range s.profiles {
		copied.profiles[k] = v
	}
	for k, v := range s.orders {
		copied.orders[k] = v
	}
	for k, v := range s.tasks {
		copied.tasks[k] = v
	}
	for k, v := range s.customers {
		copied.customers[k] = v
	}
	return copied
}

func (s *memStore) restore(from *memStore) {
	*s = *from
}

func (s *memStore) stockBalance(ownerID, productID uuid.UUID) int64 {
	var balance int64
	for _, e := range s.stock {
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

// memScope implements the transaction scope over a memStore: Execute
// snapshots the store and restores it when the function fails, mimicking a
// rollback
type memScope struct {
	store *memStore
}

func (s *memScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	before := s.store.snapshot()
	if err := fn(&memRepos{store: s.store}); err != nil {
		s.store.restore(before)
		return err
	}
	return nil
}

// memRepos exposes the store through every repository interface the
// completion cascade needs
type memRepos struct {
	store *memStore
}

func (r *memRepos) InvoiceRepo() billing.InvoiceRepository              { return (*memInvoiceRepo)(r) }
func (r *memRepos) LineRepo() billing.LineItemRepository                { return (*memLineRepo)(r) }
func (r *memRepos) PaymentRepo() billing.PaymentRepository              { return (*memPaymentRepo)(r) }
func (r *memRepos) StockTransactionRepo() inventory.StockTransactionRepository {
	return (*memStockRepo)(r)
}
func (r *memRepos) ProductRepo() catalog.ProductRepository              { return (*memProductRepo)(r) }
func (r *memRepos) TenantProfileRepo() identity.TenantProfileRepository { return (*memProfileRepo)(r) }
func (r *memRepos) WorkOrderRepo() workorder.WorkOrderRepository        { return (*memWorkOrderRepo)(r) }
func (r *memRepos) MaintenanceTaskRepo() workorder.MaintenanceTaskRepository {
	return (*memTaskRepo)(r)
}
func (r *memRepos) CustomerRepo() partner.CustomerRepository { return (*memCustomerRepo)(r) }

type memInvoiceRepo memRepos

func (r *memInvoiceRepo) FindByIDForTenant(_ context.Context, id, tenantID uuid.UUID) (*billing.Invoice, error) {
	inv, ok := r.store.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := inv
	return &copied, nil
}

func (r *memInvoiceRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*billing.Invoice, error) {
	for _, inv := range r.store.invoices {
		if inv.TenantID == tenantID && inv.Number == number {
			copied := inv
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memInvoiceRepo) FindByCustomer(_ context.Context, tenantID, customerID uuid.UUID) ([]billing.Invoice, error) {
	var out []billing.Invoice
	for _, inv := range r.store.invoices {
		if inv.TenantID == tenantID && inv.CustomerID == customerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) Save(_ context.Context, invoice *billing.Invoice) error {
	r.store.invoices[invoice.ID] = *invoice
	return nil
}

func (r *memInvoiceRepo) Update(_ context.Context, invoice *billing.Invoice) error {
	r.store.invoices[invoice.ID] = *invoice
	return nil
}

func (r *memInvoiceRepo) Delete(_ context.Context, id, _ uuid.UUID) error {
	delete(r.store.invoices, id)
	return nil
}

func (r *memInvoiceRepo) ExistsByNumber(_ context.Context, tenantID uuid.UUID, number string) (bool, error) {
	for _, inv := range r.store.invoices {
		if inv.TenantID == tenantID && inv.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memInvoiceRepo) NextInvoiceNumber(_ context.Context, tenantID uuid.UUID) (string, error) {
	r.store.invoiceSeq[tenantID]++
	return billing.FormatInvoiceNumber(tenantID, r.store.invoiceSeq[tenantID]), nil
}

type memLineRepo memRepos

func (r *memLineRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.InvoiceLineItem, error) {
	for _, line := range r.store.lines {
		if line.ID == id {
			copied := line
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memLineRepo) FindByInvoice(_ context.Context, invoiceID uuid.UUID) ([]billing.InvoiceLineItem, error) {
	var out []billing.InvoiceLineItem
	for _, line := range r.store.lines {
		if line.InvoiceID == invoiceID {
			out = append(out, line)
		}
	}
	return out, nil
}

func (r *memLineRepo) Save(_ context.Context, line *billing.InvoiceLineItem) error {
	r.store.lines = append(r.store.lines, *line)
	return nil
}

func (r *memLineRepo) Update(_ context.Context, line *billing.InvoiceLineItem) error {
	for i := range r.store.lines {
		if r.store.lines[i].ID == line.ID {
			r.store.lines[i] = *line
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memLineRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.store.lines {
		if r.store.lines[i].ID == id {
			r.store.lines = append(r.store.lines[:i], r.store.lines[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

type memPaymentRepo memRepos

func (r *memPaymentRepo) Save(_ context.Context, payment *billing.Payment) error {
	r.store.payments = append(r.store.payments, *payment)
	return nil
}

func (r *memPaymentRepo) FindByInvoice(_ context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var out []billing.Payment
	for _, p := range r.store.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) SumSettledByInvoice(_ context.Context, invoiceID uuid.UUID) (valueobject.Money, error) {
	total := valueobject.ZeroUSD()
	for _, p := range r.store.payments {
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

type memStockRepo memRepos

func (r *memStockRepo) Append(_ context.Context, tx *inventory.StockTransaction) error {
	r.store.stockSeq++
	tx.Seq = r.store.stockSeq
	r.store.stock = append(r.store.stock, *tx)
	return nil
}

func (r *memStockRepo) LastAdjustment(_ context.Context, ownerID, productID uuid.UUID) (*inventory.StockTransaction, error) {
	for i := len(r.store.stock) - 1; i >= 0; i-- {
		e := r.store.stock[i]
		if e.OwnerID == ownerID && e.ProductID == productID && e.Type == inventory.TransactionTypeAdjustment {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *memStockRepo) SumQuantityAfter(_ context.Context, ownerID, productID uuid.UUID, txType inventory.TransactionType, afterSeq int64) (int64, error) {
	var sum int64
	for _, e := range r.store.stock {
		if e.OwnerID == ownerID && e.ProductID == productID && e.Type == txType && e.Seq > afterSeq {
			sum += e.Quantity
		}
	}
	return sum, nil
}

func (r *memStockRepo) SumQuantityByRemark(_ context.Context, ownerID, productID uuid.UUID, txType inventory.TransactionType, remark string) (int64, error) {
	var sum int64
	for _, e := range r.store.stock {
		if e.OwnerID == ownerID && e.ProductID == productID && e.Type == txType && e.Remark == remark {
			sum += e.Quantity
		}
	}
	return sum, nil
}

func (r *memStockRepo) FindByOwnerProduct(_ context.Context, ownerID, productID uuid.UUID) ([]inventory.StockTransaction, error) {
	var out []inventory.StockTransaction
	for _, e := range r.store.stock {
		if e.OwnerID == ownerID && e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memProductRepo memRepos

func (r *memProductRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	product, ok := r.store.products[id]
	if !ok || product.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := product
	return &copied, nil
}

func (r *memProductRepo) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	for _, product := range r.store.products {
		if product.TenantID == tenantID && product.SKU == sku {
			copied := product
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.store.products[product.ID] = *product
	return nil
}

type memProfileRepo memRepos

func (r *memProfileRepo) FindByTenant(_ context.Context, tenantID uuid.UUID) (*identity.TenantProfile, error) {
	profile, ok := r.store.profiles[tenantID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := profile
	return &copied, nil
}

func (r *memProfileRepo) Save(_ context.Context, profile *identity.TenantProfile) error {
	r.store.profiles[profile.TenantID] = *profile
	return nil
}

type memWorkOrderRepo memRepos

func (r *memWorkOrderRepo) FindByIDForTenant(_ context.Context, id, tenantID uuid.UUID) (*workorder.WorkOrder, error) {
	order, ok := r.store.orders[id]
	if !ok || order.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := order
	return &copied, nil
}

func (r *memWorkOrderRepo) FindByVehicle(_ context.Context, tenantID, vehicleID uuid.UUID) ([]workorder.WorkOrder, error) {
	var out []workorder.WorkOrder
	for _, order := range r.store.orders {
		if order.TenantID == tenantID && order.VehicleID == vehicleID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *memWorkOrderRepo) Save(_ context.Context, order *workorder.WorkOrder) error {
	r.store.orders[order.ID] = *order
	return nil
}

func (r *memWorkOrderRepo) Update(_ context.Context, order *workorder.WorkOrder) error {
	r.store.orders[order.ID] = *order
	return nil
}

type memTaskRepo memRepos

func (r *memTaskRepo) FindByIDForTenant(_ context.Context, id, tenantID uuid.UUID) (*workorder.MaintenanceTask, error) {
	task, ok := r.store.tasks[id]
	if !ok || task.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := task
	return &copied, nil
}

func (r *memTaskRepo) FindOpenByVehicle(_ context.Context, tenantID, vehicleID uuid.UUID) ([]workorder.MaintenanceTask, error) {
	var out []workorder.MaintenanceTask
	for _, task := range r.store.tasks {
		if task.TenantID == tenantID && task.VehicleID == vehicleID && task.IsOpen() {
			out = append(out, task)
		}
	}
	return out, nil
}

func (r *memTaskRepo) Save(_ context.Context, task *workorder.MaintenanceTask) error {
	r.store.tasks[task.ID] = *task
	return nil
}

func (r *memTaskRepo) Update(_ context.Context, task *workorder.MaintenanceTask) error {
	r.store.tasks[task.ID] = *task
	return nil
}

type memCustomerRepo memRepos

func (r *memCustomerRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	customer, ok := r.store.customers[id]
	if !ok || customer.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := customer
	return &copied, nil
}
