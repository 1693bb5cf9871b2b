package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/fieldserve/backend/internal/domain/catalog"
	"github.com/fieldserve/backend/internal/domain/identity"
	"github.com/fieldserve/backend/internal/domain/inventory"
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStockRepo struct {
	mu      sync.Mutex
	entries []inventory.StockTransaction
	nextSeq int64
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

type memProductRepo struct {
	products map[uuid.UUID]catalog.Product
}

func (r *memProductRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	product, ok := r.products[id]
	if !ok || product.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := product
	return &copied, nil
}

func (r *memProductRepo) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	for _, product := range r.products {
		if product.TenantID == tenantID && product.SKU == sku {
			copied := product
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.products[product.ID] = *product
	return nil
}

type memProfileRepo struct {
	profiles map[uuid.UUID]identity.TenantProfile
}

func (r *memProfileRepo) FindByTenant(_ context.Context, tenantID uuid.UUID) (*identity.TenantProfile, error) {
	profile, ok := r.profiles[tenantID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := profile
	return &copied, nil
}

func (r *memProfileRepo) Save(_ context.Context, profile *identity.TenantProfile) error {
	r.profiles[profile.TenantID] = *profile
	return nil
}

type stockFixture struct {
	service  *StockService
	stock    *memStockRepo
	tenantID uuid.UUID
	product  *catalog.Product
}

func newStockFixture(t *testing.T) *stockFixture {
	t.Helper()
	tenantID := uuid.New()

	product, err := catalog.NewProduct(tenantID, "SKU-1", "Cabin filter", decimal.NewFromInt(30))
	require.NoError(t, err)
	require.NoError(t, product.SetReorderLevel(5))

	profile, err := identity.NewTenantProfile(tenantID, "North Bay Auto", "ON")
	require.NoError(t, err)

	stock := &memStockRepo{}
	products := &memProductRepo{products: map[uuid.UUID]catalog.Product{product.ID: *product}}
	profiles := &memProfileRepo{profiles: map[uuid.UUID]identity.TenantProfile{tenantID: *profile}}

	return &stockFixture{
		service:  NewStockService(NewNoOpTransactionScope(stock, products, profiles)),
		stock:    stock,
		tenantID: tenantID,
		product:  product,
	}
}

func TestStockService_ReceiveAndBalance(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()

	resp, err := f.service.Receive(ctx, f.tenantID, f.product.ID, PostStockRequest{Quantity: 12, Remark: "receiving PO-9"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), resp.Balance)
	assert.Equal(t, f.tenantID, resp.OwnerID)
	assert.False(t, resp.BelowReorderLevel)

	got, err := f.service.Balance(ctx, f.tenantID, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.Balance)
}

func TestStockService_AdjustSetsAbsoluteBalance(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()

	_, err := f.service.Receive(ctx, f.tenantID, f.product.ID, PostStockRequest{Quantity: 20, Remark: "receiving"})
	require.NoError(t, err)

	resp, err := f.service.Adjust(ctx, f.tenantID, f.product.ID, PostStockRequest{Quantity: 3, Remark: "stock count"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Balance)
	assert.True(t, resp.BelowReorderLevel, "reorder level 5, counted 3")
}

func TestStockService_ReplayAgreesWithBalance(t *testing.T) {
	f := newStockFixture(t)
	ctx := context.Background()

	_, err := f.service.Receive(ctx, f.tenantID, f.product.ID, PostStockRequest{Quantity: 9, Remark: "receiving"})
	require.NoError(t, err)
	_, err = f.service.Adjust(ctx, f.tenantID, f.product.ID, PostStockRequest{Quantity: 7, Remark: "stock count"})
	require.NoError(t, err)

	resp, err := f.service.Replay(ctx, f.tenantID, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.Balance)
}

func TestStockService_UnknownProduct(t *testing.T) {
	f := newStockFixture(t)
	_, err := f.service.Balance(context.Background(), f.tenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
