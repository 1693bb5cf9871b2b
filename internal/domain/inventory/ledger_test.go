package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStockTxRepo is an in-memory StockTransactionRepository for ledger tests
type memStockTxRepo struct {
	entries []StockTransaction
	nextSeq int64
	failing bool
}

func (r *memStockTxRepo) Append(_ context.Context, tx *StockTransaction) error {
	if r.failing {
		return assert.AnError
	}
	r.nextSeq++
	tx.Seq = r.nextSeq
	r.entries = append(r.entries, *tx)
	return nil
}

func (r *memStockTxRepo) LastAdjustment(_ context.Context, ownerID, productID uuid.UUID) (*StockTransaction, error) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.OwnerID == ownerID && e.ProductID == productID && e.Type == TransactionTypeAdjustment {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *memStockTxRepo) SumQuantityAfter(_ context.Context, ownerID, productID uuid.UUID, txType TransactionType, afterSeq int64) (int64, error) {
	var sum int64
	for _, e := range r.entries {
		if e.OwnerID == ownerID && e.ProductID == productID && e.Type == txType && e.Seq > afterSeq {
			sum += e.Quantity
		}
	}
	return sum, nil
}

func (r *memStockTxRepo) SumQuantityByRemark(_ context.Context, ownerID, productID uuid.UUID, txType TransactionType, remark string) (int64, error) {
	var sum int64
	for _, e := range r.entries {
		if e.OwnerID == ownerID && e.ProductID == productID && e.Type == txType && e.Remark == remark {
			sum += e.Quantity
		}
	}
	return sum, nil
}

func (r *memStockTxRepo) FindByOwnerProduct(_ context.Context, ownerID, productID uuid.UUID) ([]StockTransaction, error) {
	var out []StockTransaction
	for _, e := range r.entries {
		if e.OwnerID == ownerID && e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestLedger() (*Ledger, *memStockTxRepo) {
	repo := &memStockTxRepo{}
	return NewLedger(repo), repo
}

func TestLedger_PostInAndBalance(t *testing.T) {
	ledger, _ := newTestLedger()
	ctx := context.Background()
	owner, product := uuid.New(), uuid.New()

	require.NoError(t, ledger.PostIn(ctx, owner, product, 10, "initial stock"))
	require.NoError(t, ledger.PostOut(ctx, owner, product, 3, "sold with invoice INV-1"))

	balance, err := ledger.Balance(ctx, owner, product)
	require.NoError(t, err)
	assert.Equal(t, int64(7), balance)
}

func TestLedger_AutoRestockOnShortfall(t *testing.T) {
	ledger, repo := newTestLedger()
	ctx := context.Background()
	owner, product := uuid.New(), uuid.New()

	require.NoError(t, ledger.PostIn(ctx, owner, product, 2, "initial stock"))
	// selling 5 with only 2 on hand manufactures the missing 3 first
	require.NoError(t, ledger.PostOut(ctx, owner, product, 5, "sold with invoice INV-1"))

	balance, err := ledger.Balance(ctx, owner, product)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance, "auto-restock keeps the balance at zero, never negative")

	restocked, err := repo.SumQuantityByRemark(ctx, owner, product, TransactionTypeIn, AutoRestockRemark)
	require.NoError(t, err)
	assert.Equal(t, int64(3), restocked)
}

func TestLedger_AdjustmentSetsAbsoluteBalance(t *testing.T) {
	ledger, _ := newTestLedger()
	ctx := context.Background()
	owner, product := uuid.New(), uuid.New()

	require.NoError(t, ledger.PostIn(ctx, owner, product, 50, "initial stock"))
	require.NoError(t, ledger.PostAdjustment(ctx, owner, product, 12, "stock count 2026-08"))
	require.NoError(t, ledger.PostOut(ctx, owner, product, 2, "sold with invoice INV-2"))

	balance, err := ledger.Balance(ctx, owner, product)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)
}

func TestLedger_BalanceMatchesReplay(t *testing.T) {
	ledger, _ := newTestLedger()
	ctx := context.Background()
	owner, product := uuid.New(), uuid.New()

	require.NoError(t, ledger.PostIn(ctx, owner, product, 8, "receiving PO-77"))
	require.NoError(t, ledger.PostOut(ctx, owner, product, 3, "sold with invoice INV-3"))
	require.NoError(t, ledger.PostAdjustment(ctx, owner, product, 20, "stock count"))
	require.NoError(t, ledger.PostOut(ctx, owner, product, 6, "sold with invoice INV-4"))
	require.NoError(t, ledger.PostIn(ctx, owner, product, 1, "deletion reversal for invoice INV-4"))

	balance, err := ledger.Balance(ctx, owner, product)
	require.NoError(t, err)
	replayed, err := ledger.Replay(ctx, owner, product)
	require.NoError(t, err)
	assert.Equal(t, replayed, balance)
	assert.Equal(t, int64(15), balance)
}

func TestLedger_EnsurePostedIsIdempotent(t *testing.T) {
	ledger, repo := newTestLedger()
	ctx := context.Background()
	owner, product := uuid.New(), uuid.New()
	remark := "sold with invoice INV-5"

	require.NoError(t, ledger.PostIn(ctx, owner, product, 10, "initial stock"))

	require.NoError(t, ledger.EnsurePosted(ctx, owner, product, TransactionTypeOut, 4, remark))
	// a retried completion path runs the same ensure again
	require.NoError(t, ledger.EnsurePosted(ctx, owner, product, TransactionTypeOut, 4, remark))

	posted, err := repo.SumQuantityByRemark(ctx, owner, product, TransactionTypeOut, remark)
	require.NoError(t, err)
	assert.Equal(t, int64(4), posted)

	balance, err := ledger.Balance(ctx, owner, product)
	require.NoError(t, err)
	assert.Equal(t, int64(6), balance)
}

func TestLedger_EnsurePostedTopsUpMissingDelta(t *testing.T) {
	ledger, repo := newTestLedger()
	ctx := context.Background()
	owner, product := uuid.New(), uuid.New()
	remark := "sold with invoice INV-6"

	require.NoError(t, ledger.PostIn(ctx, owner, product, 10, "initial stock"))
	require.NoError(t, ledger.PostOut(ctx, owner, product, 2, remark))

	// the expected quantity grew to 5; only the missing 3 are posted
	require.NoError(t, ledger.EnsurePosted(ctx, owner, product, TransactionTypeOut, 5, remark))

	posted, err := repo.SumQuantityByRemark(ctx, owner, product, TransactionTypeOut, remark)
	require.NoError(t, err)
	assert.Equal(t, int64(5), posted)
}

func TestLedger_ZeroQuantityPostsAreNoOps(t *testing.T) {
	ledger, repo := newTestLedger()
	ctx := context.Background()
	owner, product := uuid.New(), uuid.New()

	require.NoError(t, ledger.PostIn(ctx, owner, product, 0, "nothing"))
	require.NoError(t, ledger.PostOut(ctx, owner, product, 0, "nothing"))
	assert.Empty(t, repo.entries)
}

func TestNewStockTransaction_Validation(t *testing.T) {
	owner, product := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		owner   uuid.UUID
		product uuid.UUID
		txType  TransactionType
		qty     int64
		remark  string
		wantErr bool
	}{
		{"valid in", owner, product, TransactionTypeIn, 5, "receiving", false},
		{"valid adjustment of zero", owner, product, TransactionTypeAdjustment, 0, "stock count", false},
		{"nil owner", uuid.Nil, product, TransactionTypeIn, 5, "receiving", true},
		{"nil product", owner, uuid.Nil, TransactionTypeIn, 5, "receiving", true},
		{"bad type", owner, product, TransactionType("TRANSFER"), 5, "receiving", true},
		{"negative quantity", owner, product, TransactionTypeOut, -1, "oops", true},
		{"empty remark", owner, product, TransactionTypeIn, 5, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStockTransaction(tt.owner, tt.product, tt.txType, tt.qty, tt.remark)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
