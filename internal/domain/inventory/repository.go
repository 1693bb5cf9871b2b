package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockTransactionRepository is the append-only store for the stock ledger.
// Entries are never updated or deleted; balances are derived by replay.
type StockTransactionRepository interface {
	// Append writes a new ledger entry
	Append(ctx context.Context, tx *StockTransaction) error
	// LastAdjustment returns the most recent ADJUSTMENT entry for the
	// (product, owner) pair, or nil when none exists
	LastAdjustment(ctx context.Context, ownerID, productID uuid.UUID) (*StockTransaction, error)
	// SumQuantityAfter sums quantities of the given type for (product, owner)
	// with Seq strictly greater than afterSeq. Pass 0 to sum the whole log.
	SumQuantityAfter(ctx context.Context, ownerID, productID uuid.UUID, txType TransactionType, afterSeq int64) (int64, error)
	// SumQuantityByRemark sums quantities of the given type and exact remark,
	// used for idempotency checks on derived postings
	SumQuantityByRemark(ctx context.Context, ownerID, productID uuid.UUID, txType TransactionType, remark string) (int64, error)
	// FindByOwnerProduct lists the full log for a (product, owner) pair in
	// Seq order, oldest first
	FindByOwnerProduct(ctx context.Context, ownerID, productID uuid.UUID) ([]StockTransaction, error)
}
