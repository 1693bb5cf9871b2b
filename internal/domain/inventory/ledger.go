package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AutoRestockRemark marks compensating IN entries created when an OUT would
// drive the balance negative. Stock never goes negative and sales are never
// blocked by a data-entry lag; the shortfall is manufactured and flagged for
// later reconciliation.
const AutoRestockRemark = "auto restock"

// Ledger is the domain service over the stock transaction log. The log is
// the source of truth: Balance is always computed by replaying it, so any
// cached counter elsewhere must be rebuildable to the same value.
//
// A Ledger is constructed per unit of work with the repository bound to the
// current transaction; postings and the reads they depend on then share one
// atomic scope.
type Ledger struct {
	transactions StockTransactionRepository
}

// NewLedger creates a ledger over the given transaction repository
func NewLedger(transactions StockTransactionRepository) *Ledger {
	return &Ledger{transactions: transactions}
}

// Balance replays the log for (product, owner): the quantity of the last
// ADJUSTMENT (if any) plus IN minus OUT entries posted after it.
func (l *Ledger) Balance(ctx context.Context, ownerID, productID uuid.UUID) (int64, error) {
	var base int64
	var afterSeq int64

	adjustment, err := l.transactions.LastAdjustment(ctx, ownerID, productID)
	if err != nil {
		return 0, fmt.Errorf("load last adjustment: %w", err)
	}
	if adjustment != nil {
		base = adjustment.Quantity
		afterSeq = adjustment.Seq
	}

	in, err := l.transactions.SumQuantityAfter(ctx, ownerID, productID, TransactionTypeIn, afterSeq)
	if err != nil {
		return 0, fmt.Errorf("sum inbound quantity: %w", err)
	}
	out, err := l.transactions.SumQuantityAfter(ctx, ownerID, productID, TransactionTypeOut, afterSeq)
	if err != nil {
		return 0, fmt.Errorf("sum outbound quantity: %w", err)
	}

	return base + in - out, nil
}

// PostIn appends an IN entry
func (l *Ledger) PostIn(ctx context.Context, ownerID, productID uuid.UUID, quantity int64, remark string) error {
	if quantity == 0 {
		return nil
	}
	tx, err := NewStockTransaction(ownerID, productID, TransactionTypeIn, quantity, remark)
	if err != nil {
		return err
	}
	return l.transactions.Append(ctx, tx)
}

// PostOut appends an OUT entry. When the posting would drive the balance
// negative, a compensating IN for the shortfall is appended first.
func (l *Ledger) PostOut(ctx context.Context, ownerID, productID uuid.UUID, quantity int64, remark string) error {
	if quantity == 0 {
		return nil
	}

	balance, err := l.Balance(ctx, ownerID, productID)
	if err != nil {
		return err
	}
	if shortfall := quantity - balance; shortfall > 0 {
		if err := l.PostIn(ctx, ownerID, productID, shortfall, AutoRestockRemark); err != nil {
			return fmt.Errorf("auto restock: %w", err)
		}
	}

	tx, err := NewStockTransaction(ownerID, productID, TransactionTypeOut, quantity, remark)
	if err != nil {
		return err
	}
	return l.transactions.Append(ctx, tx)
}

// PostAdjustment appends an ADJUSTMENT entry that sets the balance to the
// given absolute quantity
func (l *Ledger) PostAdjustment(ctx context.Context, ownerID, productID uuid.UUID, quantity int64, remark string) error {
	tx, err := NewStockTransaction(ownerID, productID, TransactionTypeAdjustment, quantity, remark)
	if err != nil {
		return err
	}
	return l.transactions.Append(ctx, tx)
}

// EnsurePosted makes a derived posting idempotent: it sums what the ledger
// already holds for (product, owner, type, remark) and posts only the
// missing delta. Retried completion paths and re-run backfills therefore
// never double-post.
func (l *Ledger) EnsurePosted(ctx context.Context, ownerID, productID uuid.UUID, txType TransactionType, expectedQty int64, remark string) error {
	if expectedQty <= 0 {
		return nil
	}

	existing, err := l.transactions.SumQuantityByRemark(ctx, ownerID, productID, txType, remark)
	if err != nil {
		return fmt.Errorf("idempotency check for %q: %w", remark, err)
	}
	missing := expectedQty - existing
	if missing <= 0 {
		return nil
	}

	switch txType {
	case TransactionTypeIn:
		return l.PostIn(ctx, ownerID, productID, missing, remark)
	case TransactionTypeOut:
		return l.PostOut(ctx, ownerID, productID, missing, remark)
	default:
		tx, err := NewStockTransaction(ownerID, productID, txType, missing, remark)
		if err != nil {
			return err
		}
		return l.transactions.Append(ctx, tx)
	}
}

// Replay recomputes the balance for (product, owner) from the full log,
// independent of Balance's aggregate queries. Used to verify that derived
// counters have not drifted.
func (l *Ledger) Replay(ctx context.Context, ownerID, productID uuid.UUID) (int64, error) {
	entries, err := l.transactions.FindByOwnerProduct(ctx, ownerID, productID)
	if err != nil {
		return 0, err
	}

	var balance int64
	for _, entry := range entries {
		switch entry.Type {
		case TransactionTypeIn:
			balance += entry.Quantity
		case TransactionTypeOut:
			balance -= entry.Quantity
		case TransactionTypeAdjustment:
			balance = entry.Quantity
		}
	}
	return balance, nil
}
