package persistence

import (
	"context"
	"errors"

	"github.com/fieldserve/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockTransactionRepository implements StockTransactionRepository using
// GORM. The log is append-only; nothing here updates or deletes rows.
type GormStockTransactionRepository struct {
	db *gorm.DB
}

// NewGormStockTransactionRepository creates a new GormStockTransactionRepository
func NewGormStockTransactionRepository(db *gorm.DB) *GormStockTransactionRepository {
	return &GormStockTransactionRepository{db: db}
}

// Append writes a new ledger entry. Seq is assigned by the database.
func (r *GormStockTransactionRepository) Append(ctx context.Context, tx *inventory.StockTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// LastAdjustment returns the most recent ADJUSTMENT entry for the pair, or
// nil when the log has none
func (r *GormStockTransactionRepository) LastAdjustment(ctx context.Context, ownerID, productID uuid.UUID) (*inventory.StockTransaction, error) {
	var entry inventory.StockTransaction
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND product_id = ? AND type = ?", ownerID, productID, inventory.TransactionTypeAdjustment).
		Order("seq DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// SumQuantityAfter sums quantities of one type with Seq strictly greater
// than afterSeq
func (r *GormStockTransactionRepository) SumQuantityAfter(ctx context.Context, ownerID, productID uuid.UUID, txType inventory.TransactionType, afterSeq int64) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockTransaction{}).
		Where("owner_id = ? AND product_id = ? AND type = ? AND seq > ?", ownerID, productID, txType, afterSeq).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// SumQuantityByRemark sums quantities of one type carrying the exact remark
func (r *GormStockTransactionRepository) SumQuantityByRemark(ctx context.Context, ownerID, productID uuid.UUID, txType inventory.TransactionType, remark string) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockTransaction{}).
		Where("owner_id = ? AND product_id = ? AND type = ? AND remark = ?", ownerID, productID, txType, remark).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// FindByOwnerProduct lists the full log for a pair in Seq order, oldest first
func (r *GormStockTransactionRepository) FindByOwnerProduct(ctx context.Context, ownerID, productID uuid.UUID) ([]inventory.StockTransaction, error) {
	var entries []inventory.StockTransaction
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND product_id = ?", ownerID, productID).
		Order("seq ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var _ inventory.StockTransactionRepository = (*GormStockTransactionRepository)(nil)
