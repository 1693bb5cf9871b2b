package inventory

import (
	"time"

	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TransactionType represents the type of stock transaction
type TransactionType string

const (
	// TransactionTypeIn represents stock entering the pool (receiving,
	// reversals, auto-restock)
	TransactionTypeIn TransactionType = "IN"
	// TransactionTypeOut represents stock leaving the pool (sales)
	TransactionTypeOut TransactionType = "OUT"
	// TransactionTypeAdjustment sets the balance to an absolute value
	// (stock count corrections)
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIn, TransactionTypeOut, TransactionTypeAdjustment:
		return true
	}
	return false
}

// StockTransaction is one immutable entry in the inventory transaction log.
// Once written it is never modified; corrections are made with new entries.
// The remark carries the business reason and doubles as the idempotency key
// for derived postings.
type StockTransaction struct {
	shared.BaseEntity
	// Seq is a monotonically increasing position in the log, used to order
	// entries when replaying balances.
	Seq       int64           `gorm:"autoIncrement;uniqueIndex"`
	OwnerID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_tx_owner_product,priority:1"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_tx_owner_product,priority:2"`
	Type      TransactionType `gorm:"type:varchar(20);not null;index"`
	Quantity  int64           `gorm:"not null"`
	Remark    string          `gorm:"type:varchar(255);not null;index"`
	PostedAt  time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// NewStockTransaction creates a validated ledger entry
func NewStockTransaction(ownerID, productID uuid.UUID, txType TransactionType, quantity int64, remark string) (*StockTransaction, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STOCK_OWNER", "Stock owner ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid stock transaction type")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Stock quantity cannot be negative")
	}
	if remark == "" {
		return nil, shared.NewDomainError("INVALID_REMARK", "Stock transaction remark cannot be empty")
	}

	return &StockTransaction{
		BaseEntity: shared.NewBaseEntity(),
		OwnerID:    ownerID,
		ProductID:  productID,
		Type:       txType,
		Quantity:   quantity,
		Remark:     remark,
		PostedAt:   time.Now(),
	}, nil
}
