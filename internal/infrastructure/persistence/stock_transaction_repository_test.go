package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fieldserve/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormStockTransactionRepository_LastAdjustment(t *testing.T) {
	t.Run("returns most recent adjustment", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockTransactionRepository(db)

		ownerID := uuid.New()
		productID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "seq", "owner_id", "product_id", "type", "quantity", "remark", "posted_at"}).
			AddRow(uuid.New(), time.Now(), time.Now(), int64(42), ownerID, productID, "ADJUSTMENT", int64(15), "stock count", time.Now())

		mock.ExpectQuery(`SELECT \* FROM "stock_transactions" WHERE owner_id = \$1 AND product_id = \$2 AND type = \$3 ORDER BY seq DESC`).
			WithArgs(ownerID, productID, inventory.TransactionTypeAdjustment, 1).
			WillReturnRows(rows)

		entry, err := repo.LastAdjustment(context.Background(), ownerID, productID)

		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, int64(42), entry.Seq)
		assert.Equal(t, int64(15), entry.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil when the log has no adjustment", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockTransactionRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "stock_transactions"`).
			WillReturnError(gorm.ErrRecordNotFound)

		entry, err := repo.LastAdjustment(context.Background(), uuid.New(), uuid.New())

		require.NoError(t, err)
		assert.Nil(t, entry)
	})
}

func TestGormStockTransactionRepository_SumQuantityAfter(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormStockTransactionRepository(db)

	ownerID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\) FROM "stock_transactions" WHERE owner_id = \$1 AND product_id = \$2 AND type = \$3 AND seq > \$4`).
		WithArgs(ownerID, productID, inventory.TransactionTypeIn, int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(25)))

	total, err := repo.SumQuantityAfter(context.Background(), ownerID, productID, inventory.TransactionTypeIn, 42)

	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStockTransactionRepository_SumQuantityByRemark(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormStockTransactionRepository(db)

	ownerID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\) FROM "stock_transactions" WHERE owner_id = \$1 AND product_id = \$2 AND type = \$3 AND remark = \$4`).
		WithArgs(ownerID, productID, inventory.TransactionTypeOut, "sold with invoice INV-x-0001").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(3)))

	total, err := repo.SumQuantityByRemark(context.Background(), ownerID, productID, inventory.TransactionTypeOut, "sold with invoice INV-x-0001")

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}
