package persistence

import (
	"context"

	"github.com/fieldserve/backend/internal/domain/billing"
	"github.com/fieldserve/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save persists a settlement posting
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// FindByInvoice lists an invoice's settlement postings, oldest first
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var payments []billing.Payment
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("received_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// SumSettledByInvoice totals payments plus applied credits against an invoice
func (r *GormPaymentRepository) SumSettledByInvoice(ctx context.Context, invoiceID uuid.UUID) (valueobject.Money, error) {
	var total decimal.Decimal
	if err := r.db.WithContext(ctx).
		Model(&billing.Payment{}).
		Where("invoice_id = ?", invoiceID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return valueobject.ZeroUSD(), err
	}
	return valueobject.NewMoneyUSD(total), nil
}

var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
