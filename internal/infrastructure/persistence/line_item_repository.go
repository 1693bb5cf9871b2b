package persistence

import (
	"context"
	"errors"

	"github.com/fieldserve/backend/internal/domain/billing"
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLineItemRepository implements LineItemRepository using GORM
type GormLineItemRepository struct {
	db *gorm.DB
}

// NewGormLineItemRepository creates a new GormLineItemRepository
func NewGormLineItemRepository(db *gorm.DB) *GormLineItemRepository {
	return &GormLineItemRepository{db: db}
}

// FindByID finds a line item by its ID
func (r *GormLineItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.InvoiceLineItem, error) {
	var line billing.InvoiceLineItem
	if err := r.db.WithContext(ctx).First(&line, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

// FindByInvoice lists an invoice's lines in insertion order
func (r *GormLineItemRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.InvoiceLineItem, error) {
	var lines []billing.InvoiceLineItem
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// Save persists a new line item
func (r *GormLineItemRepository) Save(ctx context.Context, line *billing.InvoiceLineItem) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// Update persists changes to an existing line item
func (r *GormLineItemRepository) Update(ctx context.Context, line *billing.InvoiceLineItem) error {
	return r.db.WithContext(ctx).Save(line).Error
}

// Delete removes a line item
func (r *GormLineItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&billing.InvoiceLineItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ billing.LineItemRepository = (*GormLineItemRepository)(nil)
