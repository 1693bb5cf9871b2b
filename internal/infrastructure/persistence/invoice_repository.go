package persistence

import (
	"context"
	"errors"

	"github.com/fieldserve/backend/internal/domain/billing"
	"github.com/fieldserve/backend/internal/domain/identity"
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sequenceProbeLimit bounds the collision probe when allocating an invoice
// number. Collisions only happen when numbers were imported or backfilled
// ahead of the allocator, so a bounded scan is enough to step past them.
const sequenceProbeLimit = 10000

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForTenant finds an invoice with its lines within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, id, tenantID uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by its number within a tenant
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("tenant_id = ? AND number = ?", tenantID, number).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByCustomer lists a customer's invoices, newest first
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Order("issued_at DESC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save persists a new invoice together with its lines
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists header changes only. Lines are owned by the line item
// repository; saving them here would overwrite synchronizer writes made
// earlier in the same transaction.
func (r *GormInvoiceRepository) Update(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(invoice).Error
}

// Delete removes the invoice and its lines as a whole
func (r *GormInvoiceRepository) Delete(ctx context.Context, id, tenantID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&billing.Invoice{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return r.db.WithContext(ctx).
		Where("invoice_id = ?", id).
		Delete(&billing.InvoiceLineItem{}).Error
}

// ExistsByNumber checks whether an invoice number is already taken within a tenant
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("tenant_id = ? AND number = ?", tenantID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextInvoiceNumber allocates the next tenant-unique invoice number. The
// allocator row is locked FOR UPDATE for the rest of the enclosing
// transaction, so two concurrent allocations on one tenant serialize and
// never return the same number. A pending sequence override on the tenant
// profile is honored first and consumed; sequences already taken by
// existing invoices are probed past rather than reused.
func (r *GormInvoiceRepository) NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	row, err := r.lockSequenceRow(ctx, tenantID)
	if err != nil {
		return "", err
	}

	seq := row.NextSeq
	override, err := r.sequenceOverride(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if override != nil {
		seq = *override
	}

	for attempt := 0; attempt < sequenceProbeLimit; attempt++ {
		number := billing.FormatInvoiceNumber(tenantID, seq)
		taken, err := r.ExistsByNumber(ctx, tenantID, number)
		if err != nil {
			return "", err
		}
		if !taken {
			next := seq + 1
			if next < row.NextSeq {
				next = row.NextSeq
			}
			if err := r.db.WithContext(ctx).
				Model(&invoiceSequence{}).
				Where("tenant_id = ?", tenantID.String()).
				Update("next_seq", next).Error; err != nil {
				return "", err
			}
			if override != nil {
				if err := r.clearSequenceOverride(ctx, tenantID); err != nil {
					return "", err
				}
			}
			return number, nil
		}
		seq++
	}
	return "", shared.ErrSequenceExhausted
}

// sequenceOverride reads the tenant profile's pending sequence override.
// Tenants without a profile simply have none.
func (r *GormInvoiceRepository) sequenceOverride(ctx context.Context, tenantID uuid.UUID) (*int64, error) {
	var profile struct{ InvoiceSeqOverride *int64 }
	err := r.db.WithContext(ctx).
		Model(&identity.TenantProfile{}).
		Select("invoice_seq_override").
		Where("tenant_id = ?", tenantID).
		Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if profile.InvoiceSeqOverride != nil && *profile.InvoiceSeqOverride <= 0 {
		return nil, nil
	}
	return profile.InvoiceSeqOverride, nil
}

func (r *GormInvoiceRepository) clearSequenceOverride(ctx context.Context, tenantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&identity.TenantProfile{}).
		Where("tenant_id = ?", tenantID).
		Update("invoice_seq_override", nil).Error
}

// lockSequenceRow fetches the tenant's allocator row under a row lock,
// creating it on first use
func (r *GormInvoiceRepository) lockSequenceRow(ctx context.Context, tenantID uuid.UUID) (*invoiceSequence, error) {
	var row invoiceSequence
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ?", tenantID.String()).
		First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// first allocation for this tenant: insert, then lock. The insert may
	// lose a race with another writer, which the locked re-read absorbs.
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&invoiceSequence{TenantID: tenantID.String(), NextSeq: 1}).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ?", tenantID.String()).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
