package persistence

// invoiceSequence is the per-tenant allocator row behind invoice numbers.
// NextInvoiceNumber locks it FOR UPDATE, so concurrent allocations on the
// same tenant serialize instead of handing out the same sequence twice.
type invoiceSequence struct {
	TenantID string `gorm:"type:uuid;primaryKey"`
	NextSeq  int64  `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (invoiceSequence) TableName() string {
	return "invoice_sequences"
}
