package billing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// invoiceNumberPrefix is the fixed prefix of every invoice number
const invoiceNumberPrefix = "INV"

// FormatInvoiceNumber renders the externally visible invoice number contract:
// INV-{tenantId}-{seq:04d}. Downstream tools parse this string, so the shape
// must never change. Sequences past 9999 widen naturally and still parse.
func FormatInvoiceNumber(tenantID uuid.UUID, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", invoiceNumberPrefix, tenantID, seq)
}

// ParseInvoiceSequence extracts the sequence from an invoice number. The
// tenant ID itself contains dashes, so the sequence is everything after the
// last one.
func ParseInvoiceSequence(number string) (int64, error) {
	idx := strings.LastIndex(number, "-")
	if !strings.HasPrefix(number, invoiceNumberPrefix+"-") || idx <= len(invoiceNumberPrefix) {
		return 0, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number is not in the INV-{tenant}-{seq} format")
	}
	seq, err := strconv.ParseInt(number[idx+1:], 10, 64)
	if err != nil || seq < 0 {
		return 0, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number sequence is not a valid number")
	}
	return seq, nil
}
