package billing

import (
	"fmt"

	"github.com/google/uuid"
)

// LineValidationError identifies the offending line and product when a line
// cannot be priced or synchronized. The completion cascade aborts on the
// first one so the UI can show an actionable message.
type LineValidationError struct {
	LineID    uuid.UUID
	ProductID *uuid.UUID
	Reason    string
}

// Error implements the error interface
func (e *LineValidationError) Error() string {
	if e.ProductID != nil {
		return fmt.Sprintf("line %s (product %s): %s", e.LineID, *e.ProductID, e.Reason)
	}
	return fmt.Sprintf("line %s: %s", e.LineID, e.Reason)
}

// NewLineValidationError creates a line validation error
func NewLineValidationError(lineID uuid.UUID, productID *uuid.UUID, reason string) *LineValidationError {
	return &LineValidationError{LineID: lineID, ProductID: productID, Reason: reason}
}
