package workorder

import (
	"fmt"
	"time"

	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/fieldserve/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the work order lifecycle state
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for states that permit no further transition
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo checks if transition to target status is allowed
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusInProgress || target == StatusCompleted || target == StatusCancelled
	case StatusInProgress:
		return target == StatusCompleted || target == StatusCancelled
	default:
		return false
	}
}

// MechanicStatus tracks where the assigned mechanic is on the job,
// independent of the billing lifecycle
type MechanicStatus string

const (
	MechanicStatusNotStarted     MechanicStatus = "not_started"
	MechanicStatusInProgress     MechanicStatus = "in_progress"
	MechanicStatusPaused         MechanicStatus = "paused"
	MechanicStatusTravel         MechanicStatus = "travel"
	MechanicStatusMarkedComplete MechanicStatus = "marked_complete"
)

// IsValid returns true if the mechanic status is valid
func (s MechanicStatus) IsValid() bool {
	switch s {
	case MechanicStatusNotStarted, MechanicStatusInProgress, MechanicStatusPaused, MechanicStatusTravel, MechanicStatusMarkedComplete:
		return true
	}
	return false
}

// ItemType classifies a work order item; completion maps it onto the
// matching invoice line type
type ItemType string

const (
	ItemTypePart  ItemType = "part"
	ItemTypeLabor ItemType = "labor"
	ItemTypeFee   ItemType = "fee"
)

// IsValid returns true if the item type is valid
func (t ItemType) IsValid() bool {
	return t == ItemTypePart || t == ItemTypeLabor || t == ItemTypeFee
}

// Item is one line of planned work or parts on a work order. Items become
// invoice lines when the order completes.
type Item struct {
	shared.BaseEntity
	WorkOrderID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID `gorm:"type:uuid"`
	Type        ItemType   `gorm:"type:varchar(20);not null"`
	Description string     `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal
	UnitRate    valueobject.Money `gorm:"type:decimal(19,4)"`
	// Position preserves the order items were added in; invoice lines are
	// created in this order on completion
	Position int `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "work_order_items"
}

// WorkOrder is the service job aggregate root. Completion is the only
// transition with cascading side effects; it is terminal and idempotent.
type WorkOrder struct {
	shared.TenantAggregateRoot
	CustomerID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	VehicleID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status         Status         `gorm:"type:varchar(20);not null;index"`
	MechanicStatus MechanicStatus `gorm:"type:varchar(30);not null"`
	Description    string         `gorm:"type:text"`
	Items          []Item         `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE"`
	// OdometerReading is the vehicle mileage recorded at service time,
	// stamped onto maintenance tasks on completion
	OdometerReading int64      `gorm:"not null;default:0"`
	InvoiceID       *uuid.UUID `gorm:"type:uuid;index"`
	CompletedAt     *time.Time `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (WorkOrder) TableName() string {
	return "work_orders"
}

// NewWorkOrder creates a new work order in pending state
func NewWorkOrder(tenantID, customerID, vehicleID uuid.UUID, description string) (*WorkOrder, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if vehicleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VEHICLE", "Vehicle ID cannot be empty")
	}

	return &WorkOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		VehicleID:           vehicleID,
		Status:              StatusPending,
		MechanicStatus:      MechanicStatusNotStarted,
		Description:         description,
	}, nil
}

// AddItem appends a validated item at the next position
func (w *WorkOrder) AddItem(itemType ItemType, description string, productID *uuid.UUID, quantity decimal.Decimal, unitRate valueobject.Money) (*Item, error) {
	if w.Status.IsTerminal() {
		return nil, shared.ErrInvalidState
	}
	if !itemType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_TYPE", "Invalid work order item type")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
	}
	if itemType == ItemTypePart && (productID == nil || *productID == uuid.Nil) {
		return nil, shared.NewDomainError("MISSING_PRODUCT", "Part items must reference a product")
	}

	item := Item{
		BaseEntity:  shared.NewBaseEntity(),
		WorkOrderID: w.ID,
		ProductID:   productID,
		Type:        itemType,
		Description: description,
		Quantity:    quantity,
		UnitRate:    unitRate,
		Position:    len(w.Items),
	}
	w.Items = append(w.Items, item)
	w.Touch()
	return &w.Items[len(w.Items)-1], nil
}

// Start moves the order to in_progress
func (w *WorkOrder) Start() error {
	if !w.Status.CanTransitionTo(StatusInProgress) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			fmt.Sprintf("Cannot start a work order in %s status", w.Status))
	}
	w.Status = StatusInProgress
	w.MechanicStatus = MechanicStatusInProgress
	w.Touch()
	return nil
}

// UpdateMechanicStatus records the mechanic's progress on the job
func (w *WorkOrder) UpdateMechanicStatus(status MechanicStatus) error {
	if w.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_MECHANIC_STATUS", "Invalid mechanic status")
	}
	w.MechanicStatus = status
	w.Touch()
	return nil
}

// RecordOdometer stores the mileage observed during service
func (w *WorkOrder) RecordOdometer(reading int64) error {
	if reading < 0 {
		return shared.NewDomainError("INVALID_ODOMETER", "Odometer reading cannot be negative")
	}
	w.OdometerReading = reading
	w.Touch()
	return nil
}

// Complete transitions the order to completed. Returns true when the
// transition actually happened; false when the order was already completed,
// which is a no-op rather than an error so retried completions stay safe.
// The completion timestamp is set exactly once.
func (w *WorkOrder) Complete(now time.Time) (bool, error) {
	if w.Status == StatusCompleted {
		return false, nil
	}
	if !w.Status.CanTransitionTo(StatusCompleted) {
		return false, shared.NewDomainError("INVALID_STATUS_TRANSITION",
			fmt.Sprintf("Cannot complete a work order in %s status", w.Status))
	}

	w.Status = StatusCompleted
	w.MechanicStatus = MechanicStatusMarkedComplete
	if w.CompletedAt == nil {
		w.CompletedAt = &now
	}
	w.Touch()
	w.AddDomainEvent(NewWorkOrderCompletedEvent(w))
	return true, nil
}

// Cancel transitions the order to cancelled from any non-terminal state
func (w *WorkOrder) Cancel() error {
	if !w.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			fmt.Sprintf("Cannot cancel a work order in %s status", w.Status))
	}
	w.Status = StatusCancelled
	w.Touch()
	return nil
}

// AttachInvoice links the invoice created by the completion cascade. Only a
// completed order carries an invoice.
func (w *WorkOrder) AttachInvoice(invoiceID uuid.UUID) error {
	if w.Status != StatusCompleted {
		return shared.ErrInvalidState
	}
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	w.InvoiceID = &invoiceID
	w.Touch()
	return nil
}
