package partner

import (
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Vehicle is the serviced asset a work order and its maintenance tasks
// attach to. Read-only from the billing core's perspective except for the
// mileage stamp recorded on work-order completion.
type Vehicle struct {
	shared.TenantAggregateRoot
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	PlateNumber string    `gorm:"type:varchar(20)"`
	VIN         string    `gorm:"type:varchar(17)"`
	Make        string    `gorm:"type:varchar(100)"`
	Model       string    `gorm:"type:varchar(100)"`
	Mileage     int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Vehicle) TableName() string {
	return "vehicles"
}

// NewVehicle creates a vehicle record
func NewVehicle(tenantID, customerID uuid.UUID, plateNumber string) (*Vehicle, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	return &Vehicle{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		PlateNumber:         plateNumber,
	}, nil
}

// RecordMileage updates the odometer reading, never backwards
func (v *Vehicle) RecordMileage(mileage int64) error {
	if mileage < v.Mileage {
		return shared.NewDomainError("INVALID_MILEAGE", "Mileage cannot decrease")
	}
	v.Mileage = mileage
	v.Touch()
	return nil
}
