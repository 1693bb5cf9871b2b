package workorder

import (
	"context"
	"time"

	"github.com/fieldserve/backend/internal/domain/shared/valueobject"
	"github.com/fieldserve/backend/internal/domain/workorder"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateWorkOrderRequest represents the request to create a work order
type CreateWorkOrderRequest struct {
	CustomerID  uuid.UUID `json:"customer_id" binding:"required"`
	VehicleID   uuid.UUID `json:"vehicle_id" binding:"required"`
	Description string    `json:"description"`
	Odometer    int64     `json:"odometer" binding:"gte=0"`
}

// AddItemRequest represents one work order item
type AddItemRequest struct {
	Type        string          `json:"type" binding:"required,oneof=part labor fee"`
	Description string          `json:"description" binding:"required"`
	ProductID   *uuid.UUID      `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitRate    float64         `json:"unit_rate" binding:"gte=0"`
}

// ItemResponse represents a work order item in responses
type ItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	Quantity    string     `json:"quantity"`
	UnitRate    string     `json:"unit_rate"`
	Position    int        `json:"position"`
}

// WorkOrderResponse represents a work order in responses
type WorkOrderResponse struct {
	ID             uuid.UUID      `json:"id"`
	CustomerID     uuid.UUID      `json:"customer_id"`
	VehicleID      uuid.UUID      `json:"vehicle_id"`
	Status         string         `json:"status"`
	MechanicStatus string         `json:"mechanic_status"`
	Description    string         `json:"description"`
	Odometer       int64          `json:"odometer"`
	InvoiceID      *uuid.UUID     `json:"invoice_id,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	Items          []ItemResponse `json:"items"`
}

// ToWorkOrderResponse converts a domain work order to its response representation
func ToWorkOrderResponse(order *workorder.WorkOrder) WorkOrderResponse {
	items := make([]ItemResponse, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items = append(items, ItemResponse{
			ID:          item.ID,
			Type:        string(item.Type),
			Description: item.Description,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity.String(),
			UnitRate:    item.UnitRate.Amount().StringFixed(2),
			Position:    item.Position,
		})
	}
	return WorkOrderResponse{
		ID:             order.ID,
		CustomerID:     order.CustomerID,
		VehicleID:      order.VehicleID,
		Status:         order.Status.String(),
		MechanicStatus: string(order.MechanicStatus),
		Description:    order.Description,
		Odometer:       order.OdometerReading,
		InvoiceID:      order.InvoiceID,
		CompletedAt:    order.CompletedAt,
		Items:          items,
	}
}

// WorkOrderService handles the work order lifecycle outside of completion
type WorkOrderService struct {
	scope TransactionScope
}

// NewWorkOrderService creates a new WorkOrderService
func NewWorkOrderService(scope TransactionScope) *WorkOrderService {
	return &WorkOrderService{scope: scope}
}

// Create creates a new pending work order
func (s *WorkOrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreateWorkOrderRequest) (*WorkOrderResponse, error) {
	var response WorkOrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.CustomerRepo().FindByIDForTenant(ctx, tenantID, req.CustomerID); err != nil {
			return err
		}
		order, err := workorder.NewWorkOrder(tenantID, req.CustomerID, req.VehicleID, req.Description)
		if err != nil {
			return err
		}
		if err := order.RecordOdometer(req.Odometer); err != nil {
			return err
		}
		if err := repos.WorkOrderRepo().Save(ctx, order); err != nil {
			return err
		}
		response = ToWorkOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByID retrieves a work order by ID
func (s *WorkOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*WorkOrderResponse, error) {
	var response WorkOrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.WorkOrderRepo().FindByIDForTenant(ctx, orderID, tenantID)
		if err != nil {
			return err
		}
		response = ToWorkOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// AddItem appends an item to a non-terminal work order
func (s *WorkOrderService) AddItem(ctx context.Context, tenantID, orderID uuid.UUID, req AddItemRequest) (*WorkOrderResponse, error) {
	var response WorkOrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.WorkOrderRepo().FindByIDForTenant(ctx, orderID, tenantID)
		if err != nil {
			return err
		}
		if _, err := order.AddItem(workorder.ItemType(req.Type), req.Description, req.ProductID,
			req.Quantity, valueobject.NewMoneyUSDFromFloat(req.UnitRate)); err != nil {
			return err
		}
		if err := repos.WorkOrderRepo().Update(ctx, order); err != nil {
			return err
		}
		response = ToWorkOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Start moves the order to in_progress
func (s *WorkOrderService) Start(ctx context.Context, tenantID, orderID uuid.UUID) (*WorkOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, (*workorder.WorkOrder).Start)
}

// Cancel moves the order to cancelled
func (s *WorkOrderService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID) (*WorkOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, (*workorder.WorkOrder).Cancel)
}

// UpdateMechanicStatus records the mechanic's progress
func (s *WorkOrderService) UpdateMechanicStatus(ctx context.Context, tenantID, orderID uuid.UUID, status string) (*WorkOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, func(order *workorder.WorkOrder) error {
		return order.UpdateMechanicStatus(workorder.MechanicStatus(status))
	})
}

// transition loads, mutates, and persists an order in one scope
func (s *WorkOrderService) transition(ctx context.Context, tenantID, orderID uuid.UUID, mutate func(*workorder.WorkOrder) error) (*WorkOrderResponse, error) {
	var response WorkOrderResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.WorkOrderRepo().FindByIDForTenant(ctx, orderID, tenantID)
		if err != nil {
			return err
		}
		if err := mutate(order); err != nil {
			return err
		}
		if err := repos.WorkOrderRepo().Update(ctx, order); err != nil {
			return err
		}
		response = ToWorkOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}
