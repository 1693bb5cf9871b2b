package workorder

import (
	"context"
	"sort"
	"time"

	appbilling "github.com/fieldserve/backend/internal/application/billing"
	"github.com/fieldserve/backend/internal/domain/billing"
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/fieldserve/backend/internal/domain/tax"
	"github.com/fieldserve/backend/internal/domain/workorder"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompletionResponse reports the outcome of a completion
type CompletionResponse struct {
	WorkOrderID   uuid.UUID  `json:"work_order_id"`
	Status        string     `json:"status"`
	InvoiceID     *uuid.UUID `json:"invoice_id,omitempty"`
	InvoiceNumber string     `json:"invoice_number,omitempty"`
	TotalAmount   string     `json:"total_amount,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// CompletionService drives the work order completion state machine. The
// cascade (status transition, invoice creation, line synchronization,
// maintenance task closure, invoice back-link) runs inside one transaction:
// any validation or storage failure rolls the whole unit back and the
// caller sees a single typed error. Domain events are published only after
// the transaction commits.
type CompletionService struct {
	scope     TransactionScope
	engine    *tax.Engine
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewCompletionService creates a new CompletionService
func NewCompletionService(scope TransactionScope, engine *tax.Engine, publisher shared.EventPublisher, logger *zap.Logger) *CompletionService {
	return &CompletionService{scope: scope, engine: engine, publisher: publisher, logger: logger}
}

// Complete transitions the work order to completed and runs the cascade.
// Completing an already-completed order is a no-op that returns the
// existing state without re-invoicing or re-posting.
func (s *CompletionService) Complete(ctx context.Context, tenantID, orderID uuid.UUID) (*CompletionResponse, error) {
	var response CompletionResponse
	var pending []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.WorkOrderRepo().FindByIDForTenant(ctx, orderID, tenantID)
		if err != nil {
			return err
		}

		now := time.Now()
		transitioned, err := order.Complete(now)
		if err != nil {
			return err
		}
		if !transitioned {
			response = toCompletionResponse(order, nil)
			return nil
		}

		invoice, err := s.createInvoice(ctx, repos, order, now)
		if err != nil {
			return err
		}
		if err := s.closeMaintenanceTasks(ctx, repos, order, now); err != nil {
			return err
		}
		if err := order.AttachInvoice(invoice.ID); err != nil {
			return err
		}
		if err := repos.WorkOrderRepo().Update(ctx, order); err != nil {
			return err
		}

		pending = order.GetDomainEvents()
		order.ClearDomainEvents()
		response = toCompletionResponse(order, invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit only: a failing notification must never roll back the
	// business transaction that already committed.
	s.publishAfterCommit(ctx, pending)
	return &response, nil
}

// createInvoice allocates a number, creates the invoice, and copies every
// work order item in order through the line synchronizer. A line whose
// product cannot be priced aborts the whole unit.
func (s *CompletionService) createInvoice(ctx context.Context, repos TransactionalRepositories, order *workorder.WorkOrder, now time.Time) (*billing.Invoice, error) {
	profile, err := repos.TenantProfileRepo().FindByTenant(ctx, order.TenantID)
	if err != nil {
		return nil, err
	}
	customer, err := repos.CustomerRepo().FindByIDForTenant(ctx, order.TenantID, order.CustomerID)
	if err != nil {
		return nil, err
	}

	number, err := repos.InvoiceRepo().NextInvoiceNumber(ctx, order.TenantID)
	if err != nil {
		return nil, err
	}
	invoice, err := billing.NewInvoice(order.TenantID, order.CustomerID, number, customer.TaxExempt, now, profile.DueDateFrom(now))
	if err != nil {
		return nil, err
	}
	invoice.AttachVehicle(order.VehicleID)
	if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
		return nil, err
	}

	items := make([]workorder.Item, len(order.Items))
	copy(items, order.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	sync := appbilling.NewLineSynchronizer(repos, s.engine)
	for i := range items {
		in := appbilling.LineInput{
			Type:        lineTypeFor(items[i].Type),
			Description: items[i].Description,
			ProductID:   items[i].ProductID,
			Quantity:    items[i].Quantity,
		}
		// A part item without its own rate falls back to the product's
		// configured price, which also triggers the pricing validation.
		rate := items[i].UnitRate
		if items[i].Type != workorder.ItemTypePart || rate.IsPositive() {
			in.UnitRate = &rate
		}
		if _, err := sync.CreateLine(ctx, invoice, in); err != nil {
			return nil, err
		}
	}
	return invoice, nil
}

// closeMaintenanceTasks closes the vehicle's still-open tasks, stamping
// them with the completion date and odometer reading
func (s *CompletionService) closeMaintenanceTasks(ctx context.Context, repos TransactionalRepositories, order *workorder.WorkOrder, now time.Time) error {
	tasks, err := repos.MaintenanceTaskRepo().FindOpenByVehicle(ctx, order.TenantID, order.VehicleID)
	if err != nil {
		return err
	}
	for i := range tasks {
		if err := tasks[i].Close(now, order.OdometerReading); err != nil {
			return err
		}
		if err := repos.MaintenanceTaskRepo().Update(ctx, &tasks[i]); err != nil {
			return err
		}
	}
	return nil
}

// publishAfterCommit hands the committed events to the bus. Failures are
// logged and swallowed.
func (s *CompletionService) publishAfterCommit(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("post-commit event publish failed",
			zap.Int("events", len(events)),
			zap.Error(err))
	}
}

// lineTypeFor maps a work order item type onto its invoice line type
func lineTypeFor(itemType workorder.ItemType) billing.LineType {
	switch itemType {
	case workorder.ItemTypePart:
		return billing.LineTypeProduct
	case workorder.ItemTypeLabor:
		return billing.LineTypeLabor
	default:
		return billing.LineTypeFee
	}
}

// toCompletionResponse builds the response from the order and, when a new
// invoice was created in this call, the invoice itself
func toCompletionResponse(order *workorder.WorkOrder, invoice *billing.Invoice) CompletionResponse {
	response := CompletionResponse{
		WorkOrderID: order.ID,
		Status:      order.Status.String(),
		InvoiceID:   order.InvoiceID,
		CompletedAt: order.CompletedAt,
	}
	if invoice != nil {
		response.InvoiceNumber = invoice.Number
		response.TotalAmount = invoice.TotalAmount.Amount().StringFixed(2)
	}
	return response
}
