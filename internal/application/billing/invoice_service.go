package billing

import (
	"context"
	"time"

	"github.com/fieldserve/backend/internal/domain/billing"
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/fieldserve/backend/internal/domain/shared/valueobject"
	"github.com/fieldserve/backend/internal/domain/tax"
	"github.com/google/uuid"
)

// InvoiceService handles invoice business operations. Every write runs
// inside a transaction scope so line writes, ledger postings, and the total
// recompute land atomically. Domain events are collected inside the scope
// and published only after it commits.
type InvoiceService struct {
	scope          TransactionScope
	engine         *tax.Engine
	eventPublisher shared.EventPublisher
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(scope TransactionScope, engine *tax.Engine) *InvoiceService {
	return &InvoiceService{scope: scope, engine: engine}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create allocates an invoice number, creates the invoice, and synchronizes
// any initial lines, all in one transaction
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	var response InvoiceResponse
	var pending []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		profile, err := repos.TenantProfileRepo().FindByTenant(ctx, tenantID)
		if err != nil {
			return err
		}

		number, err := repos.InvoiceRepo().NextInvoiceNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		issuedAt := time.Now()
		invoice, err := billing.NewInvoice(tenantID, req.CustomerID, number, req.TaxExempt, issuedAt, profile.DueDateFrom(issuedAt))
		if err != nil {
			return err
		}
		if req.VehicleID != nil {
			invoice.AttachVehicle(*req.VehicleID)
		}
		invoice.Notes = req.Notes

		if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
			return err
		}

		sync := NewLineSynchronizer(repos, s.engine)
		for _, lineReq := range req.Lines {
			if _, err := sync.CreateLine(ctx, invoice, lineReq.toLineInput()); err != nil {
				return err
			}
		}

		pending = collectEvents(invoice)
		response = ToInvoiceResponse(invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishAfterCommit(ctx, pending)
	return &response, nil
}

// IssueNumber reserves the next invoice number for the tenant without
// creating an invoice. The sequence advances, so an unused reservation
// leaves a gap; gaps are allowed, repeats never happen.
func (s *InvoiceService) IssueNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var number string
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		allocated, err := repos.InvoiceRepo().NextInvoiceNumber(ctx, tenantID)
		if err != nil {
			return err
		}
		number = allocated
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var response InvoiceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, invoiceID, tenantID)
		if err != nil {
			return err
		}
		response = ToInvoiceResponse(invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByNumber retrieves an invoice by its number
func (s *InvoiceService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*InvoiceResponse, error) {
	var response InvoiceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByNumber(ctx, tenantID, number)
		if err != nil {
			return err
		}
		response = ToInvoiceResponse(invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// AddLine creates a new line on an existing invoice
func (s *InvoiceService) AddLine(ctx context.Context, tenantID, invoiceID uuid.UUID, req LineItemRequest) (*LineItemResponse, error) {
	var response LineItemResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, invoiceID, tenantID)
		if err != nil {
			return err
		}
		line, err := NewLineSynchronizer(repos, s.engine).CreateLine(ctx, invoice, req.toLineInput())
		if err != nil {
			return err
		}
		response = ToLineItemResponse(line)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// UpdateLine applies new values to an existing line
func (s *InvoiceService) UpdateLine(ctx context.Context, tenantID, invoiceID, lineID uuid.UUID, req LineItemRequest) (*LineItemResponse, error) {
	var response LineItemResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, invoiceID, tenantID)
		if err != nil {
			return err
		}
		line, err := NewLineSynchronizer(repos, s.engine).UpdateLine(ctx, invoice, lineID, req.toLineInput())
		if err != nil {
			return err
		}
		response = ToLineItemResponse(line)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// DeleteLine removes a line from an invoice
func (s *InvoiceService) DeleteLine(ctx context.Context, tenantID, invoiceID, lineID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, invoiceID, tenantID)
		if err != nil {
			return err
		}
		return NewLineSynchronizer(repos, s.engine).DeleteLine(ctx, invoice, lineID)
	})
}

// Delete removes an invoice as a whole, reversing the inventory effect of
// every product line before the row and its lines are removed
func (s *InvoiceService) Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	var pending []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, invoiceID, tenantID)
		if err != nil {
			return err
		}
		if err := NewLineSynchronizer(repos, s.engine).ReverseAllLines(ctx, invoice); err != nil {
			return err
		}
		invoice.MarkDeleted()
		if err := repos.InvoiceRepo().Delete(ctx, invoiceID, tenantID); err != nil {
			return err
		}
		pending = collectEvents(invoice)
		return nil
	})
	if err != nil {
		return err
	}
	s.publishAfterCommit(ctx, pending)
	return nil
}

// Resync re-derives the invoice total and tops up missing ledger postings.
// Safe to re-run; used by out-of-band backfills.
func (s *InvoiceService) Resync(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var response InvoiceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, invoiceID, tenantID)
		if err != nil {
			return err
		}
		if err := NewLineSynchronizer(repos, s.engine).Resync(ctx, invoice); err != nil {
			return err
		}
		response = ToInvoiceResponse(invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ReturnProduct restocks goods returned against an invoice. Returning more
// than the invoice sold fails with the over-return validation error.
func (s *InvoiceService) ReturnProduct(ctx context.Context, tenantID, invoiceID uuid.UUID, req ReturnProductRequest) (*ReturnResponse, error) {
	var response ReturnResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, invoiceID, tenantID)
		if err != nil {
			return err
		}
		total, err := NewLineSynchronizer(repos, s.engine).ReturnProduct(ctx, invoice, req.ProductID, req.Quantity)
		if err != nil {
			return err
		}
		response = ReturnResponse{
			InvoiceID:     invoiceID,
			ProductID:     req.ProductID,
			Quantity:      req.Quantity,
			TotalReturned: total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// RecordPayment posts a payment or credit against an invoice
func (s *InvoiceService) RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, req RecordPaymentRequest) (*BalanceResponse, error) {
	var response BalanceResponse
	var pending []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, invoiceID, tenantID)
		if err != nil {
			return err
		}

		payment, err := billing.NewPayment(tenantID, invoiceID, billing.PaymentKind(req.Kind),
			valueobject.NewMoneyUSDFromFloat(req.Amount), req.Method, req.Reference, time.Now())
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return err
		}

		pending = collectEvents(payment)
		response, err = s.balanceOf(ctx, repos, invoice)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publishAfterCommit(ctx, pending)
	return &response, nil
}

// Balance returns the derived settlement view of an invoice
func (s *InvoiceService) Balance(ctx context.Context, tenantID, invoiceID uuid.UUID) (*BalanceResponse, error) {
	var response BalanceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, invoiceID, tenantID)
		if err != nil {
			return err
		}
		response, err = s.balanceOf(ctx, repos, invoice)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// balanceOf derives balance due and payment status from the settled sum
func (s *InvoiceService) balanceOf(ctx context.Context, repos TransactionalRepositories, invoice *billing.Invoice) (BalanceResponse, error) {
	settled, err := repos.PaymentRepo().SumSettledByInvoice(ctx, invoice.ID)
	if err != nil {
		return BalanceResponse{}, err
	}
	balance, err := invoice.BalanceDue(settled)
	if err != nil {
		return BalanceResponse{}, err
	}
	status, err := invoice.PaymentStatusFor(settled)
	if err != nil {
		return BalanceResponse{}, err
	}
	return BalanceResponse{
		InvoiceID:     invoice.ID,
		TotalAmount:   invoice.TotalAmount.Amount().StringFixed(2),
		Settled:       settled.Amount().StringFixed(2),
		BalanceDue:    balance.Amount().StringFixed(2),
		PaymentStatus: string(status),
	}, nil
}

// collectEvents drains an aggregate's pending domain events so they can be
// published once the owning transaction has committed
func collectEvents(aggregate shared.AggregateRoot) []shared.DomainEvent {
	events := aggregate.GetDomainEvents()
	aggregate.ClearDomainEvents()
	return events
}

// publishAfterCommit hands committed events to the bus. Nothing is published
// when the transaction rolled back, and a publish failure never reaches the
// caller; the bus contains handler errors itself.
func (s *InvoiceService) publishAfterCommit(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
