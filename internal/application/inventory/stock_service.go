package inventory

import (
	"context"

	"github.com/fieldserve/backend/internal/domain/catalog"
	"github.com/fieldserve/backend/internal/domain/inventory"
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PostStockRequest represents a manual stock posting
type PostStockRequest struct {
	Quantity int64  `json:"quantity" binding:"required,gte=0"`
	Remark   string `json:"remark" binding:"required"`
}

// StockBalanceResponse is the derived stock view for one product
type StockBalanceResponse struct {
	ProductID         uuid.UUID `json:"product_id"`
	OwnerID           uuid.UUID `json:"owner_id"`
	Balance           int64     `json:"balance"`
	BelowReorderLevel bool      `json:"below_reorder_level"`
}

// StockService exposes the stock ledger to callers: balances, receiving,
// and count adjustments. Every path resolves the stock owner through the
// domain resolver so shared-pool tenants behave identically everywhere.
type StockService struct {
	scope TransactionScope
}

// NewStockService creates a new StockService
func NewStockService(scope TransactionScope) *StockService {
	return &StockService{scope: scope}
}

// Balance replays the ledger for the product's resolved owner and reports
// the reorder state alongside
func (s *StockService) Balance(ctx context.Context, tenantID, productID uuid.UUID) (*StockBalanceResponse, error) {
	var response StockBalanceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		owner, product, err := s.resolve(ctx, repos, tenantID, productID)
		if err != nil {
			return err
		}
		balance, err := inventory.NewLedger(repos.StockTransactionRepo()).Balance(ctx, owner, productID)
		if err != nil {
			return err
		}
		response = StockBalanceResponse{
			ProductID:         productID,
			OwnerID:           owner,
			Balance:           balance,
			BelowReorderLevel: product.IsBelowReorderLevel(balance),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Receive posts an IN for received stock
func (s *StockService) Receive(ctx context.Context, tenantID, productID uuid.UUID, req PostStockRequest) (*StockBalanceResponse, error) {
	return s.post(ctx, tenantID, productID, req, inventory.TransactionTypeIn)
}

// Adjust posts an ADJUSTMENT that sets the balance to the counted quantity
func (s *StockService) Adjust(ctx context.Context, tenantID, productID uuid.UUID, req PostStockRequest) (*StockBalanceResponse, error) {
	return s.post(ctx, tenantID, productID, req, inventory.TransactionTypeAdjustment)
}

// Replay recomputes the balance from the full log and compares it with the
// aggregate-query balance, surfacing drift instead of trusting either side
func (s *StockService) Replay(ctx context.Context, tenantID, productID uuid.UUID) (*StockBalanceResponse, error) {
	var response StockBalanceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		owner, product, err := s.resolve(ctx, repos, tenantID, productID)
		if err != nil {
			return err
		}
		ledger := inventory.NewLedger(repos.StockTransactionRepo())
		replayed, err := ledger.Replay(ctx, owner, productID)
		if err != nil {
			return err
		}
		derived, err := ledger.Balance(ctx, owner, productID)
		if err != nil {
			return err
		}
		if replayed != derived {
			return shared.NewDomainError("LEDGER_DRIFT", "Derived balance disagrees with the full replay")
		}
		response = StockBalanceResponse{
			ProductID:         productID,
			OwnerID:           owner,
			Balance:           replayed,
			BelowReorderLevel: product.IsBelowReorderLevel(replayed),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// post writes one ledger entry and returns the resulting balance
func (s *StockService) post(ctx context.Context, tenantID, productID uuid.UUID, req PostStockRequest, txType inventory.TransactionType) (*StockBalanceResponse, error) {
	var response StockBalanceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		owner, product, err := s.resolve(ctx, repos, tenantID, productID)
		if err != nil {
			return err
		}
		ledger := inventory.NewLedger(repos.StockTransactionRepo())
		switch txType {
		case inventory.TransactionTypeIn:
			err = ledger.PostIn(ctx, owner, productID, req.Quantity, req.Remark)
		case inventory.TransactionTypeAdjustment:
			err = ledger.PostAdjustment(ctx, owner, productID, req.Quantity, req.Remark)
		default:
			err = shared.ErrInvalidInput
		}
		if err != nil {
			return err
		}
		balance, err := ledger.Balance(ctx, owner, productID)
		if err != nil {
			return err
		}
		response = StockBalanceResponse{
			ProductID:         productID,
			OwnerID:           owner,
			Balance:           balance,
			BelowReorderLevel: product.IsBelowReorderLevel(balance),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// resolve loads the product and settles which owner its postings affect
func (s *StockService) resolve(ctx context.Context, repos TransactionalRepositories, tenantID, productID uuid.UUID) (uuid.UUID, *catalog.Product, error) {
	product, err := repos.ProductRepo().FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	profile, err := repos.TenantProfileRepo().FindByTenant(ctx, tenantID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return inventory.ResolveStockOwner(profile, product), product, nil
}
