package handler

import (
	"context"

	appinventory "github.com/fieldserve/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StockHandler handles stock ledger API endpoints
type StockHandler struct {
	BaseHandler
	stock *appinventory.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stock *appinventory.StockService) *StockHandler {
	return &StockHandler{stock: stock}
}

// RegisterRoutes registers stock routes on the given group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock/:productId")
	{
		stock.GET("/balance", h.Balance)
		stock.POST("/receive", h.Receive)
		stock.POST("/adjust", h.Adjust)
		stock.POST("/replay", h.Replay)
	}
}

// Balance returns the replay-derived balance for a product
func (h *StockHandler) Balance(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	productID, err := pathUUID(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	resp, err := h.stock.Balance(c.Request.Context(), tenant, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Receive posts an IN entry for received stock
func (h *StockHandler) Receive(c *gin.Context) {
	h.post(c, h.stock.Receive)
}

// Adjust posts an ADJUSTMENT entry setting the absolute balance
func (h *StockHandler) Adjust(c *gin.Context) {
	h.post(c, h.stock.Adjust)
}

// Replay re-derives the balance from the full log and verifies the
// incremental computation agrees with it
func (h *StockHandler) Replay(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	productID, err := pathUUID(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	resp, err := h.stock.Replay(c.Request.Context(), tenant, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// post handles the shared parsing for Receive and Adjust
func (h *StockHandler) post(c *gin.Context, fn func(ctx context.Context, tenantID, productID uuid.UUID, req appinventory.PostStockRequest) (*appinventory.StockBalanceResponse, error)) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	productID, err := pathUUID(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	var req appinventory.PostStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	resp, err := fn(c.Request.Context(), tenant, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
