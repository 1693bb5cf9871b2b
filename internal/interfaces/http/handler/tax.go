package handler

import (
	"github.com/fieldserve/backend/internal/domain/tax"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TaxHandler exposes the tax engine for quoting and verification
type TaxHandler struct {
	BaseHandler
	engine              *tax.Engine
	defaultJurisdiction string
}

// NewTaxHandler creates a new TaxHandler. Requests that name no
// jurisdiction are computed against defaultJurisdiction.
func NewTaxHandler(engine *tax.Engine, defaultJurisdiction string) *TaxHandler {
	return &TaxHandler{engine: engine, defaultJurisdiction: defaultJurisdiction}
}

// RegisterRoutes registers tax routes on the given group
func (h *TaxHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tax/compute", h.Compute)
}

// ComputeTaxRequest describes one tax computation
type ComputeTaxRequest struct {
	Amount       decimal.Decimal  `json:"amount" binding:"required"`
	Jurisdiction string           `json:"jurisdiction"`
	Inclusive    bool             `json:"inclusive"`
	Exempt       bool             `json:"exempt"`
	CustomRate   *decimal.Decimal `json:"custom_rate"`
}

// Compute runs one tax computation and returns the per-component breakdown
func (h *TaxHandler) Compute(c *gin.Context) {
	var req ComputeTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	jurisdiction := req.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = h.defaultJurisdiction
	}
	result, err := h.engine.Compute(tax.Input{
		Amount:           req.Amount,
		JurisdictionCode: jurisdiction,
		Inclusive:        req.Inclusive,
		Exempt:           req.Exempt,
		CustomRate:       req.CustomRate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
