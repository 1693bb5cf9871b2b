package handler

import (
	appbilling "github.com/fieldserve/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices *appbilling.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *appbilling.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// RegisterRoutes registers invoice routes on the given group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.POST("/issue-number", h.IssueNumber)
		invoices.GET("/:id", h.GetByID)
		invoices.DELETE("/:id", h.Delete)
		invoices.GET("/by-number/:number", h.GetByNumber)
		invoices.POST("/:id/lines", h.AddLine)
		invoices.PUT("/:id/lines/:lineId", h.UpdateLine)
		invoices.DELETE("/:id/lines/:lineId", h.DeleteLine)
		invoices.POST("/:id/resync", h.Resync)
		invoices.POST("/:id/returns", h.ReturnProduct)
		invoices.POST("/:id/payments", h.RecordPayment)
		invoices.GET("/:id/balance", h.Balance)
	}
}

// Create creates an invoice with an allocated number and synchronized lines
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	var req appbilling.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	resp, err := h.invoices.Create(c.Request.Context(), tenant, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// IssueNumber reserves the next invoice number without creating an invoice
func (h *InvoiceHandler) IssueNumber(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	number, err := h.invoices.IssueNumber(c.Request.Context(), tenant)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{"number": number})
}

// GetByID returns an invoice with its lines
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	invoiceID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	resp, err := h.invoices.GetByID(c.Request.Context(), tenant, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByNumber returns an invoice looked up by its number
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	resp, err := h.invoices.GetByNumber(c.Request.Context(), tenant, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes the invoice as a whole and reverses its inventory effect
func (h *InvoiceHandler) Delete(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	invoiceID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	if err := h.invoices.Delete(c.Request.Context(), tenant, invoiceID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddLine appends a line and synchronizes inventory and the total
func (h *InvoiceHandler) AddLine(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	invoiceID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	var req appbilling.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	resp, err := h.invoices.AddLine(c.Request.Context(), tenant, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// UpdateLine replaces a line's quantity and rate
func (h *InvoiceHandler) UpdateLine(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	invoiceID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	lineID, err := pathUUID(c, "lineId")
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}
	var req appbilling.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	resp, err := h.invoices.UpdateLine(c.Request.Context(), tenant, invoiceID, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeleteLine removes a line and reverses its inventory effect
func (h *InvoiceHandler) DeleteLine(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	invoiceID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	lineID, err := pathUUID(c, "lineId")
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}
	if err := h.invoices.DeleteLine(c.Request.Context(), tenant, invoiceID, lineID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Resync backfills any missing ledger postings for the invoice's lines
func (h *InvoiceHandler) Resync(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	invoiceID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	resp, err := h.invoices.Resync(c.Request.Context(), tenant, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ReturnProduct restocks goods returned against the invoice
func (h *InvoiceHandler) ReturnProduct(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	invoiceID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	var req appbilling.ReturnProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	resp, err := h.invoices.ReturnProduct(c.Request.Context(), tenant, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RecordPayment posts a settlement against the invoice
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	invoiceID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	var req appbilling.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	resp, err := h.invoices.RecordPayment(c.Request.Context(), tenant, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Balance returns the derived settlement view of the invoice
func (h *InvoiceHandler) Balance(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	invoiceID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	resp, err := h.invoices.Balance(c.Request.Context(), tenant, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
