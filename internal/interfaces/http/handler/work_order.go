package handler

import (
	"context"

	appworkorder "github.com/fieldserve/backend/internal/application/workorder"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WorkOrderHandler handles work order API endpoints
type WorkOrderHandler struct {
	BaseHandler
	orders     *appworkorder.WorkOrderService
	completion *appworkorder.CompletionService
}

// NewWorkOrderHandler creates a new WorkOrderHandler
func NewWorkOrderHandler(orders *appworkorder.WorkOrderService, completion *appworkorder.CompletionService) *WorkOrderHandler {
	return &WorkOrderHandler{orders: orders, completion: completion}
}

// RegisterRoutes registers work order routes on the given group
func (h *WorkOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/work-orders")
	{
		orders.POST("", h.Create)
		orders.GET("/:id", h.GetByID)
		orders.POST("/:id/items", h.AddItem)
		orders.POST("/:id/start", h.Start)
		orders.POST("/:id/cancel", h.Cancel)
		orders.POST("/:id/complete", h.Complete)
		orders.PUT("/:id/mechanic-status", h.UpdateMechanicStatus)
	}
}

// Create creates a new pending work order
func (h *WorkOrderHandler) Create(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	var req appworkorder.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	resp, err := h.orders.Create(c.Request.Context(), tenant, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID returns a work order with its items
func (h *WorkOrderHandler) GetByID(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}
	resp, err := h.orders.GetByID(c.Request.Context(), tenant, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddItem appends an item to a non-terminal work order
func (h *WorkOrderHandler) AddItem(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}
	var req appworkorder.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	resp, err := h.orders.AddItem(c.Request.Context(), tenant, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Start moves the order to in_progress
func (h *WorkOrderHandler) Start(c *gin.Context) {
	h.transition(c, h.orders.Start)
}

// Cancel moves the order to cancelled
func (h *WorkOrderHandler) Cancel(c *gin.Context) {
	h.transition(c, h.orders.Cancel)
}

// Complete runs the completion cascade: status change, invoice creation,
// inventory postings, maintenance task closure, and the invoice back-link.
// Completing an already-completed order returns the existing invoice.
func (h *WorkOrderHandler) Complete(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}
	resp, err := h.completion.Complete(c.Request.Context(), tenant, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateMechanicStatusRequest carries the mechanic's progress update
type UpdateMechanicStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=not_started in_progress paused travel marked_complete"`
}

// UpdateMechanicStatus records the mechanic's progress on the job
func (h *WorkOrderHandler) UpdateMechanicStatus(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}
	var req UpdateMechanicStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	resp, err := h.orders.UpdateMechanicStatus(c.Request.Context(), tenant, orderID, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// transition handles the shared parsing for Start and Cancel
func (h *WorkOrderHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, orderID uuid.UUID) (*appworkorder.WorkOrderResponse, error)) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Missing tenant")
		return
	}
	orderID, err := pathUUID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid work order ID")
		return
	}
	resp, err := fn(c.Request.Context(), tenant, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
