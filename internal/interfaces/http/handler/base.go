package handler

import (
	"errors"
	"net/http"

	appbilling "github.com/fieldserve/backend/internal/application/billing"
	"github.com/fieldserve/backend/internal/domain/shared"
	"github.com/fieldserve/backend/internal/interfaces/http/dto"
	"github.com/fieldserve/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// tenantID extracts the tenant set by the Tenant middleware
func tenantID(c *gin.Context) (uuid.UUID, bool) {
	return middleware.GetTenantID(c)
}

// pathUUID parses a UUID path parameter
func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponse(dto.ErrCodeBadRequest, message, middleware.GetRequestID(c)))
}

// BindingError sends a 400 response for a failed request bind, with
// per-field details when the validator produced them
func (h *BaseHandler) BindingError(c *gin.Context, err error) {
	requestID := middleware.GetRequestID(c)
	if details := middleware.ValidationDetails(err); len(details) > 0 {
		c.JSON(http.StatusBadRequest,
			dto.NewValidationErrorResponse("Request validation failed", requestID, details))
		return
	}
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponse(dto.ErrCodeBadRequest, err.Error(), requestID))
}

// HandleError converts application and domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)

	var lineErr *appbilling.LineValidationError
	if errors.As(err, &lineErr) {
		c.JSON(http.StatusUnprocessableEntity,
			dto.NewErrorResponse(dto.ErrCodeLineValidation, lineErr.Error(), requestID))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code),
			dto.NewErrorResponse(code, domainErr.Message, requestID))
		return
	}

	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeInternal, "An unexpected error occurred", requestID))
}
